package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/pipeline"
	"hairfluencer/internal/photo"
)

type sessionResponse struct {
	ID      string              `json:"id"`
	State   pipeline.State      `json:"state"`
	Session domain.SessionState `json:"session"`
	Failure *pipeline.Failure   `json:"failure,omitempty"`
}

func sessionView(c *pipeline.Coordinator) sessionResponse {
	return sessionResponse{
		ID:      c.ID(),
		State:   c.State(),
		Session: c.Snapshot(),
		Failure: c.Failure(),
	}
}

// session resolves the {id} path parameter, writing a 404 when unknown.
func (a *App) session(w http.ResponseWriter, r *http.Request) (*pipeline.Coordinator, bool) {
	c, err := a.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return nil, false
	}
	return c, true
}

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	c, err := a.Sessions.Create()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, sessionView(c))
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, sessionView(c))
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Delete(chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectionRequest struct {
	HairstyleID string `json:"hairstyle_id"`
}

func (a *App) SelectHairstyle(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.HairstyleID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "hairstyle_id is required")
		return
	}
	h, err := a.Catalog.Get(r.Context(), req.HairstyleID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := c.Select(h); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sessionView(c))
}

type photoRequest struct {
	Photo  string `json:"photo"`
	Source string `json:"source"`
}

var errUnsupportedPhotoRef = errors.New("photo must be a data URI or an image body")

// SupplyPhoto accepts either a JSON reference or a raw image body, which is
// kept as a data URI.
func (a *App) SupplyPhoto(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	body := http.MaxBytesReader(w, r.Body, a.maxUploadBytes())
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		ref    domain.PhotoRef
		source string
	)
	if strings.HasPrefix(mediaType, "image/") {
		data, err := io.ReadAll(body)
		if err != nil {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "photo is too large")
			return
		}
		if len(data) == 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "photo body is empty")
			return
		}
		ref = domain.PhotoRef(photo.DataURI(mediaType, base64.StdEncoding.EncodeToString(data)))
	} else {
		var req photoRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		if err := checkPhotoRef(req.Photo); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		ref, source = domain.PhotoRef(req.Photo), req.Source
	}

	notice, err := c.AcquirePhoto(r.Context(), a.photoSource(ref, source))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if notice != nil {
		a.json(w, http.StatusForbidden, map[string]any{
			"error":  errorBody{Code: "permission_denied", Message: notice.Message},
			"notice": notice,
		})
		return
	}
	a.json(w, http.StatusOK, sessionView(c))
}

func (a *App) photoSource(ref domain.PhotoRef, source string) domain.PhotoSource {
	if source == "camera" {
		return photo.CameraSource{
			Gate:    a.Gate,
			Capture: func(context.Context) (domain.PhotoRef, error) { return ref, nil },
		}
	}
	return photo.GallerySource{Ref: ref, Gate: a.Gate}
}

// Only inline data is accepted from clients. Paths and URLs would make the
// server read files or fetch hosts on the caller's behalf.
func checkPhotoRef(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.ErrMissingSourcePhoto
	}
	if photo.IsDataURI(raw) {
		return nil
	}
	return errUnsupportedPhotoRef
}

func (a *App) ResetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	c.Reset()
	a.json(w, http.StatusOK, sessionView(c))
}
