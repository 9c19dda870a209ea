package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"hairfluencer/internal/infra"
	"hairfluencer/internal/pipeline"
	"hairfluencer/internal/present"
)

func (a *App) Result(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	mode := present.ParseMode(r.URL.Query().Get("view"))
	a.json(w, http.StatusOK, a.Presenter.Render(c.Snapshot(), mode))
}

func (a *App) ResultImage(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	data, mimeType, err := a.Presenter.Image(r.Context(), c.Snapshot())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeBytes(w, mimeType, "", data)
}

func (a *App) ResultBundle(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	archive, filename, err := a.Presenter.Bundle(r.Context(), c.Snapshot())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeBytes(w, "application/zip", filename, archive)
}

// Save exports the result. Download style exporters hand the bytes back as
// an attachment; the others answer with a receipt.
func (a *App) Save(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	rec, err := a.Presenter.Save(r.Context(), c.Snapshot())
	if err != nil {
		if pipeline.NoticeFor(err) != nil || errors.Is(err, present.ErrNoResult) {
			a.fail(w, r, err)
			return
		}
		infra.LoggerFromContext(r.Context(), a.Logger).Error().Err(err).Msg("handlers: save failed")
		a.error(w, http.StatusInternalServerError, "save_failed", present.SaveFailedMessage)
		return
	}
	if rec.Data != nil {
		writeBytes(w, rec.MIMEType, rec.Filename, rec.Data)
		return
	}
	a.json(w, http.StatusOK, rec)
}

func (a *App) Share(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := a.Presenter.Share(r.Context(), c.Snapshot()); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeBytes(w http.ResponseWriter, mimeType, filename string, data []byte) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
