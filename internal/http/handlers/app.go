package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
	"hairfluencer/internal/pipeline"
	"hairfluencer/internal/present"
)

const defaultMaxUploadBytes = 20 << 20

// App carries the dependencies every handler needs.
type App struct {
	Logger    *infra.Logger
	Catalog   domain.HairstyleCatalog
	Sessions  *pipeline.Sessions
	Presenter *present.Presenter
	Gate      domain.PermissionGate

	// BaseCtx bounds background edits; it outlives single requests.
	BaseCtx        context.Context
	MaxUploadBytes int64
	Upgrader       websocket.Upgrader
}

func (a *App) baseCtx() context.Context {
	if a.BaseCtx == nil {
		return context.Background()
	}
	return a.BaseCtx
}

func (a *App) maxUploadBytes() int64 {
	if a.MaxUploadBytes <= 0 {
		return defaultMaxUploadBytes
	}
	return a.MaxUploadBytes
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: msg}})
}

// fail maps a domain error onto a status and error envelope.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	if n := pipeline.NoticeFor(err); n != nil {
		a.error(w, http.StatusForbidden, "permission_denied", n.Message)
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrBusy):
		a.error(w, http.StatusConflict, "busy", "processing already in progress")
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", "start over to try another hairstyle")
	case errors.Is(err, domain.ErrMissingSelection), errors.Is(err, domain.ErrMissingSourcePhoto):
		a.error(w, http.StatusUnprocessableEntity, "missing_input", pipeline.MissingInputMessage)
	case errors.Is(err, present.ErrNoResult):
		a.error(w, http.StatusConflict, "no_result", present.EmptyMessage)
	case errors.Is(err, domain.ErrShareUnsupported):
		a.error(w, http.StatusUnprocessableEntity, "share_unsupported", present.ShareUnsupported)
	case errors.Is(err, domain.ErrEncoding):
		a.error(w, http.StatusUnprocessableEntity, "encoding_error", pipeline.FailureMessage)
	default:
		infra.LoggerFromContext(r.Context(), a.Logger).Error().Err(err).Msg("handlers: request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
