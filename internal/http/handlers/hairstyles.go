package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) ListHairstyles(w http.ResponseWriter, r *http.Request) {
	items, err := a.Catalog.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"hairstyles": items})
}

func (a *App) GetHairstyle(w http.ResponseWriter, r *http.Request) {
	h, err := a.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, h)
}
