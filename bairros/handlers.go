package bairros

import (
	"context"
	"errors"
	"net/http"
	"time"

	"aquiguaira/models"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler serves /api/bairros. A nil store means Postgres is not configured.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) available(w http.ResponseWriter) bool {
	if h.store == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Base de bairros indisponível")
		return false
	}
	return true
}

// Get handles GET /api/bairros[?slug=].
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.available(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if slug := r.URL.Query().Get("slug"); slug != "" {
		b, err := h.store.BySlug(ctx, slug)
		if errors.Is(err, ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Bairro não encontrado")
			return
		}
		if err != nil {
			utils.RespondWithServerError(w, r, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, b)
		return
	}

	list, err := h.store.List(ctx)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if list == nil {
		list = make([]models.Bairro, 0)
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// Setores handles GET /api/bairros/setores.
func (h *Handler) Setores(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.available(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	setores, err := h.store.Setores(ctx)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if setores == nil {
		setores = make([]models.SetorColeta, 0)
	}
	utils.RespondWithJSON(w, http.StatusOK, setores)
}
