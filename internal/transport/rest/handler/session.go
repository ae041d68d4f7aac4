package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"quizarena/internal/game"
	"quizarena/internal/service"
)

// SessionHandler exposes read-only session endpoints. All mutation happens
// over the WebSocket command surface.
type SessionHandler struct {
	store      *game.Store
	archiveSvc *service.ArchiveService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(store *game.Store, archiveSvc *service.ArchiveService) *SessionHandler {
	return &SessionHandler{
		store:      store,
		archiveSvc: archiveSvc,
	}
}

// Get handles GET /v1/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	view, err := h.store.View(id)
	if err != nil {
		if errors.Is(err, game.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Rounds handles GET /v1/sessions/{id}/rounds.
func (h *SessionHandler) Rounds(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	records, err := h.archiveSvc.ListRounds(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rounds": records})
}
