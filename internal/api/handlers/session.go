package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"honeypot-lab/internal/session"
	"honeypot-lab/pkg/logger"
)

// SessionHandler exposes read and delete access to live sessions
type SessionHandler struct {
	sessions *session.Store
	logger   *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store *session.Store, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: store,
		logger:   log.WithComponent("session-handler"),
	}
}

// Get handles GET /api/v1/session/{id} - returns a session snapshot
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	unlock := h.sessions.Lock(id)
	sess, err := h.sessions.Get(id)
	if err != nil {
		unlock()
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Error().Err(err).Str("session_id", id).Msg("failed to load session")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	snapshot := sess.Snapshot()
	unlock()

	respondJSON(w, http.StatusOK, snapshot)
}

// Delete handles DELETE /api/v1/session/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	unlock := h.sessions.Lock(id)
	h.sessions.Delete(id)
	unlock()

	h.logger.Info().Str("session_id", id).Msg("session deleted")
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "sessionId": id})
}
