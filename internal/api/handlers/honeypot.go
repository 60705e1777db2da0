package handlers

import (
	"encoding/json"
	"net/http"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/domain/services"
	"honeypot-lab/pkg/logger"
)

// HoneypotHandler handles the conversational endpoint
type HoneypotHandler struct {
	engine *services.Engine
	logger *logger.Logger
}

// NewHoneypotHandler creates a new honeypot handler
func NewHoneypotHandler(engine *services.Engine, log *logger.Logger) *HoneypotHandler {
	return &HoneypotHandler{
		engine: engine,
		logger: log.WithComponent("honeypot-handler"),
	}
}

// MessageRequest is the request body for a conversation turn. Metadata
// fields like channel and locale are accepted for compatibility but not
// interpreted.
type MessageRequest struct {
	SessionID           string            `json:"sessionId"`
	Message             models.Message    `json:"message"`
	ConversationHistory []models.Message  `json:"conversationHistory,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// MessageResponse is the reply envelope
type MessageResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

// Message handles POST /api/v1/message - one conversation turn
func (h *HoneypotHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SessionID == "" {
		respondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if req.Message.Text == "" {
		respondError(w, http.StatusBadRequest, "message.text is required")
		return
	}
	if req.Message.Sender == "" {
		req.Message.Sender = models.SenderScammer
	}

	reply, err := h.engine.HandleMessage(r.Context(), services.HandleRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		History:   req.ConversationHistory,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("failed to handle message")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Status: "success", Reply: reply})
}
