package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dshrivastava925/Clothing-Site/internal/service"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	conversationService *service.ConversationService
	logger              *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(convSvc *service.ConversationService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		conversationService: convSvc,
		logger:              log,
	}
}

// List handles GET /conversations/{id}/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	msgs, err := h.conversationService.Messages(r.Context(), conversationID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get messages")
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}
