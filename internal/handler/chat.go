package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dshrivastava925/Clothing-Site/internal/middleware"
	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/internal/service"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
)

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Send handles POST /api/chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateUserID(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Send(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to process chat message")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
