// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dshrivastava925/Clothing-Site/internal/middleware"
	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/internal/service"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"detail": message,
	})
}

// writeServiceError maps service errors onto status codes. Anything
// unclassified is logged with the request's correlation id and reported as
// message with a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error, message string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, model.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "Conversation not found")
	default:
		log.WithRequest(middleware.GetCorrelationID(r.Context())).Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message)
	}
}
