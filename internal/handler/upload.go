package handler

import (
	"errors"
	"net/http"

	"github.com/dshrivastava925/Clothing-Site/internal/service"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
)

// UploadHandler handles CSV uploads.
type UploadHandler struct {
	service  *service.ImportService
	maxBytes int64
	logger   *logger.Logger
}

// NewUploadHandler creates a new upload handler. Bodies above maxBytes are rejected.
func NewUploadHandler(svc *service.ImportService, maxBytes int64, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		service:  svc,
		maxBytes: maxBytes,
		logger:   log,
	}
}

// Upload handles POST /data/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "file exceeds maximum upload size")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	result, err := h.service.Import(r.Context(), header.Filename, file)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to import CSV")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
