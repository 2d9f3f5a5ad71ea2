package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BerylCAtieno/identity-ocr-api/internal/models"
	"github.com/BerylCAtieno/identity-ocr-api/internal/services"
	"github.com/BerylCAtieno/identity-ocr-api/internal/utils"
)

const (
	DefaultMaxRequestBytes = 10 << 20 // 10MB

	messageTooLarge = "Image exceeds the maximum upload size."
)

type OCRHandler struct {
	service  services.OCRService
	logger   *utils.Logger
	maxBytes int64
}

func NewOCRHandler(service services.OCRService, maxBytes int64, logger *utils.Logger) *OCRHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}
	return &OCRHandler{
		service:  service,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// Extract handles POST /api/v1/ocr.
func (h *OCRHandler) Extract(w http.ResponseWriter, r *http.Request) {
	// Reject oversized requests before reading the body
	if r.ContentLength > h.maxBytes {
		h.respondError(w, r, utils.NewInvalidInputError(messageTooLarge))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	// Decoded loosely so that a non-string image is treated like a missing one.
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, r, utils.NewInvalidInputError(messageTooLarge))
			return
		}
		h.respondError(w, r, utils.NewInvalidInputError(services.MessageNoImage))
		return
	}

	image, _ := payload["image"].(string)
	mimeType, _ := payload["mimeType"].(string)

	resp, err := h.service.Extract(r.Context(), &models.OCRRequest{
		Image:    image,
		MimeType: mimeType,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Health handles GET /api/v1/health.
func (h *OCRHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *OCRHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *OCRHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := utils.DefaultErrorMessage
	kind := utils.KindInternal

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		kind = appErr.Kind
		if appErr.Message != "" {
			message = appErr.Message
		}
	}

	h.logger.Error("Request error",
		"request_id", utils.RequestIDFromContext(r.Context()),
		"status", status,
		"kind", kind)

	h.respondJSON(w, status, models.ErrorResponse{Message: message})
}
