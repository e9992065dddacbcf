package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/portfolio/internal/metrics"
	"github.com/dukerupert/portfolio/internal/model"
)

type ContactHandler struct {
	notifier MessageNotifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewContactHandler(n MessageNotifier, m *metrics.Metrics, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{notifier: n, metrics: m, logger: logger}
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=10000"`
}

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: "All fields are required"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Name == "" || req.Email == "" || req.Subject == "" || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: "All fields are required"})
		return
	}
	if err := validateStruct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: err.Error()})
		return
	}

	err := h.notifier.Send(r.Context(), model.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	h.metrics.ContactMessage(err)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "send contact message", "error", err)
		writeJSON(w, http.StatusInternalServerError, contactResponse{Message: "Failed to send message. Please try again later."})
		return
	}

	writeJSON(w, http.StatusOK, contactResponse{Success: true, Message: "Message sent successfully"})
}
