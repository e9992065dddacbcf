package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/portfolio/internal/metrics"
	"github.com/dukerupert/portfolio/internal/model"
)

type PaymentHandler struct {
	payments ChargeIntentProvider
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewPaymentHandler(p ChargeIntentProvider, m *metrics.Metrics, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: p, metrics: m, logger: logger}
}

type paymentIntentRequest struct {
	Plan string `json:"plan"`
}

type paymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreateIntent opens a payment intent priced for the requested plan.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err, "Error creating payment intent")
		return
	}

	plan, ok := model.ParseTier(req.Plan)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid plan")
		return
	}

	intent, err := h.payments.Create(r.Context(), plan)
	h.metrics.PaymentIntent(string(plan), err)
	if err != nil {
		writeError(w, r, h.logger, err, "Error creating payment intent")
		return
	}

	h.logger.Info("payment intent created", "intent_id", intent.ID, "plan", plan, "amount", intent.Amount)
	writeJSON(w, http.StatusOK, paymentIntentResponse{ClientSecret: intent.ClientSecret})
}
