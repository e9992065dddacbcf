package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/portfolio/internal/apperror"
	"github.com/dukerupert/portfolio/internal/metrics"
	"github.com/dukerupert/portfolio/internal/model"
	"github.com/dukerupert/portfolio/internal/store"
)

// subscribeAttempts bounds retries when a generated username collides.
const subscribeAttempts = 3

type SubscriptionHandler struct {
	store         store.Store
	payments      ChargeIntentProvider
	verifyPayment bool
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewSubscriptionHandler returns a handler for subscribe and confirm. With
// verifyPayment set, confirm asks payments whether the intent succeeded
// before activating.
func NewSubscriptionHandler(s store.Store, payments ChargeIntentProvider, verifyPayment bool, m *metrics.Metrics, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		store:         s,
		payments:      payments,
		verifyPayment: verifyPayment,
		metrics:       m,
		logger:        logger,
	}
}

type subscribeRequest struct {
	Name          string `json:"name" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	Plan          string `json:"plan" validate:"required,oneof=basic professional enterprise"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=card paypal crypto invoice"`
}

type subscribeResponse struct {
	AccountID      int64               `json:"accountId"`
	UserID         int64               `json:"userId"`
	SubscriptionID int64               `json:"subscriptionId"`
	Plan           model.Tier          `json:"plan"`
	PaymentMethod  model.PaymentMethod `json:"paymentMethod"`
}

// generatedHandle derives a username from the email's local part.
func generatedHandle(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return fmt.Sprintf("%s%d", local, rand.IntN(1000))
}

// Subscribe opens a pending subscription, creating the account for the
// email when none exists yet.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err, "Failed to process subscription")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req); err != nil {
		writeError(w, r, h.logger, err, "Failed to process subscription")
		return
	}

	hash, err := hashSecret(uuid.NewString())
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to process subscription")
		return
	}

	plan := model.Tier(req.Plan)
	method := model.PaymentMethod(req.PaymentMethod)

	var acct *model.Account
	var sub *model.Subscription
	for attempt := 0; attempt < subscribeAttempts; attempt++ {
		acct, sub, err = h.store.Subscribe(r.Context(), store.NewAccount{
			Handle:     generatedHandle(req.Email),
			SecretHash: hash,
			Email:      req.Email,
			Name:       req.Name,
		}, plan, method)
		if !errors.Is(err, apperror.ErrConflict) {
			break
		}
		h.logger.Debug("subscribe conflict, retrying", "attempt", attempt+1, "error", err)
	}
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			err = fmt.Errorf("subscribe: no free username after %d attempts", subscribeAttempts)
		}
		writeError(w, r, h.logger, err, "Failed to process subscription")
		return
	}

	h.metrics.SubscriptionCreated(string(plan))
	h.logger.Info("subscription created", "account_id", acct.ID, "subscription_id", sub.ID, "plan", plan)
	writeJSON(w, http.StatusCreated, subscribeResponse{
		AccountID:      acct.ID,
		UserID:         acct.ID,
		SubscriptionID: sub.ID,
		Plan:           sub.Plan,
		PaymentMethod:  sub.PaymentMethod,
	})
}

type confirmRequest struct {
	UserID          int64  `json:"userId" validate:"required,gt=0"`
	SubscriptionID  int64  `json:"subscriptionId" validate:"required,gt=0"`
	PaymentIntentID string `json:"paymentIntentId" validate:"max=255"`
}

type confirmResponse struct {
	Success      bool                `json:"success"`
	Subscription *model.Subscription `json:"subscription"`
}

// Confirm marks a subscription active after payment. Confirming an active
// subscription again is a no-op.
func (h *SubscriptionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err, "Failed to confirm subscription")
		return
	}
	req.PaymentIntentID = strings.TrimSpace(req.PaymentIntentID)
	if err := validateStruct(req); err != nil {
		writeError(w, r, h.logger, err, "Failed to confirm subscription")
		return
	}

	if h.verifyPayment {
		if req.PaymentIntentID == "" {
			writeError(w, r, h.logger, apperror.Validation("paymentIntentId", "is required"), "Failed to confirm subscription")
			return
		}
		intent, err := h.payments.Confirm(r.Context(), req.PaymentIntentID)
		if err != nil {
			writeError(w, r, h.logger, err, "Failed to verify payment")
			return
		}
		if !intent.Succeeded() {
			writeMessage(w, http.StatusBadRequest, "Payment has not completed")
			return
		}
	}

	sub, err := h.store.ConfirmSubscription(r.Context(), store.ConfirmParams{
		SubscriptionID: req.SubscriptionID,
		AccountID:      req.UserID,
		PaymentRef:     req.PaymentIntentID,
	})
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to confirm subscription")
		return
	}

	h.metrics.SubscriptionConfirmed(string(sub.Plan))
	h.logger.Info("subscription confirmed", "subscription_id", sub.ID, "account_id", req.UserID)
	writeJSON(w, http.StatusOK, confirmResponse{Success: true, Subscription: sub})
}
