package handler

import (
	"context"

	"github.com/dukerupert/portfolio/internal/model"
	"github.com/dukerupert/portfolio/internal/payment"
)

// ChargeIntentProvider creates payment intents and reports their state.
type ChargeIntentProvider interface {
	Create(ctx context.Context, plan model.Tier) (*payment.Intent, error)
	Confirm(ctx context.Context, intentID string) (*payment.Intent, error)
}

// MessageNotifier delivers contact-form messages.
type MessageNotifier interface {
	Send(ctx context.Context, msg model.ContactMessage) error
}
