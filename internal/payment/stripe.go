// Package payment creates and looks up Stripe payment intents for
// subscription plans.
package payment

import (
	"context"
	"errors"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/dukerupert/portfolio/internal/apperror"
	"github.com/dukerupert/portfolio/internal/model"
)

const providerName = "stripe"

// ErrNotConfigured is returned when no secret key was supplied.
var ErrNotConfigured = errors.New("payment provider not configured: missing secret key")

// Intent is the part of a payment intent the handlers care about.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// Succeeded reports whether the intent has been paid.
func (i *Intent) Succeeded() bool {
	return i.Status == string(stripe.PaymentIntentStatusSucceeded)
}

type Config struct {
	SecretKey string
	Currency  string
}

type StripeProvider struct {
	cfg     Config
	intents *paymentintent.Client
}

type Option func(*StripeProvider)

// WithBackend routes API calls through b instead of the default Stripe backend.
func WithBackend(b stripe.Backend) Option {
	return func(p *StripeProvider) {
		p.intents.B = b
	}
}

func NewStripeProvider(cfg Config, opts ...Option) *StripeProvider {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	p := &StripeProvider{
		cfg: cfg,
		intents: &paymentintent.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: cfg.SecretKey,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Configured returns true if the secret key is set.
func (p *StripeProvider) Configured() bool {
	return p.cfg.SecretKey != ""
}

// Create opens a payment intent for one period of plan.
func (p *StripeProvider) Create(ctx context.Context, plan model.Tier) (*Intent, error) {
	if !p.Configured() {
		return nil, apperror.Collaborator(providerName, "create payment intent", ErrNotConfigured)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(plan.PriceCents()),
		Currency: stripe.String(p.cfg.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("plan", string(plan))

	pi, err := p.intents.New(params)
	if err != nil {
		return nil, apperror.Collaborator(providerName, "create payment intent", err)
	}
	return toIntent(pi), nil
}

// Confirm fetches the intent so the caller can check whether it succeeded.
func (p *StripeProvider) Confirm(ctx context.Context, intentID string) (*Intent, error) {
	if !p.Configured() {
		return nil, apperror.Collaborator(providerName, "get payment intent", ErrNotConfigured)
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.intents.Get(intentID, params)
	if err != nil {
		return nil, apperror.Collaborator(providerName, "get payment intent", err)
	}
	return toIntent(pi), nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}
