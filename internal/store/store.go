// Package store holds accounts, subscriptions and content items for the
// lifetime of the process.
package store

import (
	"context"
	"time"

	"github.com/dukerupert/portfolio/internal/model"
)

// Store is the entity store. Get* lookups return (nil, nil) when the entity
// does not exist; mutations of a missing entity fail with apperror.ErrNotFound
// and creates that would duplicate a unique key fail with apperror.ErrConflict.
type Store interface {
	CreateAccount(ctx context.Context, a NewAccount) (*model.Account, error)
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByHandle(ctx context.Context, handle string) (*model.Account, error)
	CountAccounts(ctx context.Context) (int, error)
	UpdatePaymentRefs(ctx context.Context, accountID int64, refs PaymentRefs) (*model.Account, error)

	CreateSubscription(ctx context.Context, s NewSubscription) (*model.Subscription, error)
	Subscribe(ctx context.Context, a NewAccount, plan model.Tier, method model.PaymentMethod) (*model.Account, *model.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (*model.Subscription, error)
	GetSubscriptionByAccount(ctx context.Context, accountID int64) (*model.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id int64, status model.Status) (*model.Subscription, error)
	ConfirmSubscription(ctx context.Context, p ConfirmParams) (*model.Subscription, error)

	CreateContent(ctx context.Context, c NewContent) (*model.ContentItem, error)
	GetContent(ctx context.Context, id int64) (*model.ContentItem, error)
	ListContent(ctx context.Context) ([]model.ContentItem, error)
	ListContentByCategory(ctx context.Context, category string) ([]model.ContentItem, error)
	ListContentByTier(ctx context.Context, tier string) ([]model.ContentItem, error)

	Close() error
}

type NewAccount struct {
	Handle     string
	SecretHash string
	Email      string
	Name       string
}

type NewSubscription struct {
	AccountID     int64
	Plan          model.Tier
	Status        model.Status
	PaymentMethod model.PaymentMethod
}

// PaymentRefs replaces both external payment references of an account.
// An empty string clears the reference.
type PaymentRefs struct {
	CustomerRef     string
	SubscriptionRef string
}

// ConfirmParams identifies a subscription to activate. When AccountID owns
// the subscription and PaymentRef is set, the reference is recorded on the
// account in the same step.
type ConfirmParams struct {
	SubscriptionID int64
	AccountID      int64
	PaymentRef     string
}

type NewContent struct {
	Title       string
	Body        string
	Excerpt     string
	Category    string
	ImageURL    string
	AuthorName  string
	AuthorImage string
	MinTier     model.Tier
	ReadTime    int
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func periodEnd(start time.Time) time.Time {
	return start.AddDate(0, model.SubscriptionPeriodMonths, 0)
}
