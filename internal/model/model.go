package model

import "time"

// Tier is a subscription level. Tiers form a total order of content access.
type Tier string

const (
	TierBasic        Tier = "basic"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// Tiers lists every tier from lowest to highest.
var Tiers = []Tier{TierBasic, TierProfessional, TierEnterprise}

// ParseTier returns the tier named by s and whether it is known.
func ParseTier(s string) (Tier, bool) {
	for _, t := range Tiers {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Rank returns the position of t in the tier order, or -1 if t is unknown.
func (t Tier) Rank() int {
	for i, known := range Tiers {
		if known == t {
			return i
		}
	}
	return -1
}

// PriceCents returns the monthly price of the tier in the smallest currency unit.
func (t Tier) PriceCents() int64 {
	switch t {
	case TierBasic:
		return 900
	case TierProfessional:
		return 2900
	case TierEnterprise:
		return 7900
	}
	return 0
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Valid reports whether s is one of the known subscription statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard    PaymentMethod = "card"
	PaymentPayPal  PaymentMethod = "paypal"
	PaymentCrypto  PaymentMethod = "crypto"
	PaymentInvoice PaymentMethod = "invoice"
)

// SubscriptionPeriodMonths is added to a subscription's start date to get its end date.
const SubscriptionPeriodMonths = 1

type Account struct {
	ID                     int64     `json:"id"`
	Handle                 string    `json:"username"`
	SecretHash             string    `json:"-"`
	Email                  string    `json:"email"`
	Name                   string    `json:"name"`
	PaymentCustomerRef     *string   `json:"stripeCustomerId"`
	PaymentSubscriptionRef *string   `json:"stripeSubscriptionId"`
	CreatedAt              time.Time `json:"createdAt"`
}

type Subscription struct {
	ID            int64         `json:"id"`
	AccountID     int64         `json:"userId"`
	Plan          Tier          `json:"plan"`
	Status        Status        `json:"status"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type ContentItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"content"`
	Excerpt     string    `json:"excerpt"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	AuthorName  string    `json:"authorName"`
	AuthorImage string    `json:"authorImage,omitempty"`
	PublishDate time.Time `json:"publishDate"`
	MinTier     Tier      `json:"minSubscriptionLevel"`
	ReadTime    int       `json:"readTime"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ContactMessage is a contact-form submission handed to a notifier.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
