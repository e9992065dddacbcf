package store

import (
	"context"
	"sync"
	"time"

	"github.com/dukerupert/portfolio/internal/access"
	"github.com/dukerupert/portfolio/internal/apperror"
	"github.com/dukerupert/portfolio/internal/model"
)

// MemoryStore keeps every entity in process memory. Records are kept in
// insertion order; secondary-key lookups scan. Every create runs inside one
// critical section, so the uniqueness check and the insert are atomic.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	accounts      []*model.Account
	subscriptions []*model.Subscription
	content       []*model.ContentItem

	lastAccountID      int64
	lastSubscriptionID int64
	lastContentID      int64
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{now: o.now}
}

func (s *MemoryStore) CreateAccount(_ context.Context, a NewAccount) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, err := s.insertAccountLocked(a)
	if err != nil {
		return nil, err
	}
	return copyAccount(acct), nil
}

func (s *MemoryStore) insertAccountLocked(a NewAccount) (*model.Account, error) {
	for _, existing := range s.accounts {
		if existing.Email == a.Email {
			return nil, apperror.Conflict("account", "email", a.Email)
		}
		if existing.Handle == a.Handle {
			return nil, apperror.Conflict("account", "username", a.Handle)
		}
	}

	s.lastAccountID++
	acct := &model.Account{
		ID:         s.lastAccountID,
		Handle:     a.Handle,
		SecretHash: a.SecretHash,
		Email:      a.Email,
		Name:       a.Name,
		CreatedAt:  s.now(),
	}
	s.accounts = append(s.accounts, acct)
	return acct, nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id int64) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyAccount(s.accountLocked(id)), nil
}

func (s *MemoryStore) accountLocked(id int64) *model.Account {
	for _, a := range s.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *MemoryStore) accountByEmailLocked(email string) *model.Account {
	for _, a := range s.accounts {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (s *MemoryStore) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyAccount(s.accountByEmailLocked(email)), nil
}

func (s *MemoryStore) GetAccountByHandle(_ context.Context, handle string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.Handle == handle {
			return copyAccount(a), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CountAccounts(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.accounts), nil
}

func (s *MemoryStore) UpdatePaymentRefs(_ context.Context, accountID int64, refs PaymentRefs) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.accounts {
		if a.ID != accountID {
			continue
		}
		updated := *a
		updated.PaymentCustomerRef = optionalString(refs.CustomerRef)
		updated.PaymentSubscriptionRef = optionalString(refs.SubscriptionRef)
		s.accounts[i] = &updated
		return copyAccount(&updated), nil
	}
	return nil, apperror.NotFound("account", accountID)
}

func (s *MemoryStore) CreateSubscription(_ context.Context, ns NewSubscription) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountLocked(ns.AccountID) == nil {
		return nil, apperror.NotFound("account", ns.AccountID)
	}
	return copySubscription(s.insertSubscriptionLocked(ns)), nil
}

func (s *MemoryStore) insertSubscriptionLocked(ns NewSubscription) *model.Subscription {
	status := ns.Status
	if status == "" {
		status = model.StatusPending
	}
	now := s.now()
	s.lastSubscriptionID++
	sub := &model.Subscription{
		ID:            s.lastSubscriptionID,
		AccountID:     ns.AccountID,
		Plan:          ns.Plan,
		Status:        status,
		PaymentMethod: ns.PaymentMethod,
		StartDate:     now,
		EndDate:       periodEnd(now),
		CreatedAt:     now,
	}
	s.subscriptions = append(s.subscriptions, sub)
	return sub
}

// Subscribe finds the account with a.Email, creating it from a when absent,
// and opens a pending subscription for it.
func (s *MemoryStore) Subscribe(_ context.Context, a NewAccount, plan model.Tier, method model.PaymentMethod) (*model.Account, *model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.accountByEmailLocked(a.Email)
	if acct == nil {
		var err error
		acct, err = s.insertAccountLocked(a)
		if err != nil {
			return nil, nil, err
		}
	}

	sub := s.insertSubscriptionLocked(NewSubscription{
		AccountID:     acct.ID,
		Plan:          plan,
		Status:        model.StatusPending,
		PaymentMethod: method,
	})
	return copyAccount(acct), copySubscription(sub), nil
}

func (s *MemoryStore) GetSubscription(_ context.Context, id int64) (*model.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, sub := s.subscriptionLocked(id)
	return copySubscription(sub), nil
}

func (s *MemoryStore) subscriptionLocked(id int64) (int, *model.Subscription) {
	for i, sub := range s.subscriptions {
		if sub.ID == id {
			return i, sub
		}
	}
	return -1, nil
}

// GetSubscriptionByAccount returns the most recently created subscription of the account.
func (s *MemoryStore) GetSubscriptionByAccount(_ context.Context, accountID int64) (*model.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.subscriptions) - 1; i >= 0; i-- {
		if s.subscriptions[i].AccountID == accountID {
			return copySubscription(s.subscriptions[i]), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpdateSubscriptionStatus(_ context.Context, id int64, status model.Status) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setStatusLocked(id, status)
}

func (s *MemoryStore) setStatusLocked(id int64, status model.Status) (*model.Subscription, error) {
	i, sub := s.subscriptionLocked(id)
	if sub == nil {
		return nil, apperror.NotFound("subscription", id)
	}
	updated := *sub
	updated.Status = status
	s.subscriptions[i] = &updated
	return copySubscription(&updated), nil
}

func (s *MemoryStore) ConfirmSubscription(_ context.Context, p ConfirmParams) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.setStatusLocked(p.SubscriptionID, model.StatusActive)
	if err != nil {
		return nil, err
	}

	if p.PaymentRef != "" && p.AccountID == sub.AccountID {
		for i, a := range s.accounts {
			if a.ID == p.AccountID {
				updated := *a
				updated.PaymentSubscriptionRef = optionalString(p.PaymentRef)
				s.accounts[i] = &updated
				break
			}
		}
	}
	return sub, nil
}

func (s *MemoryStore) CreateContent(_ context.Context, nc NewContent) (*model.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := model.ParseTier(string(nc.MinTier)); !ok {
		return nil, apperror.Validation("minSubscriptionLevel", "must be basic, professional or enterprise")
	}

	now := s.now()
	s.lastContentID++
	item := &model.ContentItem{
		ID:          s.lastContentID,
		Title:       nc.Title,
		Body:        nc.Body,
		Excerpt:     nc.Excerpt,
		Category:    nc.Category,
		ImageURL:    nc.ImageURL,
		AuthorName:  nc.AuthorName,
		AuthorImage: nc.AuthorImage,
		PublishDate: now,
		MinTier:     nc.MinTier,
		ReadTime:    nc.ReadTime,
		CreatedAt:   now,
	}
	s.content = append(s.content, item)
	c := *item
	return &c, nil
}

func (s *MemoryStore) GetContent(_ context.Context, id int64) (*model.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.content {
		if item.ID == id {
			c := *item
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListContent(_ context.Context) ([]model.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.ContentItem, 0, len(s.content))
	for _, item := range s.content {
		items = append(items, *item)
	}
	return items, nil
}

func (s *MemoryStore) ListContentByCategory(ctx context.Context, category string) ([]model.ContentItem, error) {
	all, err := s.ListContent(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.ContentItem, 0)
	for _, item := range all {
		if item.Category == category {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *MemoryStore) ListContentByTier(ctx context.Context, tier string) ([]model.ContentItem, error) {
	all, err := s.ListContent(ctx)
	if err != nil {
		return nil, err
	}
	return access.Filter(all, tier), nil
}

// Close is a no-op; the store lives as long as the process.
func (s *MemoryStore) Close() error {
	return nil
}

func copyAccount(a *model.Account) *model.Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.PaymentCustomerRef != nil {
		ref := *a.PaymentCustomerRef
		c.PaymentCustomerRef = &ref
	}
	if a.PaymentSubscriptionRef != nil {
		ref := *a.PaymentSubscriptionRef
		c.PaymentSubscriptionRef = &ref
	}
	return &c
}

func copySubscription(sub *model.Subscription) *model.Subscription {
	if sub == nil {
		return nil
	}
	c := *sub
	return &c
}
