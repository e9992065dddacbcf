package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dukerupert/portfolio/internal/access"
	"github.com/dukerupert/portfolio/internal/apperror"
	"github.com/dukerupert/portfolio/internal/model"
)

// SQLiteStore keeps entities in a SQLite database opened by database.Open.
// Unique keys are enforced by the schema, so a create is a single
// insert-if-absent statement.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	o := buildOptions(opts)
	return &SQLiteStore{db: db, now: o.now}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const accountCols = `id, username, secret_hash, email, name, payment_customer_ref, payment_subscription_ref, created_at`

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	var customerRef, subscriptionRef sql.NullString
	err := scanner.Scan(&a.ID, &a.Handle, &a.SecretHash, &a.Email, &a.Name, &customerRef, &subscriptionRef, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if customerRef.Valid {
		a.PaymentCustomerRef = &customerRef.String
	}
	if subscriptionRef.Valid {
		a.PaymentSubscriptionRef = &subscriptionRef.String
	}
	return &a, nil
}

func (s *SQLiteStore) CreateAccount(ctx context.Context, a NewAccount) (*model.Account, error) {
	return s.insertAccount(ctx, s.db, a)
}

func (s *SQLiteStore) insertAccount(ctx context.Context, q queryer, a NewAccount) (*model.Account, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO accounts (username, secret_hash, email, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.Handle, a.SecretHash, a.Email, a.Name, s.now(),
	)
	if err != nil {
		if conflict := accountConflict(err, a); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return getAccount(ctx, q, id)
}

// accountConflict translates a unique-constraint violation into apperror.ErrConflict.
func accountConflict(err error, a NewAccount) error {
	var serr *sqlite.Error
	if !errors.As(err, &serr) || serr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return nil
	}
	if strings.Contains(serr.Error(), "accounts.username") {
		return apperror.Conflict("account", "username", a.Handle)
	}
	return apperror.Conflict("account", "email", a.Email)
}

func getAccount(ctx context.Context, q queryer, id int64) (*model.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	return getAccount(ctx, s.db, id)
}

func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return getAccountByEmail(ctx, s.db, email)
}

func getAccountByEmail(ctx context.Context, q queryer, email string) (*model.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountCols+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) GetAccountByHandle(ctx context.Context, handle string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountCols+` FROM accounts WHERE username = ?`, handle)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by username: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) CountAccounts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) UpdatePaymentRefs(ctx context.Context, accountID int64, refs PaymentRefs) (*model.Account, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET payment_customer_ref = ?, payment_subscription_ref = ? WHERE id = ?`,
		optionalString(refs.CustomerRef), optionalString(refs.SubscriptionRef), accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("update payment refs: %w", err)
	}
	if err := requireRow(result, "account", accountID); err != nil {
		return nil, err
	}
	return s.GetAccount(ctx, accountID)
}

const subscriptionCols = `id, account_id, plan, status, payment_method, start_date, end_date, created_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.Subscription, error) {
	var sub model.Subscription
	var plan, status, method string
	err := scanner.Scan(&sub.ID, &sub.AccountID, &plan, &status, &method, &sub.StartDate, &sub.EndDate, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	sub.Plan = model.Tier(plan)
	sub.Status = model.Status(status)
	sub.PaymentMethod = model.PaymentMethod(method)
	return &sub, nil
}

func (s *SQLiteStore) CreateSubscription(ctx context.Context, ns NewSubscription) (*model.Subscription, error) {
	acct, err := s.GetAccount(ctx, ns.AccountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, apperror.NotFound("account", ns.AccountID)
	}
	return s.insertSubscription(ctx, s.db, ns)
}

func (s *SQLiteStore) insertSubscription(ctx context.Context, q queryer, ns NewSubscription) (*model.Subscription, error) {
	status := ns.Status
	if status == "" {
		status = model.StatusPending
	}
	now := s.now()
	result, err := q.ExecContext(ctx,
		`INSERT INTO subscriptions (account_id, plan, status, payment_method, start_date, end_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ns.AccountID, string(ns.Plan), string(status), string(ns.PaymentMethod), now, periodEnd(now), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return getSubscription(ctx, q, id)
}

func (s *SQLiteStore) Subscribe(ctx context.Context, a NewAccount, plan model.Tier, method model.PaymentMethod) (*model.Account, *model.Subscription, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin subscribe: %w", err)
	}
	defer tx.Rollback()

	acct, err := getAccountByEmail(ctx, tx, a.Email)
	if err != nil {
		return nil, nil, err
	}
	if acct == nil {
		acct, err = s.insertAccount(ctx, tx, a)
		if err != nil {
			return nil, nil, err
		}
	}

	sub, err := s.insertSubscription(ctx, tx, NewSubscription{
		AccountID:     acct.ID,
		Plan:          plan,
		Status:        model.StatusPending,
		PaymentMethod: method,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit subscribe: %w", err)
	}
	return acct, sub, nil
}

func getSubscription(ctx context.Context, q queryer, id int64) (*model.Subscription, error) {
	row := q.QueryRowContext(ctx, `SELECT `+subscriptionCols+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *SQLiteStore) GetSubscription(ctx context.Context, id int64) (*model.Subscription, error) {
	return getSubscription(ctx, s.db, id)
}

func (s *SQLiteStore) GetSubscriptionByAccount(ctx context.Context, accountID int64) (*model.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+subscriptionCols+` FROM subscriptions WHERE account_id = ? ORDER BY id DESC LIMIT 1`,
		accountID,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by account: %w", err)
	}
	return sub, nil
}

func (s *SQLiteStore) UpdateSubscriptionStatus(ctx context.Context, id int64, status model.Status) (*model.Subscription, error) {
	if err := updateStatus(ctx, s.db, id, status); err != nil {
		return nil, err
	}
	return s.GetSubscription(ctx, id)
}

func updateStatus(ctx context.Context, q queryer, id int64, status model.Status) error {
	result, err := q.ExecContext(ctx, `UPDATE subscriptions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	return requireRow(result, "subscription", id)
}

func (s *SQLiteStore) ConfirmSubscription(ctx context.Context, p ConfirmParams) (*model.Subscription, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin confirm: %w", err)
	}
	defer tx.Rollback()

	if err := updateStatus(ctx, tx, p.SubscriptionID, model.StatusActive); err != nil {
		return nil, err
	}
	if p.PaymentRef != "" {
		_, err := tx.ExecContext(ctx,
			`UPDATE accounts SET payment_subscription_ref = ?
			 WHERE id = ? AND id = (SELECT account_id FROM subscriptions WHERE id = ?)`,
			p.PaymentRef, p.AccountID, p.SubscriptionID,
		)
		if err != nil {
			return nil, fmt.Errorf("record payment ref: %w", err)
		}
	}

	sub, err := getSubscription(ctx, tx, p.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit confirm: %w", err)
	}
	return sub, nil
}

const contentCols = `id, title, body, excerpt, category, image_url, author_name, author_image, publish_date, min_tier, read_time, created_at`

func scanContent(scanner interface{ Scan(...any) error }) (*model.ContentItem, error) {
	var c model.ContentItem
	var tier string
	err := scanner.Scan(&c.ID, &c.Title, &c.Body, &c.Excerpt, &c.Category, &c.ImageURL,
		&c.AuthorName, &c.AuthorImage, &c.PublishDate, &tier, &c.ReadTime, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.MinTier = model.Tier(tier)
	return &c, nil
}

func (s *SQLiteStore) CreateContent(ctx context.Context, nc NewContent) (*model.ContentItem, error) {
	if _, ok := model.ParseTier(string(nc.MinTier)); !ok {
		return nil, apperror.Validation("minSubscriptionLevel", "must be basic, professional or enterprise")
	}
	now := s.now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO content_items (title, body, excerpt, category, image_url, author_name, author_image, publish_date, min_tier, read_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nc.Title, nc.Body, nc.Excerpt, nc.Category, nc.ImageURL, nc.AuthorName, nc.AuthorImage,
		now, string(nc.MinTier), nc.ReadTime, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetContent(ctx, id)
}

func (s *SQLiteStore) GetContent(ctx context.Context, id int64) (*model.ContentItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contentCols+` FROM content_items WHERE id = ?`, id)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListContent(ctx context.Context) ([]model.ContentItem, error) {
	return s.listContent(ctx, `SELECT `+contentCols+` FROM content_items ORDER BY id ASC`)
}

func (s *SQLiteStore) ListContentByCategory(ctx context.Context, category string) ([]model.ContentItem, error) {
	return s.listContent(ctx, `SELECT `+contentCols+` FROM content_items WHERE category = ? ORDER BY id ASC`, category)
}

func (s *SQLiteStore) ListContentByTier(ctx context.Context, tier string) ([]model.ContentItem, error) {
	all, err := s.ListContent(ctx)
	if err != nil {
		return nil, err
	}
	return access.Filter(all, tier), nil
}

func (s *SQLiteStore) listContent(ctx context.Context, query string, args ...any) ([]model.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	items := make([]model.ContentItem, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func requireRow(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(kind, id)
	}
	return nil
}
