package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/portfolio/internal/apperror"
	"github.com/dukerupert/portfolio/internal/metrics"
	"github.com/dukerupert/portfolio/internal/store"
)

// hashCost is the bcrypt cost for account secrets.
var hashCost = bcrypt.DefaultCost

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

type AccountHandler struct {
	store   store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewAccountHandler(s store.Store, m *metrics.Metrics, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{store: s, metrics: m, logger: logger}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name" validate:"required"`
}

// Register creates an account. The response never carries the secret.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err, "Failed to register user")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		writeError(w, r, h.logger, err, "Failed to register user")
		return
	}

	hash, err := hashSecret(req.Password)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to register user")
		return
	}

	acct, err := h.store.CreateAccount(r.Context(), store.NewAccount{
		Handle:     req.Username,
		SecretHash: hash,
		Email:      req.Email,
		Name:       req.Name,
	})
	if err != nil {
		switch apperror.ConflictField(err) {
		case "email":
			writeMessage(w, http.StatusBadRequest, "User with this email already exists")
		case "username":
			writeMessage(w, http.StatusBadRequest, "User with this username already exists")
		default:
			writeError(w, r, h.logger, err, "Failed to register user")
		}
		return
	}

	h.metrics.AccountRegistered()
	h.logger.Info("account registered", "account_id", acct.ID)
	writeJSON(w, http.StatusCreated, acct)
}

// Subscription returns the account's most recent subscription.
func (h *AccountHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err, "Invalid id")
		return
	}

	sub, err := h.store.GetSubscriptionByAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch subscription")
		return
	}
	if sub == nil {
		writeMessage(w, http.StatusNotFound, "Subscription not found")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
