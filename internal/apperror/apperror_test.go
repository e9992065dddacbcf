package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: Validation("email", "is required"), want: http.StatusBadRequest},
		{name: "wrapped validation", err: fmt.Errorf("register: %w", Validation("email", "bad")), want: http.StatusBadRequest},
		{name: "conflict", err: Conflict("account", "email", "a@x.com"), want: http.StatusBadRequest},
		{name: "not found", err: NotFound("subscription", 4), want: http.StatusNotFound},
		{name: "collaborator", err: Collaborator("stripe", "create payment intent", errors.New("boom")), want: http.StatusInternalServerError},
		{name: "plain", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNotFoundWraps(t *testing.T) {
	err := NotFound("subscription", 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected errors.Is(err, ErrNotFound)")
	}
	if err.Error() != "subscription with id 42 not found" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestConflictWraps(t *testing.T) {
	err := Conflict("account", "email", "a@x.com")
	if !errors.Is(err, ErrConflict) {
		t.Fatal("expected errors.Is(err, ErrConflict)")
	}
	if err.Error() != "account with this email already exists" {
		t.Errorf("message = %q", err.Error())
	}
	if got := ConflictField(fmt.Errorf("create account: %w", err)); got != "email" {
		t.Errorf("ConflictField = %q, want email", got)
	}
	if got := ConflictField(errors.New("other")); got != "" {
		t.Errorf("ConflictField = %q, want empty", got)
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "validation", err: Validation("email", "is required"), want: "email: is required"},
		{name: "conflict", err: fmt.Errorf("create: %w", Conflict("account", "username", "bob")), want: "create: account with this username already exists"},
		{name: "not found", err: NotFound("subscription", 9), want: "subscription with id 9 not found"},
		{name: "collaborator", err: Collaborator("stripe", "create", errors.New("sk_live leaked")), want: "failed"},
		{name: "plain", err: errors.New("sql: connection refused"), want: "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicMessage(tt.err, "failed"); got != tt.want {
				t.Errorf("PublicMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollaboratorUnwrap(t *testing.T) {
	inner := errors.New("card declined")
	err := fmt.Errorf("payment intent: %w", Collaborator("stripe", "create", inner))
	if !IsCollaborator(err) {
		t.Fatal("expected collaborator error")
	}
	if !errors.Is(err, inner) {
		t.Error("expected inner error to be reachable")
	}
	if Collaborator("stripe", "create", nil) != nil {
		t.Error("expected nil for nil inner error")
	}
}

func TestValidationMessage(t *testing.T) {
	if got := Validation("", "All fields are required").Error(); got != "All fields are required" {
		t.Errorf("message = %q", got)
	}
	if got := Validation("plan", "is invalid").Error(); got != "plan: is invalid" {
		t.Errorf("message = %q", got)
	}
}
