// Package apperror defines the failure categories shared by the store,
// the collaborators and the HTTP handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation returns a ValidationError for field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFound wraps ErrNotFound with the kind and id that were missing.
func NotFound(kind string, id int64) error {
	return fmt.Errorf("%s with id %d %w", kind, id, ErrNotFound)
}

// ConflictError reports a unique key that was already taken. It matches
// ErrConflict under errors.Is.
type ConflictError struct {
	Kind  string
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Kind, e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Conflict returns a ConflictError for the taken key.
func Conflict(kind, field, value string) error {
	return &ConflictError{Kind: kind, Field: field, Value: value}
}

// ConflictField returns the field of the ConflictError in err's chain, or "".
func ConflictField(err error) string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return ""
}

// CollaboratorError is a failure of an external provider. Err carries the
// provider detail, which is logged but not shown to clients.
type CollaboratorError struct {
	Provider string
	Op       string
	Err      error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Collaborator wraps err as a CollaboratorError. A nil err stays nil.
func Collaborator(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Provider: provider, Op: op, Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCollaborator reports whether err is or wraps a CollaboratorError.
func IsCollaborator(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}

// PublicMessage returns text about err that is safe to show a client.
// Unclassified and collaborator errors get fallback.
func PublicMessage(err error, fallback string) string {
	switch {
	case IsValidation(err), errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		return err.Error()
	default:
		return fallback
	}
}

// StatusCode maps err onto the HTTP status a handler should answer with.
// Conflicts surface as 400 because clients treat them as bad input.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
