package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
)

// Error taxonomy of the service layer. Messages are safe to show to clients.
var (
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionRevoked     = errors.New("session has been revoked")
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage temporarily unavailable")
	ErrOverloaded         = errors.New("server busy, try again later")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// fromFieldError converts payload validation failures into ValidationError.
func fromFieldError(err error) error {
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		return &ValidationError{Field: fe.Field, Message: fe.Message}
	}
	return err
}

// storeErr translates store errors at the service boundary. Missing rows
// become ErrNotFound, unreachable backends ErrStorageUnavailable, and
// anything else is wrapped with op for server-side logs.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case store.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
