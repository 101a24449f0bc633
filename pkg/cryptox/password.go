package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for stored passwords. Anything
// below it is only acceptable in tests.
const DefaultCost = 12

// MaxPasswordLength is the longest password bcrypt will consider in full.
// Longer inputs are rejected instead of being silently truncated.
const MaxPasswordLength = 72

var (
	ErrMismatch        = errors.New("password does not match")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// HashPassword returns a salted bcrypt hash of password at the given cost.
// A cost below bcrypt.MinCost is raised to DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash in
// constant time. Any mismatch, including a malformed hash, returns an error;
// only ErrMismatch means the hash was well formed.
func VerifyPassword(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("cryptox: verify password: %w", err)
	}
}

// HashCost reports the work factor a stored hash was produced with.
func HashCost(encodedHash string) (int, error) {
	return bcrypt.Cost([]byte(encodedHash))
}
