package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a session token stays valid after sign-in.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Claims are the session token claims. They carry enough identity for the
// HTTP layer to authorize a request without loading the user record.
type Claims struct {
	jwt.RegisteredClaims

	// Email is the normalized account email.
	Email string `json:"email"`

	// Role is the account role at the time the token was issued.
	Role string `json:"role"`
}

// NewSessionClaims builds claims for userID that expire at expiresAt. The
// expiry is truncated to whole seconds, which is the resolution of the exp
// claim, so callers can persist the same instant alongside the session.
func NewSessionClaims(
	userID, email, role, issuer string,
	issuedAt, expiresAt time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt.Truncate(time.Second)),
			ID:        uuid.NewString(),
		},
		Email: email,
		Role:  role,
	}
}

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiryAt ensures the token is not expired at now. A token whose
// exp equals now is already expired.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil || !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
