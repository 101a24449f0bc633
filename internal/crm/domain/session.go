package domain

import "time"

// Session is the server-side record behind an issued session token. Only a
// fingerprint of the token is stored.
type Session struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the signed token
	ExpiresAt time.Time
	Active    bool
	CreatedAt time.Time
	ClientIP  string
	UserAgent string
}

// IsUsable reports whether the session can authenticate a request at now.
// Expiry is strict: a session is already expired at ExpiresAt.
func (s Session) IsUsable(now time.Time) bool {
	return s.Active && now.Before(s.ExpiresAt)
}

// TokenClaims is the identity recovered from a validated session token.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      Role
	SessionID string
	ExpiresAt time.Time
}
