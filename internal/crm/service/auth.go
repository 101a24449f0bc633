package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/pkg/cryptox"
	"github.com/aussiebroadwan/salesdesk/pkg/idx"
	"github.com/aussiebroadwan/salesdesk/pkg/jwtx"
	"github.com/aussiebroadwan/salesdesk/pkg/slogx"
)

const (
	MinPasswordLength    = 8
	MaxDisplayNameLength = 200
	maxEmailLength       = 254
	maxUserAgentLength   = 512
)

// AuthService issues and validates session tokens. Every issued token is
// backed by a stored session so it can be revoked before it expires.
type AuthService struct {
	Store      store.Store
	Hasher     *PasswordHasher
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Roles      RolePolicy
	Issuer     string
	SessionTTL time.Duration
	Now        func() time.Time
}

// ClientInfo describes the caller a session is issued to.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// AuthResult is returned by SignUp and SignIn.
type AuthResult struct {
	User      domain.PublicUser
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) ttl() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

// SignUp registers a new account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password, displayName string, client ClientInfo) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if err := validateEmail(email); err != nil {
		return AuthResult{}, err
	}
	if err := validatePassword(password); err != nil {
		return AuthResult{}, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return AuthResult{}, err
	}

	// Cheap pre-check; the unique index is the real guard.
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrDuplicateAccount
	} else if !errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, storeErr("lookup user", err)
	}

	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		return AuthResult{}, err
	}

	now := s.now()
	user := domain.User{
		ID:            idx.New().String(),
		Email:         email,
		DisplayName:   displayName,
		PasswordHash:  hash,
		Role:          s.Roles.RoleFor(email),
		Active:        true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastLoginAt:   &now,
	}

	var res AuthResult
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		res, err = s.issueSession(ctx, tx, user, client, now)
		return err
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return AuthResult{}, ErrDuplicateAccount
	}
	if err != nil {
		return AuthResult{}, storeErr("sign up", err)
	}

	l.Info("account created", "user_id", user.ID, "role", user.Role)
	return res, nil
}

// SignIn checks credentials and issues a new session. Any previously active
// sessions of the user are deactivated in the same transaction, so at most
// one session per user is active afterwards.
func (s *AuthService) SignIn(ctx context.Context, email, password string, client ClientInfo) (AuthResult, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := s.Hasher.VerifyDummy(ctx, password); err != nil {
			return AuthResult{}, err
		}
		l.Info("sign in rejected", "reason", "unknown_email")
		return AuthResult{}, ErrInvalidCredentials
	case err != nil:
		return AuthResult{}, storeErr("lookup user", err)
	}

	if err := s.Hasher.Verify(ctx, password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrOverloaded) {
			return AuthResult{}, err
		}
		if !errors.Is(err, cryptox.ErrMismatch) {
			l.Error("password verification failed", "user_id", user.ID, "error", err)
		} else {
			l.Info("sign in rejected", "reason", "bad_password", "user_id", user.ID)
		}
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.Active {
		l.Info("sign in rejected", "reason", "inactive", "user_id", user.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	now := s.now()
	upd := domain.UserUpdate{LastLoginAt: &now}
	if s.Hasher.NeedsRehash(user.PasswordHash) {
		if hash, err := s.Hasher.Hash(ctx, password); err != nil {
			l.Warn("password rehash skipped", "user_id", user.ID, "error", err)
		} else {
			upd.PasswordHash = &hash
		}
	}

	var res AuthResult
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Touching the user row first serializes concurrent sign-ins of the
		// same user on its row lock.
		updated, err := updateUser(ctx, tx.Users(), user.ID, upd)
		if err != nil {
			return err
		}
		n, err := tx.Sessions().DeactivateUserSessions(ctx, user.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			l.Debug("superseded sessions", "user_id", user.ID, "count", n)
		}
		res, err = s.issueSession(ctx, tx, updated, client, now)
		return err
	})
	if err != nil {
		return AuthResult{}, storeErr("sign in", err)
	}

	l.Info("signed in", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) issueSession(ctx context.Context, tx store.Tx, user domain.User, client ClientInfo, now time.Time) (AuthResult, error) {
	claims := jwtx.NewSessionClaims(user.ID, user.Email, string(user.Role), s.Issuer, now, now.Add(s.ttl()))
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return AuthResult{}, err
	}

	sess := domain.Session{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
		Active:    true,
		CreatedAt: now,
		ClientIP:  client.IP,
		UserAgent: truncate(client.UserAgent, maxUserAgentLength),
	}
	if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user.Public(), Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// ValidateToken verifies the token signature and expiry, then requires the
// backing session to still be active.
func (s *AuthService) ValidateToken(ctx context.Context, raw string) (domain.TokenClaims, error) {
	claims, err := s.Verifier.Verify(raw)
	if err != nil {
		slogx.FromContext(ctx).Debug("token rejected", "error", err)
		return domain.TokenClaims{}, ErrInvalidToken
	}

	now := s.now()
	sess, err := s.Store.Sessions().GetActiveSessionByTokenHash(ctx, cryptox.FingerprintToken(raw), now)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.TokenClaims{}, ErrSessionRevoked
	case err != nil:
		return domain.TokenClaims{}, storeErr("lookup session", err)
	}
	if !sess.IsUsable(now) {
		return domain.TokenClaims{}, ErrSessionRevoked
	}
	if sess.UserID != claims.UserID() {
		return domain.TokenClaims{}, ErrInvalidToken
	}

	return domain.TokenClaims{
		UserID:    claims.UserID(),
		Email:     claims.Email,
		Role:      domain.Role(claims.Role),
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// SignOut deactivates every active session of userID. Signing out with no
// active sessions is not an error.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	n, err := s.Store.Sessions().DeactivateUserSessions(ctx, userID)
	if err != nil {
		return storeErr("sign out", err)
	}
	slogx.FromContext(ctx).Info("signed out", "user_id", userID, "sessions", n)
	return nil
}

// Me returns the public projection of userID.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.PublicUser, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.PublicUser{}, storeErr("get user", err)
	}
	return u.Public(), nil
}

// updateUser applies upd and reads the row back through the same repository,
// so inside a transaction the caller sees its own write.
func updateUser(ctx context.Context, users store.Users, id string, upd domain.UserUpdate) (domain.User, error) {
	if err := users.UpdateUser(ctx, id, upd); err != nil {
		return domain.User{}, err
	}
	return users.GetUserByID(ctx, id)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID, displayName string) (domain.PublicUser, error) {
	displayName = strings.TrimSpace(displayName)
	if err := validateDisplayName(displayName); err != nil {
		return domain.PublicUser{}, err
	}
	u, err := updateUser(ctx, s.Store.Users(), userID, domain.UserUpdate{DisplayName: &displayName})
	if err != nil {
		return domain.PublicUser{}, storeErr("update profile", err)
	}
	return u.Public(), nil
}

// ChangePassword replaces the password after checking the current one and
// revokes every session of the user, including the caller's.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if err := validatePassword(next); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Field = "newPassword"
		}
		return err
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return storeErr("get user", err)
	}
	if err := s.Hasher.Verify(ctx, current, u.PasswordHash); err != nil {
		if errors.Is(err, ErrOverloaded) {
			return err
		}
		return ErrInvalidCredentials
	}

	hash, err := s.Hasher.Hash(ctx, next)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUser(ctx, userID, domain.UserUpdate{PasswordHash: &hash}); err != nil {
			return err
		}
		_, err := tx.Sessions().DeactivateUserSessions(ctx, userID)
		return err
	})
	if err != nil {
		return storeErr("change password", err)
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	return nil
}

// AdminUpdateUser changes the role or active flag of another account.
// Deactivating an account also revokes its sessions.
func (s *AuthService) AdminUpdateUser(ctx context.Context, userID string, role *domain.Role, active *bool) (domain.PublicUser, error) {
	if role != nil && !role.Valid() {
		return domain.PublicUser{}, invalid("role", "must be administrator or standard_user")
	}
	upd := domain.UserUpdate{Role: role, Active: active}
	if upd.IsEmpty() {
		return domain.PublicUser{}, invalid("body", "must set role or active")
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if updated, err = updateUser(ctx, tx.Users(), userID, upd); err != nil {
			return err
		}
		if active != nil && !*active {
			_, err = tx.Sessions().DeactivateUserSessions(ctx, userID)
		}
		return err
	})
	if err != nil {
		return domain.PublicUser{}, storeErr("admin update user", err)
	}

	slogx.FromContext(ctx).Info("user updated by administrator",
		slog.String("user_id", userID),
		slog.String("role", string(updated.Role)),
		slog.Bool("active", updated.Active),
	)
	return updated.Public(), nil
}

// ProvisionUser creates an account with an explicit role and no session.
func (s *AuthService) ProvisionUser(ctx context.Context, email, password, displayName string, role domain.Role) (domain.PublicUser, error) {
	email = domain.NormalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if err := validateEmail(email); err != nil {
		return domain.PublicUser{}, err
	}
	if err := validatePassword(password); err != nil {
		return domain.PublicUser{}, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return domain.PublicUser{}, err
	}
	if !role.Valid() {
		return domain.PublicUser{}, invalid("role", "must be administrator or standard_user")
	}

	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		return domain.PublicUser{}, err
	}

	now := s.now()
	user := domain.User{
		ID:            idx.New().String(),
		Email:         email,
		DisplayName:   displayName,
		PasswordHash:  hash,
		Role:          role,
		Active:        true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.PublicUser{}, ErrDuplicateAccount
		}
		return domain.PublicUser{}, storeErr("provision user", err)
	}
	return user.Public(), nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	if len(email) > maxEmailLength {
		return invalid("email", "is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndexByte(email, '@')+1:], ".") {
		return invalid("email", "is not a valid address")
	}
	return nil
}

func validatePassword(pw string) error {
	switch {
	case pw == "":
		return invalid("password", "is required")
	case utf8.RuneCountInString(pw) < MinPasswordLength:
		return invalid("password", "must be at least 8 characters")
	case len(pw) > cryptox.MaxPasswordLength:
		return invalid("password", "must be at most 72 bytes")
	}
	return nil
}

func validateDisplayName(name string) error {
	if name == "" {
		return invalid("displayName", "is required")
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return invalid("displayName", "is too long")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
