package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store/drivers/sqlite"
	"github.com/aussiebroadwan/salesdesk/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testIssuer = "salesdesk-test"

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store   store.Store
	clock   *fakeClock
	auth    *AuthService
	records *RecordService
	reports *ReportService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	clock := newClock()
	return &testEnv{
		store: st,
		clock: clock,
		auth: &AuthService{
			Store:      st,
			Hasher:     NewPasswordHasher(bcrypt.MinCost, 4),
			Signer:     signer,
			Verifier:   jwtx.NewVerifierHS256(testSecret, testIssuer, clock.Now),
			Roles:      EmailHeuristicPolicy{},
			Issuer:     testIssuer,
			SessionTTL: jwtx.DefaultSessionTTL,
			Now:        clock.Now,
		},
		records: &RecordService{Store: st, Now: clock.Now},
		reports: &ReportService{Store: st, Now: clock.Now},
	}
}

func (e *testEnv) signUp(t *testing.T, email string) AuthResult {
	t.Helper()
	res, err := e.auth.SignUp(context.Background(), email, "correct horse", "Test User", ClientInfo{IP: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	return res
}

func actorOf(res AuthResult) Actor {
	return Actor{UserID: res.User.ID, Role: res.User.Role}
}

func TestRolePolicies(t *testing.T) {
	t.Parallel()

	heuristic := EmailHeuristicPolicy{}
	require.Equal(t, domain.RoleAdministrator, heuristic.RoleFor("admin@example.com"))
	require.Equal(t, domain.RoleAdministrator, heuristic.RoleFor("Site.ADMIN.Team@example.com"))
	require.Equal(t, domain.RoleStandardUser, heuristic.RoleFor("alice@example.com"))

	allow := NewAllowListPolicy([]string{" Boss@Example.com ", ""})
	require.Equal(t, domain.RoleAdministrator, allow.RoleFor("boss@example.com"))
	require.Equal(t, domain.RoleStandardUser, allow.RoleFor("admin@example.com"))
}

func TestPasswordHasher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := NewPasswordHasher(bcrypt.MinCost, 0)

	hash, err := h.Hash(ctx, "s3cret-password")
	require.NoError(t, err)
	require.NoError(t, h.Verify(ctx, "s3cret-password", hash))
	require.Error(t, h.Verify(ctx, "wrong", hash))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	full := NewPasswordHasher(bcrypt.MinCost, 1)
	require.NoError(t, full.sem.Acquire(ctx, 1))
	_, err = full.Hash(cancelled, "s3cret-password")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, ErrOverloaded)
	require.ErrorIs(t, full.Verify(cancelled, "s3cret-password", hash), ErrOverloaded)
	require.ErrorIs(t, full.VerifyDummy(cancelled, "s3cret-password"), ErrOverloaded)
	require.NoError(t, h.VerifyDummy(ctx, "s3cret-password"))
}
