package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/stretchr/testify/require"
)

// fakeStore answers user lookups from a map, or fails every call with err.
type fakeStore struct {
	name  string
	err   error
	delay time.Duration
	users map[string]domain.User
	calls int
}

func (s *fakeStore) fail(ctx context.Context) error {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func (s *fakeStore) Users() store.Users       { return fakeUsers{s} }
func (s *fakeStore) Sessions() store.Sessions { return nil }
func (s *fakeStore) Records() store.Records   { return nil }
func (s *fakeStore) ApplyMigrations() error   { return s.err }
func (s *fakeStore) Close() error             { return nil }
func (s *fakeStore) Name() string             { return s.name }

func (s *fakeStore) Ping(ctx context.Context) error { return s.fail(ctx) }

func (s *fakeStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := s.fail(ctx); err != nil {
		return err
	}
	return fn(s)
}

type fakeUsers struct{ s *fakeStore }

func (u fakeUsers) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return u.GetUserByEmail(ctx, id)
}

func (u fakeUsers) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := u.s.fail(ctx); err != nil {
		return domain.User{}, err
	}
	usr, ok := u.s.users[email]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return usr, nil
}

func (u fakeUsers) CreateUser(ctx context.Context, usr domain.User) error {
	if err := u.s.fail(ctx); err != nil {
		return err
	}
	if _, ok := u.s.users[usr.Email]; ok {
		return store.ErrAlreadyExists
	}
	u.s.users[usr.Email] = usr
	return nil
}

func (u fakeUsers) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) error {
	return u.s.fail(ctx)
}

func newFake(name string, err error) *fakeStore {
	return &fakeStore{name: name, err: err, users: map[string]domain.User{}}
}

func TestFailover_PrimaryHealthy(t *testing.T) {
	primary, fallback := newFake("primary", nil), newFake("fallback", nil)
	primary.users["a@x.com"] = domain.User{ID: "p"}
	f := store.NewFailover(primary, fallback, time.Second)

	u, err := f.Users().GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "p", u.ID)
	require.Zero(t, fallback.calls)
}

func TestFailover_LogicalErrorsDoNotFailOver(t *testing.T) {
	primary, fallback := newFake("primary", nil), newFake("fallback", nil)
	fallback.users["a@x.com"] = domain.User{ID: "f"}
	f := store.NewFailover(primary, fallback, time.Second)

	_, err := f.Users().GetUserByEmail(context.Background(), "a@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Zero(t, fallback.calls)
}

func TestFailover_UnavailablePrimaryUsesFallbackOnce(t *testing.T) {
	primary := newFake("primary", fmt.Errorf("%w: connection refused", store.ErrUnavailable))
	fallback := newFake("fallback", nil)
	fallback.users["a@x.com"] = domain.User{ID: "f"}
	f := store.NewFailover(primary, fallback, time.Second)

	u, err := f.Users().GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "f", u.ID)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, fallback.calls)
}

func TestFailover_TimeoutCountsAsUnavailable(t *testing.T) {
	primary := newFake("primary", nil)
	primary.delay = time.Second
	fallback := newFake("fallback", nil)
	fallback.users["a@x.com"] = domain.User{ID: "f"}
	f := store.NewFailover(primary, fallback, 20*time.Millisecond)

	u, err := f.Users().GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "f", u.ID)
}

func TestFailover_BothDown(t *testing.T) {
	primary := newFake("primary", fmt.Errorf("%w: refused", store.ErrUnavailable))
	fallback := newFake("fallback", fmt.Errorf("%w: disk gone", store.ErrUnavailable))
	f := store.NewFailover(primary, fallback, time.Second)

	err := f.Users().CreateUser(context.Background(), domain.User{Email: "a@x.com"})
	require.ErrorIs(t, err, store.ErrUnavailable)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, fallback.calls, "no retries beyond the single fallback attempt")
}

func TestFailover_NoFallback(t *testing.T) {
	primary := newFake("primary", nil)
	primary.delay = time.Second
	f := store.NewFailover(primary, nil, 20*time.Millisecond)

	_, err := f.Users().GetUserByEmail(context.Background(), "a@x.com")
	require.ErrorIs(t, err, store.ErrUnavailable)
	require.Equal(t, "primary", f.Name())
}

func TestFailover_WithTxAndPing(t *testing.T) {
	primary := newFake("primary", fmt.Errorf("%w: refused", store.ErrUnavailable))
	fallback := newFake("fallback", nil)
	f := store.NewFailover(primary, fallback, time.Second)

	err := f.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.Users().CreateUser(context.Background(), domain.User{Email: "a@x.com"})
	})
	require.NoError(t, err)
	require.Contains(t, fallback.users, "a@x.com")

	require.NoError(t, f.Ping(context.Background()))

	health := f.Health(context.Background())
	require.Len(t, health, 2)
	require.Error(t, health["primary:primary"])
	require.NoError(t, health["fallback:fallback"])
}

func TestFailover_CancelledCallerSkipsFallback(t *testing.T) {
	primary := newFake("primary", nil)
	primary.delay = time.Second
	fallback := newFake("fallback", nil)
	f := store.NewFailover(primary, fallback, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Users().GetUserByEmail(ctx, "a@x.com")
	require.True(t, errors.Is(err, store.ErrUnavailable))
	require.Zero(t, fallback.calls)
}
