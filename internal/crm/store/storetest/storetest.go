// Package storetest holds the behavioural contract every store driver must
// satisfy. Driver packages call Run from their own tests.
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run executes the contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Sessions", func(t *testing.T) { testSessions(t, newStore(t)) })
	t.Run("SessionSupersede", func(t *testing.T) { testSessionSupersede(t, newStore(t)) })
	t.Run("StaleSessions", func(t *testing.T) { testStaleSessions(t, newStore(t)) })
	t.Run("Records", func(t *testing.T) { testRecords(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
}

// base is a fixed, microsecond-aligned instant so every driver round-trips
// it exactly.
var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// NewUser returns a valid user with a fresh id.
func NewUser(email string) domain.User {
	return domain.User{
		ID:            idx.New().String(),
		Email:         email,
		DisplayName:   "Test User",
		PasswordHash:  "$2a$12$abcdefghijklmnopqrstuuM6PZ8n3nAxfv2sVf8sB4Fqy1tQe7v2i",
		Role:          domain.RoleStandardUser,
		Active:        true,
		EmailVerified: true,
		CreatedAt:     base,
		UpdatedAt:     base,
	}
}

// NewSession returns an active session for userID expiring at expiresAt.
func NewSession(userID string, expiresAt time.Time) domain.Session {
	id := idx.New().String()
	return domain.Session{
		ID:        id,
		UserID:    userID,
		TokenHash: "hash-" + id,
		ExpiresAt: expiresAt,
		Active:    true,
		CreatedAt: base,
		ClientIP:  "192.0.2.1",
		UserAgent: "storetest",
	}
}

func testUsers(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := NewUser("alice@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	t.Run("duplicate email", func(t *testing.T) {
		dup := NewUser("alice@example.com")
		require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("get by email and id", func(t *testing.T) {
		got, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, u.PasswordHash, got.PasswordHash)
		require.Equal(t, domain.RoleStandardUser, got.Role)
		require.True(t, got.Active)
		require.True(t, got.EmailVerified)
		require.Nil(t, got.LastLoginAt)
		require.True(t, u.CreatedAt.Equal(got.CreatedAt))

		byID, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, got.Email, byID.Email)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := st.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = st.Users().GetUserByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("partial update", func(t *testing.T) {
		name := "Alice A."
		role := domain.RoleAdministrator
		login := base.Add(time.Hour)
		require.NoError(t, st.Users().UpdateUser(ctx, u.ID, domain.UserUpdate{
			DisplayName: &name,
			Role:        &role,
			LastLoginAt: &login,
		}))

		got, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, name, got.DisplayName)
		require.Equal(t, role, got.Role)
		require.NotNil(t, got.LastLoginAt)
		require.True(t, login.Equal(*got.LastLoginAt))
		require.Equal(t, u.PasswordHash, got.PasswordHash, "untouched fields stay")
		require.True(t, got.Active)

		inactive := false
		require.NoError(t, st.Users().UpdateUser(ctx, u.ID, domain.UserUpdate{Active: &inactive}))
		got, err = st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, got.Active)
	})

	t.Run("update missing user", func(t *testing.T) {
		name := "x"
		err := st.Users().UpdateUser(ctx, idx.New().String(), domain.UserUpdate{DisplayName: &name})
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func testSessions(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := NewUser("bob@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	expires := base.Add(time.Hour)
	s := NewSession(u.ID, expires)
	require.NoError(t, st.Sessions().CreateSession(ctx, s))

	t.Run("active before expiry", func(t *testing.T) {
		got, err := st.Sessions().GetActiveSessionByTokenHash(ctx, s.TokenHash, expires.Add(-time.Second))
		require.NoError(t, err)
		require.Equal(t, s.ID, got.ID)
		require.Equal(t, u.ID, got.UserID)
		require.True(t, expires.Equal(got.ExpiresAt))
		require.Equal(t, "192.0.2.1", got.ClientIP)
	})

	t.Run("exactly at expiry is expired", func(t *testing.T) {
		_, err := st.Sessions().GetActiveSessionByTokenHash(ctx, s.TokenHash, expires)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown hash", func(t *testing.T) {
		_, err := st.Sessions().GetActiveSessionByTokenHash(ctx, "nope", base)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("deactivate is idempotent", func(t *testing.T) {
		n, err := st.Sessions().DeactivateUserSessions(ctx, u.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		n, err = st.Sessions().DeactivateUserSessions(ctx, u.ID)
		require.NoError(t, err)
		require.Zero(t, n)

		_, err = st.Sessions().GetActiveSessionByTokenHash(ctx, s.TokenHash, base)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

// testSessionSupersede runs concurrent "deactivate all, insert new"
// transactions for one user and checks exactly one session survives.
func testSessionSupersede(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := NewUser("carol@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	const workers = 8
	sessions := make([]domain.Session, workers)
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := range workers {
		sessions[i] = NewSession(u.ID, base.Add(time.Hour))
		wg.Add(1)
		go func(s domain.Session) {
			defer wg.Done()
			errs <- st.WithTx(ctx, func(tx store.Tx) error {
				login := base
				if err := tx.Users().UpdateUser(ctx, u.ID, domain.UserUpdate{LastLoginAt: &login}); err != nil {
					return err
				}
				if _, err := tx.Sessions().DeactivateUserSessions(ctx, u.ID); err != nil {
					return err
				}
				return tx.Sessions().CreateSession(ctx, s)
			})
		}(sessions[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	active := 0
	for _, s := range sessions {
		if _, err := st.Sessions().GetActiveSessionByTokenHash(ctx, s.TokenHash, base); err == nil {
			active++
		}
	}
	require.Equal(t, 1, active)
}

func testStaleSessions(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := NewUser("dave@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	expired := NewSession(u.ID, base.Add(time.Minute))
	live := NewSession(u.ID, base.Add(48*time.Hour))
	require.NoError(t, st.Sessions().CreateSession(ctx, expired))
	require.NoError(t, st.Sessions().CreateSession(ctx, live))

	n, err := st.Sessions().DeleteStaleSessions(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = st.Sessions().GetActiveSessionByTokenHash(ctx, live.TokenHash, base.Add(2*time.Hour))
	require.NoError(t, err)
}

func testRecords(t *testing.T, st store.Store) {
	ctx := context.Background()
	owner := NewUser("erin@example.com")
	other := NewUser("frank@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, owner))
	require.NoError(t, st.Users().CreateUser(ctx, other))

	mk := func(ownerID, first string, at time.Time) domain.Record {
		c := domain.Contact{FirstName: first, LastName: "Smith"}
		data, err := json.Marshal(c)
		require.NoError(t, err)
		return domain.Record{
			ID:        idx.NewAt(at).String(),
			Kind:      domain.KindContacts,
			OwnerID:   ownerID,
			Data:      data,
			Search:    c.SearchText(),
			CreatedAt: at,
			UpdatedAt: at,
		}
	}

	var mine []domain.Record
	for i := range 5 {
		r := mk(owner.ID, fmt.Sprintf("Name%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, st.Records().CreateRecord(ctx, r))
		mine = append(mine, r)
	}
	theirs := mk(other.ID, "100%_literal", base)
	require.NoError(t, st.Records().CreateRecord(ctx, theirs))

	t.Run("get", func(t *testing.T) {
		got, err := st.Records().GetRecord(ctx, domain.KindContacts, mine[0].ID)
		require.NoError(t, err)
		require.Equal(t, owner.ID, got.OwnerID)
		require.JSONEq(t, string(mine[0].Data), string(got.Data))

		_, err = st.Records().GetRecord(ctx, domain.KindDeals, mine[0].ID)
		require.ErrorIs(t, err, store.ErrNotFound, "kind is part of the key")
	})

	t.Run("list pages newest first", func(t *testing.T) {
		page, total, err := st.Records().ListRecords(ctx, domain.RecordQuery{
			Kind: domain.KindContacts, OwnerID: owner.ID, Offset: 0, Limit: 2,
		})
		require.NoError(t, err)
		require.EqualValues(t, 5, total)
		require.Len(t, page, 2)
		require.Equal(t, mine[4].ID, page[0].ID)
		require.Equal(t, mine[3].ID, page[1].ID)

		page, _, err = st.Records().ListRecords(ctx, domain.RecordQuery{
			Kind: domain.KindContacts, OwnerID: owner.ID, Offset: 4, Limit: 2,
		})
		require.NoError(t, err)
		require.Len(t, page, 1)
	})

	t.Run("list all owners", func(t *testing.T) {
		_, total, err := st.Records().ListRecords(ctx, domain.RecordQuery{Kind: domain.KindContacts, Limit: 10})
		require.NoError(t, err)
		require.EqualValues(t, 6, total)
	})

	t.Run("search", func(t *testing.T) {
		page, total, err := st.Records().ListRecords(ctx, domain.RecordQuery{
			Kind: domain.KindContacts, Search: "NAME3", Limit: 10,
		})
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
		require.Equal(t, mine[3].ID, page[0].ID)

		_, total, err = st.Records().ListRecords(ctx, domain.RecordQuery{
			Kind: domain.KindContacts, Search: "%_", Limit: 10,
		})
		require.NoError(t, err)
		require.EqualValues(t, 1, total, "wildcards match literally")
	})

	t.Run("time window", func(t *testing.T) {
		from, to := base.Add(time.Minute), base.Add(3*time.Minute)
		_, total, err := st.Records().ListRecords(ctx, domain.RecordQuery{
			Kind: domain.KindContacts, OwnerID: owner.ID, From: &from, To: &to, Limit: 10,
		})
		require.NoError(t, err)
		require.EqualValues(t, 2, total)
	})

	t.Run("update and delete", func(t *testing.T) {
		r := mine[0]
		r.Data = []byte(`{"firstName":"Changed","lastName":"Smith"}`)
		r.Search = "changed smith"
		r.UpdatedAt = base.Add(time.Hour)
		require.NoError(t, st.Records().UpdateRecord(ctx, r))

		got, err := st.Records().GetRecord(ctx, domain.KindContacts, r.ID)
		require.NoError(t, err)
		require.Contains(t, string(got.Data), "Changed")
		require.True(t, r.UpdatedAt.Equal(got.UpdatedAt))

		require.NoError(t, st.Records().DeleteRecord(ctx, domain.KindContacts, r.ID))
		require.ErrorIs(t, st.Records().DeleteRecord(ctx, domain.KindContacts, r.ID), store.ErrNotFound)

		missing := r
		missing.ID = idx.New().String()
		require.ErrorIs(t, st.Records().UpdateRecord(ctx, missing), store.ErrNotFound)
	})
}

func testTxRollback(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := NewUser("grace@example.com")

	boom := fmt.Errorf("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUserByEmail(ctx, u.Email)
	require.ErrorIs(t, err, store.ErrNotFound)
}
