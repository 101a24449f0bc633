package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store/drivers/sqlite"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store/storetest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestContract(t *testing.T) {
	storetest.Run(t, newStore)
}

func TestApplyMigrationsTwice(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.ApplyMigrations(), "second run is a no-op")
}

func TestInMemory(t *testing.T) {
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
	require.Equal(t, "sqlite", st.Name())

	u := storetest.NewUser("mem@example.com")
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	_, err = st.Users().GetUserByEmail(context.Background(), u.Email)
	require.NoError(t, err)
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.Close())

	err := st.Ping(context.Background())
	require.Error(t, err)
}
