package crm_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/app"
	"github.com/aussiebroadwan/salesdesk/pkg/crmsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

/*
 * Shared setup for the CRM end-to-end tests. A PostgreSQL container is
 * started per test and the service runs in-process against it.
 */

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "crm"
	postgresPassword = "crm-test-password"
	postgresDB       = "crm"

	testJWTSecret = "e2e-test-secret-that-is-long-enough-for-hs256"
	testPassword  = "correct horse battery"
)

// setupPostgres starts a PostgreSQL container and returns its DSN.
func setupPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       postgresDB,
			},
			// The server restarts once after init, so wait for the second line.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port.Port(), postgresDB)
}

// truncate empties every table so each subtest starts clean.
func truncate(t *testing.T, dsn string) {
	t.Helper()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, db.Exec("TRUNCATE TABLE records, sessions, users").Error)
}

// startService runs the service in-process with DATABASE_URL set to dsn and
// returns its base URL.
func startService(t *testing.T, dsn string, extraEnv map[string]string) string {
	t.Helper()

	env := map[string]string{
		"DATABASE_URL":           dsn,
		"FALLBACK_DATABASE_FILE": t.TempDir() + "/fallback.db",
		"JWT_SECRET":             testJWTSecret,
		"ENV":                    "test",
		"LOG_LEVEL":              "warn",
		"ROLE_POLICY":            app.RolePolicyAllowList,
		"ADMIN_EMAILS":           "boss@example.com",
		// E2E tests make many rapid requests; only the rate limit test keeps defaults.
		"RATELIMIT_AUTH_REQUESTS": "1000",
		"RATELIMIT_AUTH_BURST":    "1000",
		"RATELIMIT_API_REQUESTS":  "1000",
		"RATELIMIT_API_BURST":     "1000",
	}
	for k, v := range extraEnv {
		env[k] = v
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	application, err := app.New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Shutdown()
	})
	return srv.URL
}

// signUp registers a fresh account and returns a client carrying its token.
func signUp(t *testing.T, baseURL, email, name string) (*crmsdk.Client, *crmsdk.AuthResponse) {
	t.Helper()

	c := crmsdk.NewClient(baseURL)
	res, err := c.SignUp(t.Context(), crmsdk.SignUpRequest{
		Email:       email,
		Password:    testPassword,
		DisplayName: name,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	return c, res
}

func assertUnauthorized(t *testing.T, err error, context string) {
	t.Helper()
	require.Error(t, err, context)
	require.True(t, crmsdk.IsUnauthorized(err), "%s - expected 401, got: %v", context, err)
}
