package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/service"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store/drivers/sqlite"
	"github.com/aussiebroadwan/salesdesk/pkg/crmsdk"
	"github.com/aussiebroadwan/salesdesk/pkg/httpx"
	"github.com/aussiebroadwan/salesdesk/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestRouter(t *testing.T, opts Options) (*Router, store.Store) {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter("test", st, logger, opts)
	r.AuthService = &service.AuthService{
		Store:    st,
		Hasher:   service.NewPasswordHasher(bcrypt.MinCost, 2),
		Signer:   signer,
		Verifier: jwtx.NewVerifierHS256(testSecret, "salesdesk", nil),
		Roles:    service.EmailHeuristicPolicy{},
		Issuer:   "salesdesk",
	}
	r.RecordService = &service.RecordService{Store: st}
	r.ReportService = &service.ReportService{Store: st}
	r.ApplyRoutes()
	return r, st
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r, _ := newTestRouter(t, Options{})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSignUpAndSignIn(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t, Options{})

	rec := doJSON(t, r, http.MethodPost, "/api/auth/signup",
		`{"email":"Alice@Example.com","password":"P@ssw0rd!","displayName":"Alice"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])
	data := env["data"].(map[string]any)
	require.NotEmpty(t, data["token"])
	user := data["user"].(map[string]any)
	require.Equal(t, "alice@example.com", user["email"])
	require.NotContains(t, rec.Body.String(), "passwordHash")

	rec = doJSON(t, r, http.MethodPost, "/api/auth/signup",
		`{"email":"alice@example.com","password":"P@ssw0rd!","displayName":"Again"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, service.ErrDuplicateAccount.Error(), decodeEnvelope(t, rec)["error"])

	rec = doJSON(t, r, http.MethodPost, "/api/auth/signin",
		`{"email":"alice@example.com","password":"P@ssw0rd!"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, DefaultCookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSignInFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t, Options{})

	rec := doJSON(t, r, http.MethodPost, "/api/auth/signup",
		`{"email":"admin@x.com","password":"P@ssw0rd!","displayName":"A"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, "administrator", data["user"].(map[string]any)["role"])

	wrong := doJSON(t, r, http.MethodPost, "/api/auth/signin", `{"email":"admin@x.com","password":"wrong"}`, nil)
	unknown := doJSON(t, r, http.MethodPost, "/api/auth/signin", `{"email":"nouser@x.com","password":"whatever"}`, nil)

	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	require.Equal(t, wrong.Code, unknown.Code)
	require.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestAuthenticatedRoutes(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t, Options{})

	rec := doJSON(t, r, http.MethodPost, "/api/auth/signup",
		`{"email":"bob@x.com","password":"P@ssw0rd!","displayName":"Bob"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decodeEnvelope(t, rec)["data"].(map[string]any)["token"].(string)
	bearer := map[string]string{"Authorization": "Bearer " + token}

	t.Run("missing token", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, false, decodeEnvelope(t, rec)["success"])
		require.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("bearer", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/auth/me", "", bearer)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "bob@x.com", decodeEnvelope(t, rec)["data"].(map[string]any)["email"])
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/auth/me", "", map[string]string{"Authorization": "Bearer nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, service.ErrInvalidToken.Error(), decodeEnvelope(t, rec)["error"])
	})

	t.Run("update profile", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPatch, "/api/auth/me", `{"displayName":"Robert"}`, bearer)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Robert", decodeEnvelope(t, rec)["data"].(map[string]any)["displayName"])
	})

	t.Run("non admin cannot update users", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPatch, "/api/users/whoever", `{"active":false}`, bearer)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "forbidden", decodeEnvelope(t, rec)["error"])
	})

	t.Run("sign out revokes token", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/auth/signout", "", bearer)
		require.Equal(t, http.StatusOK, rec.Code)
		cleared := rec.Result().Cookies()
		require.Len(t, cleared, 1)
		require.Negative(t, cleared[0].MaxAge)

		rec = doJSON(t, r, http.MethodGet, "/api/auth/me", "", bearer)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, service.ErrSessionRevoked.Error(), decodeEnvelope(t, rec)["error"])
	})
}

func TestRecordRoutesWithSDK(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newTestServer(t)

	alice := crmsdk.NewClient(srv.URL)
	_, err := alice.SignUp(ctx, crmsdk.SignUpRequest{Email: "alice@x.com", Password: "P@ssw0rd!", DisplayName: "Alice"})
	require.NoError(t, err)

	bob := crmsdk.NewClient(srv.URL)
	_, err = bob.SignUp(ctx, crmsdk.SignUpRequest{Email: "bob@x.com", Password: "P@ssw0rd!", DisplayName: "Bob"})
	require.NoError(t, err)

	for i := range 12 {
		_, err := alice.CreateRecord(ctx, "leads", map[string]any{
			"firstName": "Lead", "lastName": string(rune('A' + i)), "status": "new",
		})
		require.NoError(t, err)
	}

	page, err := alice.ListRecords(ctx, "leads", crmsdk.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Records, 10)
	require.Equal(t, crmsdk.Pagination{Page: 1, Limit: 10, Total: 12, TotalPages: 2}, page.Pagination)

	page, err = alice.ListRecords(ctx, "leads", crmsdk.ListOptions{Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)

	rec := page.Records[0]
	got, err := alice.GetRecord(ctx, "leads", rec.ID())
	require.NoError(t, err)
	require.Equal(t, "new", got["status"])

	_, err = bob.GetRecord(ctx, "leads", rec.ID())
	require.True(t, crmsdk.IsNotFound(err))

	updated, err := alice.UpdateRecord(ctx, "leads", rec.ID(), map[string]any{
		"firstName": "Lead", "lastName": "Z", "status": "converted",
	})
	require.NoError(t, err)
	require.Equal(t, "converted", updated["status"])

	_, err = alice.CreateRecord(ctx, "leads", map[string]any{"firstName": "NoLast", "status": "new"})
	require.True(t, crmsdk.IsStatus(err, http.StatusBadRequest))
	var apiErr *crmsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Contains(t, apiErr.Message, "lastName")

	report, err := alice.GenerateReport(ctx, crmsdk.ReportRequest{Kinds: []string{"leads"}})
	require.NoError(t, err)
	require.Equal(t, 12, report.Counts["leads"])
	require.InDelta(t, 1.0/12.0, report.Leads.ConversionRate, 1e-9)

	require.NoError(t, alice.DeleteRecord(ctx, "leads", rec.ID()))
	require.True(t, crmsdk.IsNotFound(alice.DeleteRecord(ctx, "leads", rec.ID())))

	require.NoError(t, alice.SignOut(ctx))
	_, err = alice.ListRecords(ctx, "leads", crmsdk.ListOptions{})
	require.True(t, crmsdk.IsUnauthorized(err))
}

func TestRecordListRejectsBadPaging(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t, Options{})

	rec := doJSON(t, r, http.MethodPost, "/api/auth/signup",
		`{"email":"carol@x.com","password":"P@ssw0rd!","displayName":"Carol"}`, nil)
	token := decodeEnvelope(t, rec)["data"].(map[string]any)["token"].(string)
	bearer := map[string]string{"Authorization": "Bearer " + token}

	outOfRange := "page=" + strconv.Itoa(service.MaxPage+1)
	for _, q := range []string{"page=abc", "page=0", "limit=-5", outOfRange} {
		rec := doJSON(t, r, http.MethodGet, "/api/contacts?"+q, "", bearer)
		require.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/contacts?limit=500", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 100, decodeEnvelope(t, rec)["pagination"].(map[string]any)["limit"])

	rec = doJSON(t, r, http.MethodGet, "/api/widgets", "", bearer)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminUpdateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newTestServer(t)

	admin := crmsdk.NewClient(srv.URL)
	_, err := admin.SignUp(ctx, crmsdk.SignUpRequest{Email: "admin@x.com", Password: "P@ssw0rd!", DisplayName: "Admin"})
	require.NoError(t, err)

	user := crmsdk.NewClient(srv.URL)
	res, err := user.SignUp(ctx, crmsdk.SignUpRequest{Email: "dave@x.com", Password: "P@ssw0rd!", DisplayName: "Dave"})
	require.NoError(t, err)

	inactive := false
	u, err := admin.AdminUpdateUser(ctx, res.User.ID, crmsdk.AdminUpdateUserRequest{Active: &inactive})
	require.NoError(t, err)
	require.False(t, u.Active)

	_, err = user.Me(ctx)
	require.True(t, crmsdk.IsUnauthorized(err))

	_, err = user.SignIn(ctx, crmsdk.SignInRequest{Email: "dave@x.com", Password: "P@ssw0rd!"})
	require.True(t, crmsdk.IsUnauthorized(err))
}

func TestChangePasswordRoute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newTestServer(t)

	c := crmsdk.NewClient(srv.URL)
	_, err := c.SignUp(ctx, crmsdk.SignUpRequest{Email: "erin@x.com", Password: "P@ssw0rd!", DisplayName: "Erin"})
	require.NoError(t, err)
	old := c.Token()

	err = c.ChangePassword(ctx, crmsdk.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "N3w-passw0rd"})
	require.True(t, crmsdk.IsUnauthorized(err))

	require.NoError(t, c.ChangePassword(ctx, crmsdk.ChangePasswordRequest{CurrentPassword: "P@ssw0rd!", NewPassword: "N3w-passw0rd"}))
	require.Empty(t, c.Token())

	c.SetToken(old)
	_, err = c.Me(ctx)
	require.True(t, crmsdk.IsUnauthorized(err))

	_, err = c.SignIn(ctx, crmsdk.SignInRequest{Email: "erin@x.com", Password: "N3w-passw0rd"})
	require.NoError(t, err)
}

func TestSignInRateLimit(t *testing.T) {
	t.Parallel()
	limits := httpx.DefaultRateLimits()
	limits.Auth = httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	r, _ := newTestRouter(t, Options{RateLimits: limits})

	body := `{"email":"x@x.com","password":"whatever1"}`
	for range 2 {
		rec := doJSON(t, r, http.MethodPost, "/api/auth/signin", body, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := doJSON(t, r, http.MethodPost, "/api/auth/signin", body, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Another email from the same address has its own bucket.
	rec = doJSON(t, r, http.MethodPost, "/api/auth/signin", `{"email":"y@x.com","password":"whatever1"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthRoutes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, st := newTestRouter(t, Options{})

	rec := doJSON(t, r, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	srv := httptest.NewServer(r)
	defer srv.Close()
	health, err := crmsdk.NewClient(srv.URL).Health(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)

	require.NoError(t, st.Close())
	health, err = crmsdk.NewClient(srv.URL).Health(ctx)
	require.True(t, crmsdk.IsStatus(err, http.StatusServiceUnavailable))
	require.Equal(t, "degraded", health.Status)
}

func TestReadyzReportsBackends(t *testing.T) {
	t.Parallel()
	primary, err := sqlite.NewStore(filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	fallback, err := sqlite.NewStore(filepath.Join(t.TempDir(), "b.db"))
	require.NoError(t, err)
	defer fallback.Close()
	require.NoError(t, primary.Close())

	fo := store.NewFailover(primary, fallback, time.Second)
	rec := httptest.NewRecorder()
	ReadyzHandler(time.Now(), "v", fo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out crmsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Checks.Backends, 2)
}

func TestWriteServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{&service.ValidationError{Field: "email", Message: "is required"}, http.StatusBadRequest, "email is required"},
		{service.ErrDuplicateAccount, http.StatusBadRequest, service.ErrDuplicateAccount.Error()},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, service.ErrInvalidCredentials.Error()},
		{service.ErrSessionRevoked, http.StatusUnauthorized, service.ErrSessionRevoked.Error()},
		{service.ErrNotFound, http.StatusNotFound, "not found"},
		{errors.Join(service.ErrStorageUnavailable, errors.New("dial tcp: refused")), http.StatusServiceUnavailable, service.ErrStorageUnavailable.Error()},
		{fmt.Errorf("%w: %w", service.ErrOverloaded, context.DeadlineExceeded), http.StatusServiceUnavailable, service.ErrOverloaded.Error()},
		{errors.New("pq: relation does not exist"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		require.Equal(t, tt.code, rec.Code)
		env := decodeEnvelope(t, rec)
		require.Equal(t, false, env["success"])
		require.Equal(t, tt.msg, env["error"])
	}

	rec := httptest.NewRecorder()
	writeAuthnError(rec, httptest.NewRequest(http.MethodGet, "/", nil), service.ErrStorageUnavailable)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
