package crmsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientSendsBearerAfterSignIn(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/signin":
			var req SignInRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "a@example.com", req.Email)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"data":{"user":{"id":"u1","email":"a@example.com"},"token":"tok-1"}}`))
		case "/api/auth/me":
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"u1","email":"a@example.com"}}`))
		case "/api/auth/signout":
			_, _ = w.Write([]byte(`{"success":true,"message":"signed out"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	res, err := c.SignIn(ctx, SignInRequest{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "tok-1", res.Token)
	require.Equal(t, "tok-1", c.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "u1", me.ID)
	require.Equal(t, "Bearer tok-1", gotAuth)

	require.NoError(t, c.SignOut(ctx))
	require.Empty(t, c.Token())
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/me":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"invalid or expired token"}`))
		case "/api/leads/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"not found"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	_, err := c.Me(ctx)
	require.True(t, IsUnauthorized(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "invalid or expired token", apiErr.Message)

	_, err = c.GetRecord(ctx, "leads", "missing")
	require.True(t, IsNotFound(err))

	_, err = c.GenerateReport(ctx, ReportRequest{})
	require.True(t, IsStatus(err, http.StatusBadGateway))
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
}

func TestListRecordsQueryAndPagination(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/contacts", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		require.Equal(t, "acme", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"r1","kind":"contacts"},{"id":"r2","kind":"contacts"}],` +
			`"pagination":{"page":2,"limit":5,"total":7,"totalPages":2}}`))
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL).ListRecords(context.Background(), "contacts", ListOptions{Page: 2, Limit: 5, Search: "acme"})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	require.Equal(t, "r1", page.Records[0].ID())
	require.Equal(t, int64(7), page.Pagination.Total)
	require.Equal(t, 2, page.Pagination.TotalPages)
}

func TestHealthDegraded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/readyz", r.URL.Path)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"degraded","uptime":"1s","version":"dev"}`))
	}))
	defer srv.Close()

	h, err := NewClient(srv.URL).Health(context.Background())
	require.True(t, IsStatus(err, http.StatusServiceUnavailable))
	require.NotNil(t, h)
	require.Equal(t, "degraded", h.Status)
}
