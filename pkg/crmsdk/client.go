package crmsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client talks to the CRM API. After SignUp or SignIn it sends the issued
// token on every request. A Client is safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Token returns the current session token, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the session token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// do sends body as JSON and decodes the envelope. out receives the data
// field; it may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any, expected int) (*envelope, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expected {
		return nil, parseErrorResponse(resp, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return &env, nil
}

// ============================================================================
// Auth
// ============================================================================

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	var out AuthResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	var out AuthResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/signin", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// SignOut revokes every session of the signed-in user and forgets the token.
func (c *Client) SignOut(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil, http.StatusOK); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var out User
	if _, err := c.do(ctx, http.MethodPatch, "/api/auth/me", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the password. The server revokes all sessions, so
// the client forgets its token on success.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/password", req, nil, http.StatusOK); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// AdminUpdateUser requires an administrator session.
func (c *Client) AdminUpdateUser(ctx context.Context, userID string, req AdminUpdateUserRequest) (*User, error) {
	var out User
	if _, err := c.do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(userID), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Records
// ============================================================================

func recordPath(kind, id string) string {
	p := "/api/" + url.PathEscape(kind)
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

// CreateRecord creates a record of kind from payload, which must marshal to
// the kind's JSON schema.
func (c *Client) CreateRecord(ctx context.Context, kind string, payload any) (Record, error) {
	var out Record
	if _, err := c.do(ctx, http.MethodPost, recordPath(kind, ""), payload, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRecord(ctx context.Context, kind, id string) (Record, error) {
	var out Record
	if _, err := c.do(ctx, http.MethodGet, recordPath(kind, id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRecords(ctx context.Context, kind string, opts ListOptions) (*RecordPage, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Search != "" {
		q.Set("q", opts.Search)
	}
	path := recordPath(kind, "")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var records []Record
	env, err := c.do(ctx, http.MethodGet, path, nil, &records, http.StatusOK)
	if err != nil {
		return nil, err
	}
	page := &RecordPage{Records: records}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	return page, nil
}

// UpdateRecord replaces the payload of a record.
func (c *Client) UpdateRecord(ctx context.Context, kind, id string, payload any) (Record, error) {
	var out Record
	if _, err := c.do(ctx, http.MethodPut, recordPath(kind, id), payload, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteRecord(ctx context.Context, kind, id string) error {
	_, err := c.do(ctx, http.MethodDelete, recordPath(kind, id), nil, nil, http.StatusOK)
	return err
}

// ============================================================================
// Reports and health
// ============================================================================

func (c *Client) GenerateReport(ctx context.Context, req ReportRequest) (*Report, error) {
	var out Report
	if _, err := c.do(ctx, http.MethodPost, "/api/reports/generate", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls /readyz. A degraded service returns an APIError with status 503.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var out HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &out, &APIError{StatusCode: resp.StatusCode, Message: out.Status}
	}
	return &out, nil
}
