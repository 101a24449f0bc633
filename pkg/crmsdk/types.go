package crmsdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Envelopes
// ============================================================================

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"invalid email or password"`
}

// SuccessResponse is returned by endpoints that carry no data.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page" example:"1"`
	Limit      int   `json:"limit" example:"10"`
	Total      int64 `json:"total" example:"42"`
	TotalPages int   `json:"totalPages" example:"5"`
}

// envelope is the generic decoding target used by the client.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// ============================================================================
// Auth
// ============================================================================

type SignUpRequest struct {
	Email       string `json:"email" example:"alice@example.com"`
	Password    string `json:"password" example:"correct horse battery"`
	DisplayName string `json:"displayName" example:"Alice"`
}

type SignInRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"correct horse battery"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" example:"Alice Anderson"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AdminUpdateUserRequest changes another account. Omitted fields are kept.
type AdminUpdateUserRequest struct {
	Role   *string `json:"role,omitempty" example:"administrator"`
	Active *bool   `json:"active,omitempty" example:"false"`
}

// User is the public projection of an account.
type User struct {
	ID            string     `json:"id" example:"01HZX3J8G5C8W2Q3T9N4V6B7M1"`
	Email         string     `json:"email" example:"alice@example.com"`
	DisplayName   string     `json:"displayName" example:"Alice"`
	Role          string     `json:"role" example:"standard_user"`
	Active        bool       `json:"active" example:"true"`
	EmailVerified bool       `json:"emailVerified" example:"true"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
}

// AuthResponse is returned by sign-up and sign-in.
type AuthResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIs..."`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthEnvelope struct {
	Success bool         `json:"success" example:"true"`
	Data    AuthResponse `json:"data"`
}

type UserEnvelope struct {
	Success bool `json:"success" example:"true"`
	Data    User `json:"data"`
}

// ============================================================================
// Records
// ============================================================================

// Record is a CRM record: the kind's payload fields plus id, kind, ownerId,
// createdAt and updatedAt.
type Record map[string]any

// ID returns the record id.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

type RecordEnvelope struct {
	Success bool   `json:"success" example:"true"`
	Data    Record `json:"data"`
}

type RecordListEnvelope struct {
	Success    bool       `json:"success" example:"true"`
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListOptions selects a page of records. Zero values use server defaults.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
}

// RecordPage is one page of records.
type RecordPage struct {
	Records    []Record
	Pagination Pagination
}

// ============================================================================
// Reports
// ============================================================================

type ReportRequest struct {
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
	Kinds []string   `json:"kinds,omitempty" example:"deals,leads"`
}

type DealMetrics struct {
	Open          int                `json:"open"`
	Won           int                `json:"won"`
	Lost          int                `json:"lost"`
	PipelineValue float64            `json:"pipelineValue"`
	WeightedValue float64            `json:"weightedValue"`
	WonValue      float64            `json:"wonValue"`
	ValueByStage  map[string]float64 `json:"valueByStage"`
	WinRate       float64            `json:"winRate"`
}

type LeadMetrics struct {
	ByStatus       map[string]int `json:"byStatus"`
	ConversionRate float64        `json:"conversionRate"`
}

type ActivityMetrics struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	ByType         map[string]int `json:"byType"`
	CompletionRate float64        `json:"completionRate"`
}

type Report struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Filter      ReportRequest    `json:"filter"`
	Counts      map[string]int   `json:"counts"`
	Deals       *DealMetrics     `json:"deals,omitempty"`
	Leads       *LeadMetrics     `json:"leads,omitempty"`
	Activities  *ActivityMetrics `json:"activities,omitempty"`
}

type ReportEnvelope struct {
	Success bool   `json:"success" example:"true"`
	Data    Report `json:"data"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime,omitempty" example:"1h2m3s"`
	Version string        `json:"version,omitempty" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each storage backend by name.
type HealthChecks struct {
	Database string            `json:"database" example:"ok"`
	Backends map[string]string `json:"backends,omitempty"`
}
