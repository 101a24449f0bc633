package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// RecordKind names one CRM collection. Values double as URL path segments.
type RecordKind string

const (
	KindContacts   RecordKind = "contacts"
	KindAccounts   RecordKind = "accounts"
	KindDeals      RecordKind = "deals"
	KindActivities RecordKind = "activities"
	KindLeads      RecordKind = "leads"
)

// RecordKinds lists every kind in display order.
var RecordKinds = []RecordKind{KindContacts, KindAccounts, KindDeals, KindActivities, KindLeads}

func ParseRecordKind(s string) (RecordKind, bool) {
	k := RecordKind(s)
	return k, slices.Contains(RecordKinds, k)
}

// Record is a stored CRM entity. Data holds the JSON encoding of the kind's
// payload type.
type Record struct {
	ID        string
	Kind      RecordKind
	OwnerID   string
	Data      json.RawMessage
	Search    string // lowercased searchable text
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordQuery selects a page of records of one kind.
type RecordQuery struct {
	Kind    RecordKind
	OwnerID string // empty means all owners
	Search  string // case-insensitive substring match
	From    *time.Time
	To      *time.Time
	Offset  int
	Limit   int
}

// FieldError reports one invalid payload field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &FieldError{Field: field, Message: "is required"}
	}
	return nil
}

func oneOf(field, v string, allowed []string) error {
	if !slices.Contains(allowed, v) {
		return &FieldError{Field: field, Message: "must be one of " + strings.Join(allowed, ", ")}
	}
	return nil
}

// Payload is implemented by each kind's typed body.
type Payload interface {
	Validate() error
	SearchText() string
}

// DecodePayload parses raw as the payload type of kind.
func DecodePayload(kind RecordKind, raw []byte) (Payload, error) {
	var p Payload
	switch kind {
	case KindContacts:
		p = &Contact{}
	case KindAccounts:
		p = &Account{}
	case KindDeals:
		p = &Deal{}
	case KindActivities:
		p = &Activity{}
	case KindLeads:
		p = &Lead{}
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, &FieldError{Field: "body", Message: "must be a JSON object matching the " + string(kind) + " schema"}
	}
	return p, nil
}

func searchText(parts ...string) string {
	return strings.ToLower(strings.Join(slices.DeleteFunc(parts, func(s string) bool { return s == "" }), " "))
}

type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Title     string `json:"title,omitempty"`
	AccountID string `json:"accountId,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (c *Contact) Validate() error {
	if err := required("firstName", c.FirstName); err != nil {
		return err
	}
	return required("lastName", c.LastName)
}

func (c *Contact) SearchText() string {
	return searchText(c.FirstName, c.LastName, c.Email, c.Title)
}

type Account struct {
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Website  string `json:"website,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (a *Account) Validate() error { return required("name", a.Name) }

func (a *Account) SearchText() string { return searchText(a.Name, a.Industry, a.Website) }

// Deal stages. The two closed stages are terminal.
const (
	StageProspecting   = "prospecting"
	StageQualification = "qualification"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosedWon     = "closed_won"
	StageClosedLost    = "closed_lost"
)

var DealStages = []string{StageProspecting, StageQualification, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost}

type Deal struct {
	Title       string     `json:"title"`
	Stage       string     `json:"stage"`
	Value       float64    `json:"value"`
	Currency    string     `json:"currency,omitempty"`
	Probability int        `json:"probability,omitempty"` // percent
	AccountID   string     `json:"accountId,omitempty"`
	ContactID   string     `json:"contactId,omitempty"`
	CloseDate   *time.Time `json:"closeDate,omitempty"`
}

func (d *Deal) Validate() error {
	if err := required("title", d.Title); err != nil {
		return err
	}
	if err := oneOf("stage", d.Stage, DealStages); err != nil {
		return err
	}
	if d.Value < 0 {
		return &FieldError{Field: "value", Message: "must not be negative"}
	}
	if d.Probability < 0 || d.Probability > 100 {
		return &FieldError{Field: "probability", Message: "must be between 0 and 100"}
	}
	return nil
}

func (d *Deal) SearchText() string { return searchText(d.Title, d.Stage) }

func (d *Deal) IsClosed() bool { return d.Stage == StageClosedWon || d.Stage == StageClosedLost }

var ActivityTypes = []string{"call", "email", "meeting", "task", "note"}

type Activity struct {
	Type        string     `json:"type"`
	Subject     string     `json:"subject"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	RelatedID   string     `json:"relatedId,omitempty"`
}

func (a *Activity) Validate() error {
	if err := oneOf("type", a.Type, ActivityTypes); err != nil {
		return err
	}
	return required("subject", a.Subject)
}

func (a *Activity) SearchText() string { return searchText(a.Type, a.Subject, a.Description) }

var LeadStatuses = []string{"new", "contacted", "qualified", "unqualified", "converted"}

type Lead struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Company   string `json:"company,omitempty"`
	Source    string `json:"source,omitempty"`
	Status    string `json:"status"`
}

func (l *Lead) Validate() error {
	if err := required("firstName", l.FirstName); err != nil {
		return err
	}
	if err := required("lastName", l.LastName); err != nil {
		return err
	}
	return oneOf("status", l.Status, LeadStatuses)
}

func (l *Lead) SearchText() string { return searchText(l.FirstName, l.LastName, l.Email, l.Company) }
