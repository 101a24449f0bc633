package service

import (
	"context"
	"encoding/json"
	"maps"
	"math"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/pkg/idx"
	"github.com/aussiebroadwan/salesdesk/pkg/slogx"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// MaxPage keeps (page-1)*limit inside int.
	MaxPage = math.MaxInt / MaxPageLimit
)

// Actor is the authenticated user a record operation runs on behalf of.
type Actor struct {
	UserID string
	Role   domain.Role
}

func (a Actor) isAdmin() bool { return a.Role == domain.RoleAdministrator }

// ListParams selects one page of records. Zero values take the defaults.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Normalize clamps paging to the allowed range.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// RecordPage is one page of records plus the total match count.
type RecordPage struct {
	Records []RecordView
	Page    int
	Limit   int
	Total   int64
}

// RecordView is the client representation of a record: payload fields are
// flattened next to the record metadata.
type RecordView struct {
	ID        string
	Kind      domain.RecordKind
	OwnerID   string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

func viewOf(r domain.Record) RecordView {
	return RecordView{ID: r.ID, Kind: r.Kind, OwnerID: r.OwnerID, Data: r.Data, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func (v RecordView) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if len(v.Data) > 0 {
		if err := json.Unmarshal(v.Data, &out); err != nil {
			return nil, err
		}
	}
	maps.Copy(out, map[string]any{
		"id":        v.ID,
		"kind":      v.Kind,
		"ownerId":   v.OwnerID,
		"createdAt": v.CreatedAt,
		"updatedAt": v.UpdatedAt,
	})
	return json.Marshal(out)
}

// RecordService implements owner-scoped CRUD over CRM records. Standard
// users only see their own records; administrators see all of them.
type RecordService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *RecordService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// decode validates raw against the kind's payload type and re-encodes it, which
// drops unknown fields.
func decode(kind domain.RecordKind, raw []byte) ([]byte, string, error) {
	p, err := domain.DecodePayload(kind, raw)
	if err != nil {
		return nil, "", fromFieldError(err)
	}
	if err := p.Validate(); err != nil {
		return nil, "", fromFieldError(err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, "", err
	}
	return data, p.SearchText(), nil
}

func (s *RecordService) Create(ctx context.Context, actor Actor, kind domain.RecordKind, raw []byte) (RecordView, error) {
	data, search, err := decode(kind, raw)
	if err != nil {
		return RecordView{}, err
	}

	now := s.now()
	r := domain.Record{
		ID:        idx.New().String(),
		Kind:      kind,
		OwnerID:   actor.UserID,
		Data:      data,
		Search:    search,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Records().CreateRecord(ctx, r); err != nil {
		return RecordView{}, storeErr("create record", err)
	}

	slogx.FromContext(ctx).Info("record created", "kind", kind, "record_id", r.ID)
	return viewOf(r), nil
}

// load fetches a record visible to actor. Records owned by someone else are
// reported as not found.
func (s *RecordService) load(ctx context.Context, actor Actor, kind domain.RecordKind, id string) (domain.Record, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.Record{}, ErrNotFound
	}
	r, err := s.Store.Records().GetRecord(ctx, kind, id)
	if err != nil {
		return domain.Record{}, storeErr("get record", err)
	}
	if !actor.isAdmin() && r.OwnerID != actor.UserID {
		return domain.Record{}, ErrNotFound
	}
	return r, nil
}

func (s *RecordService) Get(ctx context.Context, actor Actor, kind domain.RecordKind, id string) (RecordView, error) {
	r, err := s.load(ctx, actor, kind, id)
	if err != nil {
		return RecordView{}, err
	}
	return viewOf(r), nil
}

func (s *RecordService) List(ctx context.Context, actor Actor, kind domain.RecordKind, p ListParams) (RecordPage, error) {
	p = p.Normalize()

	q := domain.RecordQuery{
		Kind:   kind,
		Search: p.Search,
		Offset: (p.Page - 1) * p.Limit,
		Limit:  p.Limit,
	}
	if !actor.isAdmin() {
		q.OwnerID = actor.UserID
	}

	rows, total, err := s.Store.Records().ListRecords(ctx, q)
	if err != nil {
		return RecordPage{}, storeErr("list records", err)
	}

	views := make([]RecordView, 0, len(rows))
	for _, r := range rows {
		views = append(views, viewOf(r))
	}
	return RecordPage{Records: views, Page: p.Page, Limit: p.Limit, Total: total}, nil
}

// Update replaces the payload of a record.
func (s *RecordService) Update(ctx context.Context, actor Actor, kind domain.RecordKind, id string, raw []byte) (RecordView, error) {
	data, search, err := decode(kind, raw)
	if err != nil {
		return RecordView{}, err
	}

	r, err := s.load(ctx, actor, kind, id)
	if err != nil {
		return RecordView{}, err
	}
	r.Data = data
	r.Search = search
	r.UpdatedAt = s.now()

	if err := s.Store.Records().UpdateRecord(ctx, r); err != nil {
		return RecordView{}, storeErr("update record", err)
	}
	return viewOf(r), nil
}

func (s *RecordService) Delete(ctx context.Context, actor Actor, kind domain.RecordKind, id string) error {
	if _, err := s.load(ctx, actor, kind, id); err != nil {
		return err
	}
	if err := s.Store.Records().DeleteRecord(ctx, kind, id); err != nil {
		return storeErr("delete record", err)
	}
	slogx.FromContext(ctx).Info("record deleted", "kind", kind, "record_id", id)
	return nil
}
