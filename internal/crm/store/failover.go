package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/pkg/slogx"
)

// DefaultTimeout bounds a single storage call when none is configured.
const DefaultTimeout = 5 * time.Second

// Failover is a Store that sends every call to a primary backend and, when
// the primary is unreachable or times out, retries it once against a fallback
// backend. Callers see a single Store and never learn which one answered.
//
// There is no retry beyond that one attempt.
type Failover struct {
	primary  Store
	fallback Store // may be nil
	timeout  time.Duration
}

// NewFailover wraps primary and fallback. A nil fallback only adds the per
// call timeout and the ErrUnavailable mapping.
func NewFailover(primary, fallback Store, timeout time.Duration) *Failover {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Failover{primary: primary, fallback: fallback, timeout: timeout}
}

// IsUnavailable reports whether err means the backend could not serve the
// call, as opposed to a logical failure such as ErrNotFound.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

func (f *Failover) attempt(ctx context.Context, s Store, fn func(context.Context, Store) error) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	err := fn(ctx, s)
	if err != nil && !errors.Is(err, ErrUnavailable) && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, s.Name(), err)
	}
	return err
}

func (f *Failover) run(ctx context.Context, op string, fn func(context.Context, Store) error) error {
	err := f.attempt(ctx, f.primary, fn)
	if err == nil || !IsUnavailable(err) {
		return err
	}
	// The caller gave up; a second backend will not help.
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
	if f.fallback == nil {
		return err
	}

	slogx.FromContext(ctx).Warn("primary store unavailable, using fallback",
		slog.String("op", op),
		slog.String("primary", f.primary.Name()),
		slog.String("fallback", f.fallback.Name()),
		slog.Any("err", err),
	)

	ferr := f.attempt(ctx, f.fallback, fn)
	if ferr != nil && IsUnavailable(ferr) {
		return fmt.Errorf("%w: primary: %v; fallback: %v", ErrUnavailable, err, ferr)
	}
	return ferr
}

func get[T any](ctx context.Context, f *Failover, op string, fn func(context.Context, Store) (T, error)) (T, error) {
	var out T
	err := f.run(ctx, op, func(ctx context.Context, s Store) error {
		v, err := fn(ctx, s)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (f *Failover) Users() Users       { return failoverUsers{f} }
func (f *Failover) Sessions() Sessions { return failoverSessions{f} }
func (f *Failover) Records() Records   { return failoverRecords{f} }

func (f *Failover) Name() string {
	if f.fallback == nil {
		return f.primary.Name()
	}
	return f.primary.Name() + "+" + f.fallback.Name()
}

// ApplyMigrations migrates every configured backend.
func (f *Failover) ApplyMigrations() error {
	err := f.primary.ApplyMigrations()
	if f.fallback != nil {
		err = errors.Join(err, f.fallback.ApplyMigrations())
	}
	return err
}

// WithTx runs the whole transaction on the primary, or on the fallback if the
// primary cannot be reached. fn may therefore run twice and must not have
// side effects outside the transaction.
func (f *Failover) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return f.run(ctx, "tx", func(ctx context.Context, s Store) error {
		return s.WithTx(ctx, fn)
	})
}

// Ping succeeds while at least one backend answers.
func (f *Failover) Ping(ctx context.Context) error {
	return f.run(ctx, "ping", func(ctx context.Context, s Store) error {
		if err := s.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil
	})
}

// Health pings each backend separately. Keys are "primary:<name>" and
// "fallback:<name>".
func (f *Failover) Health(ctx context.Context) map[string]error {
	out := map[string]error{"primary:" + f.primary.Name(): f.primary.Ping(ctx)}
	if f.fallback != nil {
		out["fallback:"+f.fallback.Name()] = f.fallback.Ping(ctx)
	}
	return out
}

func (f *Failover) Close() error {
	err := f.primary.Close()
	if f.fallback != nil {
		err = errors.Join(err, f.fallback.Close())
	}
	return err
}

type failoverUsers struct{ f *Failover }

func (u failoverUsers) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return get(ctx, u.f, "users.get_by_id", func(ctx context.Context, s Store) (domain.User, error) {
		return s.Users().GetUserByID(ctx, id)
	})
}

func (u failoverUsers) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return get(ctx, u.f, "users.get_by_email", func(ctx context.Context, s Store) (domain.User, error) {
		return s.Users().GetUserByEmail(ctx, email)
	})
}

func (u failoverUsers) CreateUser(ctx context.Context, user domain.User) error {
	return u.f.run(ctx, "users.create", func(ctx context.Context, s Store) error {
		return s.Users().CreateUser(ctx, user)
	})
}

func (u failoverUsers) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) error {
	return u.f.run(ctx, "users.update", func(ctx context.Context, s Store) error {
		return s.Users().UpdateUser(ctx, id, upd)
	})
}

type failoverSessions struct{ f *Failover }

func (x failoverSessions) CreateSession(ctx context.Context, sess domain.Session) error {
	return x.f.run(ctx, "sessions.create", func(ctx context.Context, s Store) error {
		return s.Sessions().CreateSession(ctx, sess)
	})
}

func (x failoverSessions) GetActiveSessionByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Session, error) {
	return get(ctx, x.f, "sessions.get_active", func(ctx context.Context, s Store) (domain.Session, error) {
		return s.Sessions().GetActiveSessionByTokenHash(ctx, hash, now)
	})
}

func (x failoverSessions) DeactivateUserSessions(ctx context.Context, userID string) (int64, error) {
	return get(ctx, x.f, "sessions.deactivate_user", func(ctx context.Context, s Store) (int64, error) {
		return s.Sessions().DeactivateUserSessions(ctx, userID)
	})
}

func (x failoverSessions) DeleteStaleSessions(ctx context.Context, before time.Time) (int64, error) {
	return get(ctx, x.f, "sessions.delete_stale", func(ctx context.Context, s Store) (int64, error) {
		return s.Sessions().DeleteStaleSessions(ctx, before)
	})
}

type failoverRecords struct{ f *Failover }

func (r failoverRecords) CreateRecord(ctx context.Context, rec domain.Record) error {
	return r.f.run(ctx, "records.create", func(ctx context.Context, s Store) error {
		return s.Records().CreateRecord(ctx, rec)
	})
}

func (r failoverRecords) GetRecord(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error) {
	return get(ctx, r.f, "records.get", func(ctx context.Context, s Store) (domain.Record, error) {
		return s.Records().GetRecord(ctx, kind, id)
	})
}

type recordPage struct {
	items []domain.Record
	total int64
}

func (r failoverRecords) ListRecords(ctx context.Context, q domain.RecordQuery) ([]domain.Record, int64, error) {
	page, err := get(ctx, r.f, "records.list", func(ctx context.Context, s Store) (recordPage, error) {
		items, total, err := s.Records().ListRecords(ctx, q)
		return recordPage{items, total}, err
	})
	return page.items, page.total, err
}

func (r failoverRecords) UpdateRecord(ctx context.Context, rec domain.Record) error {
	return r.f.run(ctx, "records.update", func(ctx context.Context, s Store) error {
		return s.Records().UpdateRecord(ctx, rec)
	})
}

func (r failoverRecords) DeleteRecord(ctx context.Context, kind domain.RecordKind, id string) error {
	return r.f.run(ctx, "records.delete", func(ctx context.Context, s Store) error {
		return s.Records().DeleteRecord(ctx, kind, id)
	})
}
