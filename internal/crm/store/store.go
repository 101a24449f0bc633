package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrUnavailable wraps errors that mean the backing engine could not be
	// reached or did not answer in time.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the root data access interface. Concrete drivers (gorm/postgres,
// sqlite) implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so transactions cannot be nested by accident.
type Store interface {
	Users() Users
	Sessions() Sessions
	Records() Records

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and health checks.
	Name() string
}

// Tx is the view of a store inside a transaction.
type Tx interface {
	Users() Users
	Sessions() Sessions
	Records() Records
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. A taken email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser applies the non-nil fields of upd and bumps updated_at.
	UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// GetActiveSessionByTokenHash returns the session only if it is active and
	// expires strictly after now.
	GetActiveSessionByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Session, error)

	// DeactivateUserSessions flips every active session of the user to
	// inactive and returns how many changed. Zero is not an error.
	DeactivateUserSessions(ctx context.Context, userID string) (int64, error)

	// DeleteStaleSessions removes sessions that are inactive or expired and
	// were created before the cutoff.
	DeleteStaleSessions(ctx context.Context, before time.Time) (int64, error)
}

type Records interface {
	CreateRecord(ctx context.Context, r domain.Record) error
	GetRecord(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error)

	// ListRecords returns one page, newest first, and the total match count.
	ListRecords(ctx context.Context, q domain.RecordQuery) ([]domain.Record, int64, error)

	// UpdateRecord replaces data and search text and sets updated_at.
	UpdateRecord(ctx context.Context, r domain.Record) error
	DeleteRecord(ctx context.Context, kind domain.RecordKind, id string) error
}
