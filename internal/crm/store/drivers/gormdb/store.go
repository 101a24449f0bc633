// Package gormdb is the primary store driver: gorm over PostgreSQL.
package gormdb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          *slog.Logger
}

type Store struct {
	db *gorm.DB
}

func gormConfig(log *slog.Logger) *gorm.Config {
	if log == nil {
		log = slog.Default()
	}
	return &gorm.Config{
		// Single statements need no wrapping transaction; WithTx is explicit.
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
		Logger:                 newSlogLogger(log.With("component", "gorm"), logger.Warn),
	}
}

// Open connects to PostgreSQL and verifies the connection. A server that
// cannot be reached yields store.ErrUnavailable.
func Open(cfg Config) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), gormConfig(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: %w", store.ErrUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: postgres: %w", store.ErrUnavailable, err)
	}

	return &Store{db: db}, nil
}

// New wraps an existing gorm handle. Tests use it with a mocked connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// NewWithDialector opens gorm over d with the driver's settings.
func NewWithDialector(d gorm.Dialector, log *slog.Logger) (*Store, error) {
	db, err := gorm.Open(d, gormConfig(log))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Name() string { return "postgres" }

// ApplyMigrations creates or updates the schema from the gorm models.
func (s *Store) ApplyMigrations() error {
	return mapErr(s.db.AutoMigrate(&userModel{}, &sessionModel{}, &recordModel{}))
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(txStore{db: tx})
		return fnErr
	})
	if fnErr != nil {
		// Already mapped by the repos.
		return fnErr
	}
	return mapErr(err)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return mapErr(sqlDB.PingContext(ctx))
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Users() store.Users       { return &usersRepo{db: s.db} }
func (s *Store) Sessions() store.Sessions { return &sessionsRepo{db: s.db} }
func (s *Store) Records() store.Records   { return &recordsRepo{db: s.db} }

type txStore struct{ db *gorm.DB }

func (t txStore) Users() store.Users       { return &usersRepo{db: t.db} }
func (t txStore) Sessions() store.Sessions { return &sessionsRepo{db: t.db} }
func (t txStore) Records() store.Records   { return &recordsRepo{db: t.db} }

// requireOne turns an UPDATE/DELETE that touched no rows into ErrNotFound.
func requireOne(res *gorm.DB) error {
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
