package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store/drivers/gormdb"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store/drivers/sqlite"
)

// OpenStore builds the storage stack and applies migrations.
//
// A postgres DATABASE_URL gives a gorm primary with the sqlite file as
// fallback. If the primary cannot be opened or migrated the service runs on
// the fallback alone. Any other DATABASE_URL is used as the sqlite path.
func OpenStore(cfg Config, logger *slog.Logger) (store.Store, error) {
	if !IsPostgresURL(cfg.DatabaseURL) {
		path := cfg.DatabaseURL
		if path == "" {
			path = cfg.FallbackDatabaseFile
		}
		db, err := openSQLite(path)
		if err != nil {
			return nil, err
		}
		logger.Info("storage ready", "backend", db.Name(), "path", path)
		return store.NewFailover(db, nil, cfg.StorageTimeout), nil
	}

	fallback, err := openSQLite(cfg.FallbackDatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("fallback store: %w", err)
	}

	primary, err := gormdb.Open(gormdb.Config{
		DSN:    cfg.DatabaseURL,
		Logger: logger,
	})
	if err != nil {
		logger.Warn("primary store unavailable, running on fallback only", "err", err)
		return store.NewFailover(fallback, nil, cfg.StorageTimeout), nil
	}
	if err := primary.ApplyMigrations(); err != nil {
		_ = primary.Close()
		logger.Warn("primary store migration failed, running on fallback only", "err", err)
		return store.NewFailover(fallback, nil, cfg.StorageTimeout), nil
	}

	logger.Info("storage ready", "primary", primary.Name(), "fallback", fallback.Name())
	return store.NewFailover(primary, fallback, cfg.StorageTimeout), nil
}

func openSQLite(path string) (*sqlite.Store, error) {
	db, err := sqlite.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}
