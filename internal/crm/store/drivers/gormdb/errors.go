package gormdb

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE values and classes we translate.
const (
	pgUniqueViolation = "23505"

	pgClassConnection   = "08" // connection exception
	pgClassResources    = "53" // insufficient resources
	pgClassOperatorIntv = "57" // operator intervention (shutdown, cannot connect now)
)

// mapErr translates gorm and pgx errors into store sentinels. Errors that
// mean the server could not be reached become store.ErrUnavailable so the
// failover store can switch backends.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrAlreadyExists
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return store.ErrAlreadyExists
		case strings.HasPrefix(pgErr.Code, pgClassConnection),
			strings.HasPrefix(pgErr.Code, pgClassResources),
			strings.HasPrefix(pgErr.Code, pgClassOperatorIntv):
			return fmt.Errorf("%w: postgres: %w", store.ErrUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: postgres: %w", store.ErrUnavailable, err)
	}
	return err
}
