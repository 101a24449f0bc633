package gormdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/salesdesk/pkg/slogx"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// slogLogger routes gorm logs through slog, preferring the request-scoped
// logger stored in the context.
type slogLogger struct {
	base  *slog.Logger
	level logger.LogLevel
}

func newSlogLogger(base *slog.Logger, level logger.LogLevel) logger.Interface {
	return &slogLogger{base: base, level: level}
}

func (l *slogLogger) from(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if lg := slogx.FromContext(ctx); lg != slog.Default() {
			return lg.With("component", "gorm")
		}
	}
	return l.base
}

func (l *slogLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &slogLogger{base: l.base, level: level}
}

func (l *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		l.from(ctx).InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		l.from(ctx).WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		l.from(ctx).ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace logs failed and slow statements. Statements carry bind parameters
// only as placeholders, so credentials never reach the log.
func (l *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.from(ctx).ErrorContext(ctx, "gorm query failed",
			"sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds(), "err", err)
	case elapsed > slowQueryThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.from(ctx).WarnContext(ctx, "gorm slow query",
			"sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case l.level >= logger.Info:
		sql, rows := fc()
		l.from(ctx).DebugContext(ctx, "gorm query",
			"sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	}
}

// ParamsFilter drops bind values from logged SQL.
func (l *slogLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}
