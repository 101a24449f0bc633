package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
)

// DefaultSessionRetention is how long dead sessions are kept for auditing.
const DefaultSessionRetention = 30 * 24 * time.Hour

// HousekeepingService periodically deletes sessions that are inactive or
// expired and older than the retention window. Session validity never
// depends on this running.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. Non-positive
// interval and retention default to 1 hour and DefaultSessionRetention.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultSessionRetention
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		Now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the cleanup loop in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass and returns the number of deleted sessions.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	before := s.Now().UTC().Add(-s.Retention)

	n, err := s.Store.Sessions().DeleteStaleSessions(ctx, before)
	if err != nil {
		s.Logger.Error("failed to delete stale sessions", "error", err)
		return 0
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted_sessions", n)
	return n
}
