package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/store"
)

// KeyLister reports which signing keys are currently loaded.
type KeyLister interface {
	KIDs() []string
}

// HousekeepingService periodically drops revocation records for tokens whose
// signing key is no longer loaded. Those tokens fail the signature check
// anyway, so the records only cost space.
type HousekeepingService struct {
	Store    store.Store
	Keys     KeyLister
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, keys KeyLister, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Keys:     keys,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
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

// Cleanup runs one pass and returns how many revocations were dropped.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	kids := s.Keys.KIDs()
	if len(kids) == 0 {
		// Never wipe the whole set because key loading went wrong
		s.Logger.Warn("housekeeping skipped, no signing keys loaded")
		return 0
	}

	n, err := s.Store.Revocations().DeleteRevocationsExcept(ctx, kids)
	if err != nil {
		s.Logger.Error("failed to purge stale revocations", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed", "purged_revocations", n)
	return n
}
