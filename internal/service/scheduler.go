package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"
)

// DefaultSyncTimeout bounds one scheduled sync run
const DefaultSyncTimeout = 30 * time.Minute

// Scheduler runs SyncAll on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	sync    *SyncService
	log     *slog.Logger
	timeout time.Duration
	running atomic.Bool
}

// NewScheduler creates a scheduler for the given sync service
func NewScheduler(sync *SyncService, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		sync:    sync,
		log:     log.With(slog.String("component", "scheduler")),
		timeout: DefaultSyncTimeout,
	}
}

// Start registers the sync job under spec (e.g. "@every 6h") and starts the cron loop
func (s *Scheduler) Start(spec string) error {
	if _, err := cron.Parse(spec); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	if err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("scheduling sync: %w", err)
	}
	s.cron.Start()
	s.log.Info("scheduler_started", slog.String("schedule", spec))
	return nil
}

// Stop halts the cron loop. A run in progress finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler_stopped")
}

// RunOnce syncs all users unless a previous run is still going.
// It reports whether a run happened.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("sync_skipped", slog.String("reason", "previous run still active"))
		return false
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	results, err := s.sync.SyncAll(ctx)
	if err != nil {
		s.log.Error("scheduled_sync_failed", slog.Any("err", err))
		return true
	}

	stored := 0
	for _, r := range results {
		stored += r.ActivitiesStored
	}
	s.log.Info("scheduled_sync_completed",
		slog.Int("users", len(results)),
		slog.Int("stored", stored),
		slog.Duration("took", time.Since(started)),
	)
	return true
}
