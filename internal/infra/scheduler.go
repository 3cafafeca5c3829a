package infra

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"partnerbackend/internal/cache"
)

// warmTimeout bounds one warming run
const warmTimeout = time.Minute

// CacheWarmer primes memo caches and reports their counters
type CacheWarmer interface {
	WarmCaches(ctx context.Context) error
	CacheStats() []cache.Stats
}

// Scheduler periodically warms the memo caches
type Scheduler struct {
	cron     *cron.Cron
	warmer   CacheWarmer
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a scheduler running warmer on a standard five-field
// cron schedule
func NewScheduler(warmer CacheWarmer, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		warmer:   warmer,
		schedule: schedule,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start registers the warming job and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("failed to schedule cache warming %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule)
	return nil
}

// RunNow warms the caches once, synchronously
func (s *Scheduler) RunNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, warmTimeout)
	defer cancel()

	start := time.Now()
	if err := s.warmer.WarmCaches(ctx); err != nil {
		s.logger.Error("cache warming failed", "error", err)
		return err
	}

	for _, st := range s.warmer.CacheStats() {
		s.logger.Info("cache stats", "cache", st.Name, "hits", st.Hits, "misses", st.Misses, "entries", st.Entries)
	}
	s.logger.Info("caches warmed", "duration", time.Since(start))
	return nil
}

func (s *Scheduler) run() {
	_ = s.RunNow(context.Background())
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
