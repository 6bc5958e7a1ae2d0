package scheduler

import (
	"context"
	"time"

	"glowbook/internal/domain"

	"github.com/rs/zerolog"
)

// syncRunner is the slice of the sync manager the scheduler drives.
type syncRunner interface {
	SyncAll(ctx context.Context) domain.SyncReport
	RefreshCache(ctx context.Context) error
	Nudge() <-chan struct{}
}

// housekeeper prunes expired session state between passes.
type housekeeper interface {
	Prune(now time.Time) int
}

// Scheduler is the host-level periodic job runner: it triggers a sync pass
// on a fixed interval (subject to network and battery constraints) and
// immediately when the manager nudges it. A failed periodic pass is retried
// with exponential backoff before waiting for the next tick.
type Scheduler struct {
	runner    syncRunner
	network   NetworkMonitor
	power     PowerMonitor
	sessions  housekeeper
	interval  time.Duration
	jobRetry  RetryPolicy
	refresher bool
	logger    zerolog.Logger
}

type Config struct {
	Interval     time.Duration
	JobRetry     RetryPolicy
	RefreshCache bool
}

func New(runner syncRunner, network NetworkMonitor, power PowerMonitor, sessions housekeeper, cfg Config, logger zerolog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.JobRetry.MaxRetries == 0 {
		cfg.JobRetry = RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	}

	return &Scheduler{
		runner:    runner,
		network:   network,
		power:     power,
		sessions:  sessions,
		interval:  cfg.Interval,
		jobRetry:  cfg.JobRetry,
		refresher: cfg.RefreshCache,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start runs the loop until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")
	defer s.logger.Info().Msg("scheduler stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.runner.Nudge():
			s.runPass(ctx, false)
		case <-ticker.C:
			s.runPass(ctx, true)
		}
	}
}

// runPass executes one sync pass when the constraints allow it. Periodic
// passes get the job-level exponential retry; nudged passes run once, the
// item-level retry budget covers their failures.
func (s *Scheduler) runPass(ctx context.Context, periodic bool) {
	if !s.constraintsMet() {
		s.logger.Debug().Bool("periodic", periodic).Msg("sync pass skipped, constraints not met")
		return
	}

	if s.sessions != nil {
		if removed := s.sessions.Prune(time.Now()); removed > 0 {
			s.logger.Debug().Int("removed", removed).Msg("pruned expired session state")
		}
	}

	if periodic && s.refresher {
		if err := s.runner.RefreshCache(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("catalog refresh failed")
		}
	}

	report := s.runner.SyncAll(ctx)
	if report.OK() {
		s.logger.Info().Int("processed", report.Processed).Int("failed", report.Failed).Msg("sync pass finished")
		return
	}

	if !periodic {
		s.logger.Warn().Str("error", report.Err).Msg("nudged sync pass failed")
		return
	}

	for attempt := 1; attempt <= s.jobRetry.MaxRetries; attempt++ {
		delay := s.jobRetry.NextDelay(attempt)
		s.logger.Warn().
			Str("error", report.Err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("periodic sync failed, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		if !s.constraintsMet() {
			return
		}
		report = s.runner.SyncAll(ctx)
		if report.OK() {
			s.logger.Info().Int("processed", report.Processed).Int("failed", report.Failed).Msg("sync pass finished after retry")
			return
		}
	}

	s.logger.Error().Str("error", report.Err).Msg("periodic sync gave up until next tick")
}

func (s *Scheduler) constraintsMet() bool {
	if s.network != nil && !s.network.Connected() {
		return false
	}
	if s.power != nil && s.power.BatteryLow() {
		return false
	}
	return true
}
