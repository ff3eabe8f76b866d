package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/metrics"
	"github.com/dtroode/contractchecker-server/internal/model"
)

const defaultSweepSchedule = "@every 10m"

// ChallengeSweeper periodically deletes expired OTP challenges. Redemption
// checks expiry on its own, so the sweeper only reclaims storage.
type ChallengeSweeper struct {
	challenges model.ChallengeStore
	cron       *cron.Cron
	schedule   string
	timeout    time.Duration
	now        func() time.Time
	logger     *logger.Logger
}

// SweeperOption customises the ChallengeSweeper.
type SweeperOption func(*ChallengeSweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) SweeperOption {
	return func(s *ChallengeSweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithSweepNow overrides the clock used for expiry comparisons.
func WithSweepNow(now func() time.Time) SweeperOption {
	return func(s *ChallengeSweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedule overrides the cron schedule.
func WithSchedule(schedule string) SweeperOption {
	return func(s *ChallengeSweeper) {
		if schedule != "" {
			s.schedule = schedule
		}
	}
}

func NewChallengeSweeper(challenges model.ChallengeStore, logger *logger.Logger, opts ...SweeperOption) *ChallengeSweeper {
	s := &ChallengeSweeper{
		challenges: challenges,
		schedule:   defaultSweepSchedule,
		timeout:    30 * time.Second,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers the sweep job and launches the scheduler.
func (s *ChallengeSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("Challenge sweeper: sweep failed",
				"error", err.Error())
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("Challenge sweeper: started",
		"schedule", s.schedule)
	return nil
}

// Stop halts the scheduler. The returned context is done once a running
// sweep completes.
func (s *ChallengeSweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce deletes every challenge that expired before now.
func (s *ChallengeSweeper) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := s.challenges.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired challenges: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("Challenge sweeper: expired challenges deleted",
			"count", deleted)
		metrics.SweptChallenges.Add(float64(deleted))
	}

	return deleted, nil
}
