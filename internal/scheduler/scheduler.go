// Package scheduler wires up the cron trigger for the daily pipeline run and
// enforces the consecutive-failure threshold that pauses the schedule.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner is one pipeline run.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler wraps robfig/cron and manages the run cadence. After
// maxFailures consecutive failed runs the schedule pauses: ticks are skipped
// until the counter is reset out of band.
type Scheduler struct {
	cron        *cron.Cron
	runner      Runner
	failures    FailureCounter
	maxFailures int
	spec        string // cron spec, e.g. "@daily"
	logger      *zap.Logger
}

func New(runner Runner, failures FailureCounter, maxFailures int, spec string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLogger(cron.DefaultLogger)),
		runner:      runner,
		failures:    failures,
		maxFailures: maxFailures,
		spec:        spec,
		logger:      logger,
	}
}

// Start registers the job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.Tick(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron started", zap.String("spec", s.spec))
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("cron stopped")
}

// Tick runs one scheduled cycle, honoring the failure threshold: a paused
// schedule skips the run entirely, a successful run resets the counter, a
// failed run increments it.
func (s *Scheduler) Tick(ctx context.Context) {
	count, err := s.failures.Consecutive(ctx)
	if err != nil {
		s.logger.Error("failure counter unavailable", zap.Error(err))
		return
	}
	if count >= s.maxFailures {
		s.logger.Warn("schedule paused after consecutive failures",
			zap.Int("failures", count), zap.Int("threshold", s.maxFailures))
		return
	}

	if err := s.runner.Run(ctx); err != nil {
		s.logger.Error("run failed", zap.Error(err))
		if err := s.failures.RecordFailure(ctx); err != nil {
			s.logger.Error("failure counter update failed", zap.Error(err))
		}
		return
	}

	if err := s.failures.Reset(ctx); err != nil {
		s.logger.Error("failure counter reset failed", zap.Error(err))
	}
}
