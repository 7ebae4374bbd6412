package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"IncidentScanner/internal/ports"
)

// Scheduler wires the interval driver with the run coordinator.
type Scheduler struct {
	driver ports.Scheduler
	runner *Runner
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, runner *Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, runner: runner, logger: logger.With("component", "scheduler")}
}

// Start registers the runner with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		_, err := s.runner.RunOnce(ctx, trigger)
		switch {
		case errors.Is(err, ErrRunInProgress):
			s.logger.Info("scheduled run skipped", "trigger", trigger.Format(time.RFC3339))
		case err != nil:
			s.logger.Error("scheduled run failed", "trigger", trigger.Format(time.RFC3339), "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
