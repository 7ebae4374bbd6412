package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/ports"
)

// ErrRunInProgress is returned when another run holds the local or distributed lock.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// RunObserver records finished and skipped runs.
type RunObserver interface {
	ObserveRun(stats domain.RunStats, err error)
	ObserveSkipped()
}

type runPipeline interface {
	Run(ctx context.Context, now time.Time) (domain.RunStats, error)
}

// LastRun is the outcome of the most recent finished run.
type LastRun struct {
	Stats domain.RunStats `json:"stats"`
	Error string          `json:"error,omitempty"`
}

// Runner serializes pipeline runs and remembers the last outcome.
type Runner struct {
	pipeline runPipeline
	lock     ports.RunLock
	observer RunObserver
	clock    func() time.Time
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	last    *LastRun
	wg      sync.WaitGroup
}

// NewRunner wraps the pipeline; a nil lock only guards against overlap inside this process.
func NewRunner(pipeline runPipeline, lock ports.RunLock, observer RunObserver, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		pipeline: pipeline,
		lock:     lock,
		observer: observer,
		clock:    time.Now,
		logger:   logger.With("component", "runner"),
	}
}

// RunOnce executes the pipeline synchronously.
func (r *Runner) RunOnce(ctx context.Context, now time.Time) (domain.RunStats, error) {
	if !r.begin() {
		r.skipped()
		return domain.RunStats{}, ErrRunInProgress
	}
	defer r.end()
	return r.execute(ctx, now)
}

// Trigger starts a run in the background. ctx should outlive the caller's request.
func (r *Runner) Trigger(ctx context.Context) error {
	if !r.begin() {
		r.skipped()
		return ErrRunInProgress
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.end()
		if _, err := r.execute(ctx, r.clock()); err != nil {
			r.logger.Warn("triggered run failed", "error", err)
		}
	}()
	return nil
}

// Wait blocks until background runs started by Trigger return.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Running reports whether this process is executing a run.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Last returns the most recent finished run, if any.
func (r *Runner) Last() (LastRun, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return LastRun{}, false
	}
	return *r.last, true
}

func (r *Runner) execute(ctx context.Context, now time.Time) (domain.RunStats, error) {
	if r.lock != nil {
		release, ok, err := r.lock.Acquire(ctx)
		if err != nil {
			return domain.RunStats{}, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			r.skipped()
			return domain.RunStats{}, ErrRunInProgress
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("release run lock", "error", err)
			}
		}()
	}

	r.logger.Info("run started", "now", now.Format(time.RFC3339))
	stats, err := r.pipeline.Run(ctx, now)

	last := LastRun{Stats: stats}
	if err != nil {
		last.Error = err.Error()
		r.logger.Error("run failed", "stage", stats.Stage, "error", err)
	} else {
		r.logger.Info("run completed", "persisted", stats.Persisted, "duration", stats.Duration())
	}

	r.mu.Lock()
	r.last = &last
	r.mu.Unlock()

	if r.observer != nil {
		r.observer.ObserveRun(stats, err)
	}
	return stats, err
}

func (r *Runner) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *Runner) end() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *Runner) skipped() {
	r.logger.Info("run skipped, another run holds the lock")
	if r.observer != nil {
		r.observer.ObserveSkipped()
	}
}
