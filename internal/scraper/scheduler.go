package scraper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/interfaces"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/models"
)

// PassRunner runs one collection pass.
type PassRunner interface {
	Collect(ctx context.Context) *models.RunResult
}

type SchedulerOptions struct {
	Runner   PassRunner
	Interval time.Duration
	Sinks    []interfaces.Sink
}

// Scheduler triggers collection passes on a fixed cadence. The first pass
// starts immediately. A tick that lands while a pass is still running is
// skipped, never queued, so passes cannot pile up behind a slow site.
type Scheduler struct {
	runner   PassRunner
	interval time.Duration
	sinks    []interfaces.Sink

	mu       sync.Mutex
	running  bool
	skipped  int
	nextTick time.Time
	latest   *models.RunResult

	passWG sync.WaitGroup
}

func NewScheduler(opts SchedulerOptions) (*Scheduler, error) {
	if opts.Runner == nil {
		return nil, errors.New("scheduler: runner is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("scheduler: interval must be positive")
	}
	return &Scheduler{
		runner:   opts.Runner,
		interval: opts.Interval,
		sinks:    opts.Sinks,
	}, nil
}

// Run blocks until ctx is canceled. Cancellation stops the cadence but
// waits for a pass that already started to finish and deliver.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("Starting periodic collection", "interval", s.interval)

	s.setNextTick(time.Now().Add(s.interval))
	s.startPass()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Periodic collection stopping, waiting for in-flight pass")
			s.passWG.Wait()
			slog.Info("Periodic collection stopped")
			return
		case <-ticker.C:
			slog.Info("Collection tick triggered")
			s.setNextTick(time.Now().Add(s.interval))
			s.startPass()
		}
	}
}

// RunOnce executes a single pass synchronously and delivers its result.
func (s *Scheduler) RunOnce(ctx context.Context) *models.RunResult {
	result := s.runner.Collect(ctx)

	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	s.deliver(result)
	return result
}

// Latest returns the most recent pass result, if any pass has finished.
func (s *Scheduler) Latest() (*models.RunResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil, false
	}
	return s.latest, true
}

// State reports the scheduler's view of the cadence.
func (s *Scheduler) State() models.ScheduleState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := models.ScheduleState{
		Running:      s.running,
		SkippedTicks: s.skipped,
		NextTick:     s.nextTick,
	}
	if s.latest != nil {
		summary := s.latest.Summary()
		state.LastRun = &summary
	}
	return state
}

func (s *Scheduler) startPass() {
	s.mu.Lock()
	if s.running {
		s.skipped++
		skipped := s.skipped
		s.mu.Unlock()
		slog.Warn("Previous pass still running, skipping tick", "skipped_total", skipped)
		return
	}
	s.running = true
	s.mu.Unlock()

	s.passWG.Add(1)
	go func() {
		defer s.passWG.Done()

		// The pass runs on its own context so shutdown never cuts a
		// collection short.
		result := s.runner.Collect(context.Background())

		s.mu.Lock()
		s.latest = result
		s.mu.Unlock()

		s.deliver(result)

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()
}

func (s *Scheduler) deliver(result *models.RunResult) {
	for _, sink := range s.sinks {
		if err := sink.Deliver(result); err != nil {
			slog.Error("Result delivery failed", "error", err)
		}
	}
}

func (s *Scheduler) setNextTick(t time.Time) {
	s.mu.Lock()
	s.nextTick = t
	s.mu.Unlock()
}
