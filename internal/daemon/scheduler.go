package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"seasonarr/internal/config"
	"seasonarr/internal/engine"
	"seasonarr/internal/logging"
)

// CycleResult records the outcome of the most recent ingestion cycle.
type CycleResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// scheduler runs ingestion cycles on a fixed cadence with an immediate first
// run. Trigger requests an extra cycle without waiting for the ticker.
type scheduler struct {
	interval time.Duration
	engine   *engine.Engine
	logger   *slog.Logger

	trigger chan struct{}
	done    chan struct{}
	cancel  context.CancelFunc

	mu   sync.Mutex
	last CycleResult
}

func newScheduler(cfg *config.Config, eng *engine.Engine, logger *slog.Logger) *scheduler {
	return &scheduler{
		interval: time.Duration(cfg.Ingest.Interval) * time.Second,
		engine:   eng,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

func (s *scheduler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx)
}

func (s *scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
}

// Trigger requests an out-of-schedule cycle. Returns false when a request is
// already pending.
func (s *scheduler) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// LastCycle returns the most recent cycle outcome.
func (s *scheduler) LastCycle() CycleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		case <-s.trigger:
			s.cycle(ctx)
		}
	}
}

func (s *scheduler) cycle(ctx context.Context) {
	result := CycleResult{StartedAt: time.Now()}
	result.Err = s.engine.Ingest(ctx)
	result.FinishedAt = time.Now()

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	if result.Err != nil && ctx.Err() == nil {
		s.logger.Warn("scheduled ingestion cycle failed", logging.Error(result.Err))
	}
}
