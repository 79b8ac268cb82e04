package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"seasonarr/internal/config"
	"seasonarr/internal/engine"
	"seasonarr/internal/logging"
	"seasonarr/internal/store"
)

// Daemon runs the ingestion scheduler and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	engine *engine.Engine

	lockPath  string
	lock      *flock.Flock
	scheduler *scheduler

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	DatabasePath string
	LockFilePath string
	LastCycle    CycleResult
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, eng *engine.Engine, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || eng == nil {
		return nil, errors.New("daemon requires config, store, and engine")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "seasonarrd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger.With(logging.String("component", "daemon")),
		store:    st,
		engine:   eng,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.scheduler = newScheduler(cfg, eng, d.logger)
	return d, nil
}

// Start acquires the daemon lock and launches the ingestion scheduler.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another seasonarr daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.scheduler.Start(runCtx)

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()))
	return nil
}

// Stop stops the scheduler and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.scheduler.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// TriggerIngest requests an ingestion cycle outside the regular schedule.
func (d *Daemon) TriggerIngest() bool {
	return d.scheduler.Trigger()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		LastCycle:    d.scheduler.LastCycle(),
	}
}
