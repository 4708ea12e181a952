// Package server runs long-lived components alongside periodic maintenance.
package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/vidstash/internal/asset"
	"github.com/vmunix/vidstash/internal/events"
	"github.com/vmunix/vidstash/internal/respcache"
)

// DefaultMaintenanceInterval is how often expired cache rows and old events
// are pruned.
const DefaultMaintenanceInterval = time.Hour

// Component is a long-running piece of the process.
type Component interface {
	// Start runs until ctx is canceled (blocking).
	Start(ctx context.Context) error

	// Name returns the component name for logging.
	Name() string
}

// Config for the runner. Nil stores are skipped during maintenance.
type Config struct {
	MaintenanceInterval time.Duration
	EventRetention      time.Duration // 0 keeps events forever

	Cache  *respcache.Cache
	Events *events.EventLog
	Assets *asset.Store
}

// MaintenanceReport counts what one maintenance pass removed.
type MaintenanceReport struct {
	CacheEntries int64
	Events       int64
}

// Runner manages components and maintenance.
type Runner struct {
	config     Config
	components []Component
	logger     *slog.Logger
	ready      chan struct{}
	readyOnce  sync.Once
}

// NewRunner creates a new runner.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaintenanceInterval <= 0 {
		cfg.MaintenanceInterval = DefaultMaintenanceInterval
	}
	return &Runner{
		config: cfg,
		logger: logger.With("component", "runner"),
		ready:  make(chan struct{}),
	}
}

// Add registers a component to start with Run.
func (r *Runner) Add(c Component) {
	r.components = append(r.components, c)
}

// Ready is closed once Run has removed leftover partial transfers. Start
// no transfer before then.
func (r *Runner) Ready() <-chan struct{} {
	return r.ready
}

// Run removes leftover partial transfers, then starts every component and
// the maintenance loop. It blocks until the context is canceled or a
// component fails. Cancellation is not an error.
func (r *Runner) Run(ctx context.Context) error {
	if r.config.Assets != nil {
		if n, err := r.config.Assets.CleanPartial(); err != nil {
			r.logger.Warn("clean partial transfers failed", "error", err)
		} else if n > 0 {
			r.logger.Info("removed partial transfers", "count", n)
		}
	}
	r.readyOnce.Do(func() { close(r.ready) })

	g, ctx := errgroup.WithContext(ctx)

	for _, c := range r.components {
		c := c
		g.Go(func() error {
			r.logger.Debug("component starting", "name", c.Name())
			err := c.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("component failed", "name", c.Name(), "error", err)
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(r.config.MaintenanceInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				r.Maintain(ctx)
			}
		}
	})

	return g.Wait()
}

// Maintain runs one pruning pass. Failures are logged and skipped.
func (r *Runner) Maintain(ctx context.Context) MaintenanceReport {
	var report MaintenanceReport

	if r.config.Cache != nil {
		n, err := r.config.Cache.Prune(ctx)
		if err != nil {
			r.logger.Warn("prune cache failed", "error", err)
		}
		report.CacheEntries = n
	}

	if r.config.Events != nil && r.config.EventRetention > 0 {
		n, err := r.config.Events.Prune(r.config.EventRetention)
		if err != nil {
			r.logger.Warn("prune events failed", "error", err)
		}
		report.Events = n
	}

	r.logger.Debug("maintenance done",
		"cache_entries", report.CacheEntries,
		"events", report.Events)
	return report
}
