// Package background runs the service's scheduled and event-driven jobs:
// cache eviction on a ticker, the optional periodic fresh sync, and the
// refresher loop reacting to "rates updated" signals.
package background

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/fx_rates_app/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_app/internal/events"
	"github.com/SscSPs/fx_rates_app/internal/metrics"
	"github.com/SscSPs/fx_rates_app/internal/platform/config"
)

// Runner owns the background goroutines. Start launches them; they stop when
// the context passed to Start is cancelled.
type Runner struct {
	cfg         *config.Config
	latestRates portssvc.LatestRateSvcFacade
	reconciler  portssvc.ReconcilerSvcFacade
	bus         *events.RatesUpdatedBus
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewRunner creates a background job runner.
func NewRunner(
	cfg *config.Config,
	latestRates portssvc.LatestRateSvcFacade,
	reconciler portssvc.ReconcilerSvcFacade,
	bus *events.RatesUpdatedBus,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		cfg:         cfg,
		latestRates: latestRates,
		reconciler:  reconciler,
		bus:         bus,
		metrics:     m,
		logger:      logger,
	}
}

// Start launches the eviction loop, the refresher subscriber loop, and, when
// configured, the periodic fresh sync.
func (r *Runner) Start(ctx context.Context) {
	go r.runEvictionLoop(ctx)
	go r.runRefreshLoop(ctx)
	if r.cfg.FreshSyncInterval > 0 {
		go r.runFreshSyncLoop(ctx)
	}
}

func (r *Runner) runEvictionLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.CacheEvictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted, err := r.latestRates.EvictStale(ctx)
			if err != nil {
				r.logger.Error("Cache eviction failed", slog.String("error", err.Error()))
				continue
			}
			r.metrics.CacheEvictionsTotal.Add(float64(evicted))
			if evicted > 0 {
				r.logger.Info("Evicted stale cache entries", slog.Int64("count", evicted))
			}
		}
	}
}

// runRefreshLoop recomputes the latest snapshot whenever the reconciler
// signals that the record store changed. Signals coalesce, so a burst of
// ingestions costs one refresh.
func (r *Runner) runRefreshLoop(ctx context.Context) {
	signals := r.bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			if err := r.latestRates.RefreshLatest(ctx); err != nil {
				r.metrics.RefreshRunsTotal.WithLabelValues("error").Inc()
				r.logger.Error("Latest-rate refresh failed", slog.String("error", err.Error()))
				continue
			}
			r.metrics.RefreshRunsTotal.WithLabelValues("success").Inc()
			r.logger.Info("Latest-rate cache refreshed")
		}
	}
}

func (r *Runner) runFreshSyncLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.FreshSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			trailEntry, err := r.reconciler.SyncCurrent(ctx)
			if err != nil {
				r.metrics.ReconciledRatesTotal.WithLabelValues("fresh_sync", "error").Inc()
				r.logger.Error("Fresh sync failed", slog.String("error", err.Error()))
				continue
			}
			r.metrics.ReconciledRatesTotal.WithLabelValues("fresh_sync", "success").Add(float64(trailEntry.EvaluatedCount))
			r.logger.Info("Fresh sync completed",
				slog.Int("evaluated", trailEntry.EvaluatedCount),
				slog.Int("skipped", trailEntry.SkippedCount),
			)
		}
	}
}
