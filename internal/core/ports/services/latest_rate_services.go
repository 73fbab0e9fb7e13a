package services

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
)

// LatestRateReaderSvc defines read access to the latest-rate cache.
type LatestRateReaderSvc interface {
	// GetLatest returns the latest cached entry for a currency.
	GetLatest(ctx context.Context, currencyCode string) (*domain.CacheEntry, error)

	// GetAllLatest returns the latest cached entries for the given currencies,
	// keyed by currency code. An empty slice means "all configured currencies".
	GetAllLatest(ctx context.Context, currencyCodes []string) (map[string]domain.CacheEntry, error)

	// GetByDate returns the cached entry for a currency on an exact date,
	// reading through to the record store on a cache miss.
	GetByDate(ctx context.Context, currencyCode string, date time.Time) (*domain.CacheEntry, error)
}

// LatestRateRefresherSvc recomputes which records are latest and republishes
// them into the cache backend.
type LatestRateRefresherSvc interface {
	// RefreshLatest runs one refresh pass: widening backward search over the
	// record store, no-op when the latest id set is unchanged, batched
	// demote-and-upsert otherwise. Returns apperrors.ErrNoHistory when the
	// store holds no records inside the configured lookback window.
	RefreshLatest(ctx context.Context) error

	// EvictStale removes non-latest cache entries older than the configured
	// retention. Scheduled externally; idempotent.
	EvictStale(ctx context.Context) (int64, error)
}

// LatestRateSvcFacade combines read and refresh access to the latest-rate
// cache.
type LatestRateSvcFacade interface {
	LatestRateReaderSvc
	LatestRateRefresherSvc
}
