package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
)

// CacheBackend is the pluggable key-value store holding cache projections of
// rate records, keyed by record id. Two interchangeable implementations exist
// (process-local map and a Postgres-backed table); which one is wired is a
// composition-time decision driven by configuration.
//
// A lookup miss is an empty result (or nil pointer with apperrors.ErrNotFound
// for single lookups), never a transport error. Write failures propagate to
// the caller unchanged.
type CacheBackend interface {
	// FindLatest returns the entry currently flagged latest for the currency.
	FindLatest(ctx context.Context, currencyCode string) (*domain.CacheEntry, error)

	// FindAllLatestFor returns the latest entries for the given currencies,
	// keyed by currency code. Currencies with no latest entry are absent.
	FindAllLatestFor(ctx context.Context, currencyCodes []string) (map[string]domain.CacheEntry, error)

	// FindAllLatest returns every entry currently flagged latest.
	FindAllLatest(ctx context.Context) ([]domain.CacheEntry, error)

	// FindByCurrencyAndDate returns the cached entry for a currency and date.
	FindByCurrencyAndDate(ctx context.Context, currencyCode string, date time.Time) (*domain.CacheEntry, error)

	// FindByCurrenciesAndDate returns cached entries for several currencies on
	// one date.
	FindByCurrenciesAndDate(ctx context.Context, currencyCodes []string, date time.Time) ([]domain.CacheEntry, error)

	// SaveAll upserts entries by rate record id, atomically per batch.
	SaveAll(ctx context.Context, entries []domain.CacheEntry) ([]domain.CacheEntry, error)

	// DeleteWhereNotLatest evicts entries that are no longer flagged latest and
	// were cached before the retention cutoff. Idempotent. Returns the number
	// of evicted entries.
	DeleteWhereNotLatest(ctx context.Context, cachedBefore time.Time) (int64, error)

	// DeleteAll clears the backend.
	DeleteAll(ctx context.Context) error
}
