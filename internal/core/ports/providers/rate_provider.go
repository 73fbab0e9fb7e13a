package providers

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
)

// RateProvider is an upstream source of exchange rates. Several providers may
// feed the same currency and date; the reconciler deduplicates by provider
// name.
type RateProvider interface {
	// Name returns the stable provider name used as the deduplication key.
	Name() string

	// FetchCurrent retrieves the provider's most recent published rates.
	FetchCurrent(ctx context.Context) ([]domain.ProviderRate, error)

	// FetchForDateRange retrieves historical rates with dates inside
	// [fromDate, toDate] inclusive. Days the provider did not publish on
	// (weekends, holidays) are simply absent.
	FetchForDateRange(ctx context.Context, fromDate, toDate time.Time) ([]domain.ProviderRate, error)
}
