package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/adapters/cache/memory"
	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, currency string, date time.Time, isLatest bool, cachedAt time.Time) domain.CacheEntry {
	return domain.CacheEntry{
		RateRecordID: id,
		CurrencyCode: currency,
		Date:         date,
		From:         decimal.NewFromInt(1),
		To:           decimal.RequireFromString("4.30"),
		IsLatest:     isLatest,
		CachedAt:     cachedAt,
	}
}

func TestMemoryCacheBackend_LatestLookups(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewCacheBackend()
	now := time.Now().UTC()
	day := domain.ToUTCDate(now)

	_, err := backend.SaveAll(ctx, []domain.CacheEntry{
		entry("r-eur", "EUR", day, true, now),
		entry("r-usd", "USD", day, true, now),
		entry("r-eur-old", "EUR", day.AddDate(0, 0, -3), false, now),
	})
	require.NoError(t, err)

	latest, err := backend.FindLatest(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "r-eur", latest.RateRecordID)

	_, err = backend.FindLatest(ctx, "GBP")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	byCurrency, err := backend.FindAllLatestFor(ctx, []string{"EUR", "USD", "GBP"})
	require.NoError(t, err)
	assert.Len(t, byCurrency, 2)
	assert.Equal(t, "r-usd", byCurrency["USD"].RateRecordID)

	all, err := backend.FindAllLatest(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryCacheBackend_DateLookups(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewCacheBackend()
	now := time.Now().UTC()
	day := domain.ToUTCDate(now)
	older := day.AddDate(0, 0, -5)

	_, err := backend.SaveAll(ctx, []domain.CacheEntry{
		entry("r-eur", "EUR", day, true, now),
		entry("r-eur-old", "EUR", older, false, now),
	})
	require.NoError(t, err)

	found, err := backend.FindByCurrencyAndDate(ctx, "EUR", older)
	require.NoError(t, err)
	assert.Equal(t, "r-eur-old", found.RateRecordID)

	_, err = backend.FindByCurrencyAndDate(ctx, "EUR", day.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	batch, err := backend.FindByCurrenciesAndDate(ctx, []string{"EUR", "USD"}, day)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}

func TestMemoryCacheBackend_SaveAllUpsertsByID(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewCacheBackend()
	now := time.Now().UTC()
	day := domain.ToUTCDate(now)

	_, err := backend.SaveAll(ctx, []domain.CacheEntry{entry("r-eur", "EUR", day, true, now)})
	require.NoError(t, err)

	demoted := entry("r-eur", "EUR", day, false, now)
	_, err = backend.SaveAll(ctx, []domain.CacheEntry{demoted})
	require.NoError(t, err)

	all, err := backend.FindAllLatest(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryCacheBackend_EvictionIsScopedAndIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewCacheBackend()
	now := time.Now().UTC()
	day := domain.ToUTCDate(now)

	_, err := backend.SaveAll(ctx, []domain.CacheEntry{
		entry("r-latest", "EUR", day, true, now.Add(-48*time.Hour)),
		entry("r-stale", "EUR", day.AddDate(0, 0, -2), false, now.Add(-48*time.Hour)),
		entry("r-recent", "EUR", day.AddDate(0, 0, -1), false, now),
	})
	require.NoError(t, err)

	cutoff := now.Add(-24 * time.Hour)
	evicted, err := backend.DeleteWhereNotLatest(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), evicted)

	// latest entries survive eviction regardless of age
	latest, err := backend.FindLatest(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "r-latest", latest.RateRecordID)

	evicted, err = backend.DeleteWhereNotLatest(ctx, cutoff)
	require.NoError(t, err)
	assert.Zero(t, evicted)

	require.NoError(t, backend.DeleteAll(ctx))
	all, err := backend.FindAllLatest(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
