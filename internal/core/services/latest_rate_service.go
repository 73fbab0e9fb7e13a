package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rates_app/internal/core/ports/repositories"
	"github.com/google/uuid"
)

// LatestRateService keeps the cache backend holding an up-to-date "latest"
// entry for every required currency, even when the record store has nothing
// for today: the refresh walks backward over the store in fixed-size date
// windows until it finds any records, then publishes the most recent date
// group as the authoritative latest snapshot.
type LatestRateService struct {
	records            portsrepo.RateRecordRepository
	cache              portsrepo.CacheBackend
	trail              portsrepo.TrailWriter
	requiredCurrencies []string
	strideDays         int
	historyStart       time.Time
	retention          time.Duration
	now                func() time.Time
}

// NewLatestRateService creates a new LatestRateService.
func NewLatestRateService(
	records portsrepo.RateRecordRepository,
	cache portsrepo.CacheBackend,
	trail portsrepo.TrailWriter,
	requiredCurrencies []string,
	strideDays int,
	historyStart time.Time,
	retention time.Duration,
) *LatestRateService {
	if strideDays <= 0 {
		strideDays = 10
	}
	return &LatestRateService{
		records:            records,
		cache:              cache,
		trail:              trail,
		requiredCurrencies: requiredCurrencies,
		strideDays:         strideDays,
		historyStart:       domain.ToUTCDate(historyStart),
		retention:          retention,
		now:                time.Now,
	}
}

// GetLatest returns the latest cached entry for a currency. A cache miss
// triggers one refresh pass before giving up, so the first read after a cold
// start still gets an answer when any history exists.
func (s *LatestRateService) GetLatest(ctx context.Context, currencyCode string) (*domain.CacheEntry, error) {
	entry, err := s.cache.FindLatest(ctx, currencyCode)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to read latest cache entry for %s: %w", currencyCode, err)
	}

	if refreshErr := s.RefreshLatest(ctx); refreshErr != nil {
		return nil, fmt.Errorf("latest rate unavailable for %s: %w", currencyCode, refreshErr)
	}
	entry, err = s.cache.FindLatest(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("no latest rate for %s after refresh: %w", currencyCode, err)
	}
	return entry, nil
}

// GetAllLatest returns the latest entries for the given currencies (all
// required currencies when the slice is empty), keyed by currency code.
func (s *LatestRateService) GetAllLatest(ctx context.Context, currencyCodes []string) (map[string]domain.CacheEntry, error) {
	if len(currencyCodes) == 0 {
		currencyCodes = s.requiredCurrencies
	}
	entries, err := s.cache.FindAllLatestFor(ctx, currencyCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest cache entries: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	if refreshErr := s.RefreshLatest(ctx); refreshErr != nil {
		return nil, fmt.Errorf("latest rates unavailable: %w", refreshErr)
	}
	entries, err = s.cache.FindAllLatestFor(ctx, currencyCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest cache entries after refresh: %w", err)
	}
	return entries, nil
}

// GetByDate returns the cached entry for a currency on an exact date, reading
// through to the record store on a miss. The read-through projection is cached
// as a non-latest entry, so repeat lookups stay off the store until eviction.
func (s *LatestRateService) GetByDate(ctx context.Context, currencyCode string, date time.Time) (*domain.CacheEntry, error) {
	date = domain.ToUTCDate(date)
	entry, err := s.cache.FindByCurrencyAndDate(ctx, currencyCode, date)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to read cache entry for %s on %s: %w", currencyCode, date.Format("2006-01-02"), err)
	}

	record, err := s.records.FindByCurrencyAndDate(ctx, currencyCode, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("no rate for %s on %s: %w", currencyCode, date.Format("2006-01-02"), apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load rate record for %s on %s: %w", currencyCode, date.Format("2006-01-02"), err)
	}

	projected := domain.NewCacheEntry(record, false, s.now().UTC())
	if _, err := s.cache.SaveAll(ctx, []domain.CacheEntry{projected}); err != nil {
		return nil, fmt.Errorf("failed to cache rate for %s on %s: %w", currencyCode, date.Format("2006-01-02"), err)
	}
	return &projected, nil
}

// RefreshLatest runs one refresh pass and emits a LATEST_REFRESH trail entry
// recording the outcome. When the fresh snapshot's record id set matches what
// the cache already flags latest, the pass is a no-op and writes nothing.
func (s *LatestRateService) RefreshLatest(ctx context.Context) error {
	trailEntry := domain.TrailEntry{
		TrailID:   uuid.NewString(),
		Operation: domain.TrailOpLatestRefresh,
		Date:      s.now().UTC(),
	}

	written, skipped, affected, err := s.refresh(ctx)
	trailEntry.EvaluatedCount = written
	trailEntry.SkippedCount = skipped
	trailEntry.AffectedIDs = affected

	if err != nil {
		trailEntry.State = domain.TrailStateError
		if saveErr := s.trail.SaveTrailEntry(ctx, trailEntry); saveErr != nil {
			return fmt.Errorf("refresh failed (%w) and trail emission failed: %w", err, saveErr)
		}
		return err
	}

	trailEntry.State = domain.TrailStateSuccess
	if saveErr := s.trail.SaveTrailEntry(ctx, trailEntry); saveErr != nil {
		return fmt.Errorf("failed to emit refresh trail entry: %w", saveErr)
	}
	return nil
}

func (s *LatestRateService) refresh(ctx context.Context) (written, skipped int, affected []string, err error) {
	snapshot, err := s.findLatestSnapshot(ctx)
	if err != nil {
		return 0, 0, nil, err
	}

	current, err := s.cache.FindAllLatest(ctx)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to read current latest cache entries: %w", err)
	}

	// Skip the write when the id sets are identical. This check is a
	// best-effort de-duplication against churn, not a lock; a concurrent
	// reconciliation may still interleave, in which case its own published
	// signal re-fires the refresher.
	if sameIDSet(snapshot, current) {
		return 0, len(snapshot), nil, nil
	}

	now := s.now().UTC()
	batch := make([]domain.CacheEntry, 0, len(current)+len(snapshot))
	for i := range current {
		if rec, ok := snapshot[current[i].CurrencyCode]; ok && rec.RateRecordID == current[i].RateRecordID {
			// same record id: the fresh projection below overwrites it
			continue
		}
		demoted := current[i]
		demoted.IsLatest = false
		batch = append(batch, demoted)
	}
	for _, record := range snapshot {
		record := record
		entry := domain.NewCacheEntry(&record, true, now)
		batch = append(batch, entry)
		affected = append(affected, record.RateRecordID)
	}

	// Single batched write keeps the cache from exposing a half-demoted
	// state to readers.
	if _, err := s.cache.SaveAll(ctx, batch); err != nil {
		return 0, 0, nil, fmt.Errorf("failed to publish latest cache entries: %w", err)
	}
	return len(snapshot), 0, affected, nil
}

// findLatestSnapshot locates the authoritative latest record per currency.
// It first tries today's exact date, then widens backward in strideDays-wide
// windows until any records turn up or the configured history start is
// passed.
func (s *LatestRateService) findLatestSnapshot(ctx context.Context) (map[string]domain.RateRecord, error) {
	today := domain.ToUTCDate(s.now())

	found, err := s.records.FindByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate records for %s: %w", today.Format("2006-01-02"), err)
	}

	windowEnd := today
	for len(found) == 0 {
		if windowEnd.Before(s.historyStart) {
			return nil, fmt.Errorf("%w: searched back to %s", apperrors.ErrNoHistory, s.historyStart.Format("2006-01-02"))
		}
		windowStart := windowEnd.AddDate(0, 0, -s.strideDays)
		found, err = s.records.FindByCurrencyInAndDateBetween(ctx, s.requiredCurrencies, windowStart, windowEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate records in [%s, %s]: %w",
				windowStart.Format("2006-01-02"), windowEnd.Format("2006-01-02"), err)
		}
		windowEnd = windowStart
	}

	// Group by date and keep only the most recent date group: one record per
	// currency, the window may span several published days.
	var maxDate time.Time
	for i := range found {
		if found[i].Date.After(maxDate) {
			maxDate = found[i].Date
		}
	}
	snapshot := make(map[string]domain.RateRecord)
	for i := range found {
		if found[i].Date.Equal(maxDate) {
			snapshot[found[i].CurrencyCode] = found[i]
		}
	}
	return snapshot, nil
}

// EvictStale removes non-latest cache entries older than the retention
// window. Runs on the background schedule; idempotent.
func (s *LatestRateService) EvictStale(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.retention)
	evicted, err := s.cache.DeleteWhereNotLatest(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to evict stale cache entries: %w", err)
	}
	return evicted, nil
}

func sameIDSet(snapshot map[string]domain.RateRecord, current []domain.CacheEntry) bool {
	if len(snapshot) != len(current) {
		return false
	}
	ids := make(map[string]struct{}, len(snapshot))
	for _, record := range snapshot {
		ids[record.RateRecordID] = struct{}{}
	}
	for i := range current {
		if _, ok := ids[current[i].RateRecordID]; !ok {
			return false
		}
	}
	return true
}
