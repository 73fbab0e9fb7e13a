package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	portsprov "github.com/SscSPs/fx_rates_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/fx_rates_app/internal/core/ports/repositories"
	"github.com/SscSPs/fx_rates_app/internal/events"
	"github.com/google/uuid"
)

// versionConflictRetries bounds the per-record read-merge-save loop when an
// optimistic version clash is detected during persistence.
const versionConflictRetries = 3

// ReconcilerService ingests provider-sourced rate batches into the record
// store. The core correctness property: a given (currency, date, provider)
// triple is written at most once, no matter how often the same provider's
// rate for the same day is re-ingested.
type ReconcilerService struct {
	records      portsrepo.RateRecordRepository
	trail        portsrepo.TrailRepository
	provider     portsprov.RateProvider
	bus          *events.RatesUpdatedBus
	baseCurrency string
	now          func() time.Time
}

// NewReconcilerService creates a new ReconcilerService. The provider may be
// nil when only the Ingest entry point is used (e.g. in tests or when rates
// arrive through the API).
func NewReconcilerService(
	records portsrepo.RateRecordRepository,
	trail portsrepo.TrailRepository,
	provider portsprov.RateProvider,
	bus *events.RatesUpdatedBus,
	baseCurrency string,
) *ReconcilerService {
	return &ReconcilerService{
		records:      records,
		trail:        trail,
		provider:     provider,
		bus:          bus,
		baseCurrency: baseCurrency,
		now:          time.Now,
	}
}

// reconcileOutcome accumulates counters across a batch so the trail entry can
// report best-effort numbers even when the batch fails midway.
type reconcileOutcome struct {
	affectedIDs []string
}

// Ingest merges a batch of provider rates into the record store and emits
// exactly one trail entry for the invocation, on the success and the failure
// path alike. On success with at least one written record a rates-updated
// signal is published for the refresher.
func (s *ReconcilerService) Ingest(ctx context.Context, rates []domain.ProviderRate, operation domain.TrailOperation) (*domain.TrailEntry, error) {
	trailEntry := domain.TrailEntry{
		TrailID:   uuid.NewString(),
		Operation: operation,
		Date:      s.now().UTC(),
	}

	outcome, err := s.reconcile(ctx, rates, operation)
	trailEntry.EvaluatedCount = len(outcome.affectedIDs)
	trailEntry.SkippedCount = len(rates) - trailEntry.EvaluatedCount
	trailEntry.AffectedIDs = outcome.affectedIDs

	if err != nil {
		trailEntry.State = domain.TrailStateError
		if saveErr := s.trail.SaveTrailEntry(ctx, trailEntry); saveErr != nil {
			return &trailEntry, fmt.Errorf("%w: %w (trail emission also failed: %v)", apperrors.ErrReconciliation, err, saveErr)
		}
		return &trailEntry, fmt.Errorf("%w: %w", apperrors.ErrReconciliation, err)
	}

	trailEntry.State = domain.TrailStateSuccess
	if saveErr := s.trail.SaveTrailEntry(ctx, trailEntry); saveErr != nil {
		return &trailEntry, fmt.Errorf("failed to emit trail entry: %w", saveErr)
	}

	if trailEntry.EvaluatedCount > 0 && s.bus != nil {
		s.bus.Publish()
	}
	return &trailEntry, nil
}

// SyncCurrent pulls the provider's freshest rates and ingests them as a
// FRESH_SYNC batch.
func (s *ReconcilerService) SyncCurrent(ctx context.Context) (*domain.TrailEntry, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no rate provider configured", apperrors.ErrValidation)
	}
	rates, err := s.provider.FetchCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current rates from %s: %w", s.provider.Name(), err)
	}
	return s.Ingest(ctx, rates, domain.TrailOpFreshSync)
}

// SyncHistory pulls historical rates for [fromDate, toDate] and ingests them
// as a HISTORY_UPDATE batch.
func (s *ReconcilerService) SyncHistory(ctx context.Context, fromDate, toDate time.Time) (*domain.TrailEntry, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no rate provider configured", apperrors.ErrValidation)
	}
	if toDate.Before(fromDate) {
		return nil, fmt.Errorf("%w: toDate precedes fromDate", apperrors.ErrValidation)
	}
	rates, err := s.provider.FetchForDateRange(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical rates from %s: %w", s.provider.Name(), err)
	}
	return s.Ingest(ctx, rates, domain.TrailOpHistoryUpdate)
}

// ListTrail returns recent trail entries, newest first.
func (s *ReconcilerService) ListTrail(ctx context.Context, limit int) ([]domain.TrailEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.trail.ListTrailEntries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trail entries: %w", err)
	}
	return entries, nil
}

// recordKey identifies one (currency, date) record inside a batch.
func recordKey(currencyCode string, date time.Time) string {
	return currencyCode + "|" + date.Format("2006-01-02")
}

func (s *ReconcilerService) reconcile(ctx context.Context, rates []domain.ProviderRate, operation domain.TrailOperation) (reconcileOutcome, error) {
	outcome := reconcileOutcome{}
	if len(rates) == 0 {
		return outcome, fmt.Errorf("%w: empty batch", apperrors.ErrDateResolution)
	}

	// Group by currency and resolve the batch date range. A rate without a
	// usable date poisons the whole batch; silently succeeding on malformed
	// input would hide provider regressions.
	currencySet := make(map[string]struct{})
	var minDate, maxDate time.Time
	for i := range rates {
		if rates[i].Date.IsZero() {
			return outcome, fmt.Errorf("%w: rate for %s has no date", apperrors.ErrDateResolution, rates[i].CurrencyCode)
		}
		day := domain.ToUTCDate(rates[i].Date)
		if minDate.IsZero() || day.Before(minDate) {
			minDate = day
		}
		if maxDate.IsZero() || day.After(maxDate) {
			maxDate = day
		}
		currencySet[rates[i].CurrencyCode] = struct{}{}
	}
	currencies := make([]string, 0, len(currencySet))
	for code := range currencySet {
		currencies = append(currencies, code)
	}

	existing, err := s.loadExisting(ctx, currencies, minDate, maxDate)
	if err != nil {
		return outcome, err
	}

	// Merge incoming rates into existing records or create new ones. Each
	// dirty record remembers which provider rates contributed to it so the
	// version-conflict retry can re-apply them against a re-read record.
	dirty := make(map[string]*domain.RateRecord)
	contributions := make(map[string][]domain.ProviderRate)
	order := make([]string, 0)
	now := s.now().UTC()

	for i := range rates {
		incoming := rates[i]
		day := domain.ToUTCDate(incoming.Date)
		key := recordKey(incoming.CurrencyCode, day)

		record, isDirty := dirty[key]
		if !isDirty {
			if found, ok := existing[key]; ok {
				copied := found
				record = &copied
			}
		}

		if record == nil {
			record = &domain.RateRecord{
				RateRecordID:    uuid.NewString(),
				CurrencyCode:    incoming.CurrencyCode,
				Date:            day,
				RatesByProvider: make(map[string]domain.Rate),
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     string(operation),
					LastUpdatedAt: now,
					LastUpdatedBy: string(operation),
				},
			}
		} else if record.HasProvider(incoming.ProviderName) {
			// Duplicate (currency, date, provider) triple: skip, leave the
			// record untouched.
			continue
		}

		record.PutProviderRate(incoming.ProviderName, incoming.Rate(s.baseCurrency), incoming.Details)
		record.LastUpdatedAt = now
		record.LastUpdatedBy = string(operation)
		if !isDirty {
			dirty[key] = record
			order = append(order, key)
		}
		contributions[key] = append(contributions[key], incoming)
	}

	if len(dirty) == 0 {
		return outcome, nil
	}

	// Persist in one batch write; fall back to a per-record retry loop when a
	// version conflict surfaces so one contended record does not fail the
	// whole batch.
	batch := make([]domain.RateRecord, 0, len(dirty))
	for _, key := range order {
		batch = append(batch, *dirty[key])
	}
	err = s.records.SaveAllRateRecords(ctx, batch)
	if err == nil {
		for _, key := range order {
			outcome.affectedIDs = append(outcome.affectedIDs, dirty[key].RateRecordID)
		}
		return outcome, nil
	}
	if !errors.Is(err, apperrors.ErrVersionConflict) {
		return outcome, fmt.Errorf("failed to persist rate records: %w", err)
	}

	for _, key := range order {
		id, written, saveErr := s.saveWithRetry(ctx, dirty[key], contributions[key], operation)
		if saveErr != nil {
			return outcome, saveErr
		}
		if written {
			outcome.affectedIDs = append(outcome.affectedIDs, id)
		}
	}
	return outcome, nil
}

// loadExisting reads the records the batch may touch: an exact-date lookup
// when the batch covers a single day, otherwise a range query padded by one
// day on both ends to absorb timezone rounding between provider timestamps
// and stored UTC dates.
func (s *ReconcilerService) loadExisting(ctx context.Context, currencies []string, minDate, maxDate time.Time) (map[string]domain.RateRecord, error) {
	var (
		found []domain.RateRecord
		err   error
	)
	if minDate.Equal(maxDate) {
		found, err = s.records.FindByCurrenciesAndDate(ctx, currencies, minDate)
	} else {
		found, err = s.records.FindByCurrencyInAndDateBetween(ctx, currencies, minDate.AddDate(0, 0, -1), maxDate.AddDate(0, 0, 1))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load existing rate records: %w", err)
	}
	existing := make(map[string]domain.RateRecord, len(found))
	for i := range found {
		existing[recordKey(found[i].CurrencyCode, found[i].Date)] = found[i]
	}
	return existing, nil
}

// saveWithRetry persists one record, re-reading and re-merging on version
// conflicts. Returns written=false when, after a re-read, every contribution
// turned out to be a duplicate added by a concurrent batch.
func (s *ReconcilerService) saveWithRetry(ctx context.Context, record *domain.RateRecord, contributed []domain.ProviderRate, operation domain.TrailOperation) (string, bool, error) {
	for attempt := 0; attempt < versionConflictRetries; attempt++ {
		err := s.records.SaveRateRecord(ctx, *record)
		if err == nil {
			return record.RateRecordID, true, nil
		}
		if !errors.Is(err, apperrors.ErrVersionConflict) {
			return "", false, fmt.Errorf("failed to persist rate record %s: %w", record.RateRecordID, err)
		}

		fresh, readErr := s.records.FindByCurrencyAndDate(ctx, record.CurrencyCode, record.Date)
		if readErr != nil {
			return "", false, fmt.Errorf("failed to re-read rate record after version conflict: %w", readErr)
		}
		merged := false
		for i := range contributed {
			if fresh.HasProvider(contributed[i].ProviderName) {
				continue
			}
			fresh.PutProviderRate(contributed[i].ProviderName, contributed[i].Rate(s.baseCurrency), contributed[i].Details)
			merged = true
		}
		if !merged {
			// a concurrent batch already wrote every provider we carried
			return fresh.RateRecordID, false, nil
		}
		fresh.LastUpdatedAt = s.now().UTC()
		fresh.LastUpdatedBy = string(operation)
		record = fresh
	}
	return "", false, fmt.Errorf("%w: record %s still conflicting after %d attempts", apperrors.ErrVersionConflict, record.RateRecordID, versionConflictRetries)
}
