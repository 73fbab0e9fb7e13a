package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	"github.com/SscSPs/fx_rates_app/internal/core/services"
	"github.com/SscSPs/fx_rates_app/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReconcilerServiceTestSuite struct {
	suite.Suite
	mockRecords *MockRateRecordRepository
	mockTrail   *MockTrailRepository
	mockProv    *MockRateProvider
	bus         *events.RatesUpdatedBus
	service     *services.ReconcilerService
}

func (s *ReconcilerServiceTestSuite) SetupTest() {
	s.mockRecords = new(MockRateRecordRepository)
	s.mockTrail = new(MockTrailRepository)
	s.mockProv = new(MockRateProvider)
	s.bus = events.NewRatesUpdatedBus()
	s.service = services.NewReconcilerService(s.mockRecords, s.mockTrail, s.mockProv, s.bus, "PLN")
}

func providerRate(provider, currency string, date time.Time, to string) domain.ProviderRate {
	return domain.ProviderRate{
		ProviderName: provider,
		CurrencyCode: currency,
		Date:         date,
		From:         decimal.NewFromInt(1),
		To:           decimal.RequireFromString(to),
	}
}

func (s *ReconcilerServiceTestSuite) TestIngest_NewRecords() {
	ctx := context.Background()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rates := []domain.ProviderRate{
		providerRate("nbp", "EUR", day, "4.3434"),
		providerRate("nbp", "USD", day, "3.9687"),
	}

	s.mockRecords.On("FindByCurrenciesAndDate", ctx, mock.Anything, day).
		Return([]domain.RateRecord{}, nil).Once()
	s.mockRecords.On("SaveAllRateRecords", ctx, mock.MatchedBy(func(batch []domain.RateRecord) bool {
		return len(batch) == 2
	})).Return(nil).Once()
	s.mockTrail.On("SaveTrailEntry", ctx, mock.MatchedBy(func(e domain.TrailEntry) bool {
		return e.State == domain.TrailStateSuccess && e.EvaluatedCount == 2 && e.SkippedCount == 0
	})).Return(nil).Once()

	signals := s.bus.Subscribe()

	entry, err := s.service.Ingest(ctx, rates, domain.TrailOpFreshSync)

	s.Require().NoError(err)
	s.Require().NotNil(entry)
	s.Equal(domain.TrailOpFreshSync, entry.Operation)
	s.Equal(2, entry.EvaluatedCount)
	s.Zero(entry.SkippedCount)
	s.Len(entry.AffectedIDs, 2)

	select {
	case <-signals:
	default:
		s.Fail("expected a rates-updated signal after a successful write")
	}

	s.mockRecords.AssertExpectations(s.T())
	s.mockTrail.AssertExpectations(s.T())
}

func (s *ReconcilerServiceTestSuite) TestIngest_ReIngestionIsNoOp() {
	ctx := context.Background()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rates := []domain.ProviderRate{
		providerRate("nbp", "EUR", day, "4.3434"),
		providerRate("nbp", "USD", day, "3.9687"),
	}

	existing := []domain.RateRecord{
		existingRecord("rec-eur", "EUR", day, "nbp", "4.3434"),
		existingRecord("rec-usd", "USD", day, "nbp", "3.9687"),
	}
	s.mockRecords.On("FindByCurrenciesAndDate", ctx, mock.Anything, day).
		Return(existing, nil).Once()
	s.mockTrail.On("SaveTrailEntry", ctx, mock.MatchedBy(func(e domain.TrailEntry) bool {
		return e.State == domain.TrailStateSuccess && e.EvaluatedCount == 0 && e.SkippedCount == 2
	})).Return(nil).Once()

	signals := s.bus.Subscribe()

	entry, err := s.service.Ingest(ctx, rates, domain.TrailOpFreshSync)

	s.Require().NoError(err)
	s.Zero(entry.EvaluatedCount)
	s.Equal(2, entry.SkippedCount)
	s.Empty(entry.AffectedIDs)

	select {
	case <-signals:
		s.Fail("no signal expected when nothing was written")
	default:
	}

	s.mockRecords.AssertNotCalled(s.T(), "SaveAllRateRecords", mock.Anything, mock.Anything)
	s.mockTrail.AssertExpectations(s.T())
}

func (s *ReconcilerServiceTestSuite) TestIngest_MergesSecondProviderIntoExistingRecord() {
	ctx := context.Background()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rates := []domain.ProviderRate{
		providerRate("ecb", "EUR", day, "4.3500"),
	}

	existing := []domain.RateRecord{
		existingRecord("rec-eur", "EUR", day, "nbp", "4.3434"),
	}
	s.mockRecords.On("FindByCurrenciesAndDate", ctx, mock.Anything, day).
		Return(existing, nil).Once()
	s.mockRecords.On("SaveAllRateRecords", ctx, mock.MatchedBy(func(batch []domain.RateRecord) bool {
		return len(batch) == 1 &&
			batch[0].RateRecordID == "rec-eur" &&
			batch[0].Version == 1 &&
			batch[0].HasProvider("nbp") && batch[0].HasProvider("ecb")
	})).Return(nil).Once()
	s.mockTrail.On("SaveTrailEntry", ctx, mock.Anything).Return(nil).Once()

	entry, err := s.service.Ingest(ctx, rates, domain.TrailOpHistoryUpdate)

	s.Require().NoError(err)
	s.Equal(1, entry.EvaluatedCount)
	s.Equal([]string{"rec-eur"}, entry.AffectedIDs)
	s.mockRecords.AssertExpectations(s.T())
}

func (s *ReconcilerServiceTestSuite) TestIngest_EmptyBatchFailsWithErrorTrail() {
	ctx := context.Background()

	s.mockTrail.On("SaveTrailEntry", ctx, mock.MatchedBy(func(e domain.TrailEntry) bool {
		return e.State == domain.TrailStateError && e.EvaluatedCount == 0
	})).Return(nil).Once()

	entry, err := s.service.Ingest(ctx, nil, domain.TrailOpFreshSync)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrReconciliation)
	s.ErrorIs(err, apperrors.ErrDateResolution)
	s.Require().NotNil(entry)
	s.Equal(domain.TrailStateError, entry.State)
	s.mockTrail.AssertExpectations(s.T())
}

func (s *ReconcilerServiceTestSuite) TestIngest_StoreFailureStillEmitsTrail() {
	ctx := context.Background()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rates := []domain.ProviderRate{providerRate("nbp", "EUR", day, "4.3434")}

	s.mockRecords.On("FindByCurrenciesAndDate", ctx, mock.Anything, day).
		Return([]domain.RateRecord{}, nil).Once()
	s.mockRecords.On("SaveAllRateRecords", ctx, mock.Anything).
		Return(assert.AnError).Once()
	s.mockTrail.On("SaveTrailEntry", ctx, mock.MatchedBy(func(e domain.TrailEntry) bool {
		return e.State == domain.TrailStateError
	})).Return(nil).Once()

	_, err := s.service.Ingest(ctx, rates, domain.TrailOpFreshSync)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrReconciliation)
	s.mockTrail.AssertExpectations(s.T())
}

func (s *ReconcilerServiceTestSuite) TestIngest_VersionConflictRetriesPerRecord() {
	ctx := context.Background()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rates := []domain.ProviderRate{providerRate("nbp", "EUR", day, "4.3434")}

	s.mockRecords.On("FindByCurrenciesAndDate", ctx, mock.Anything, day).
		Return([]domain.RateRecord{}, nil).Once()
	// batch write clashes with a concurrent writer
	s.mockRecords.On("SaveAllRateRecords", ctx, mock.Anything).
		Return(apperrors.ErrVersionConflict).Once()
	// first per-record save clashes too; after the re-read the merge succeeds
	s.mockRecords.On("SaveRateRecord", ctx, mock.Anything).
		Return(apperrors.ErrVersionConflict).Once()
	fresh := existingRecord("rec-eur", "EUR", day, "ecb", "4.3500")
	fresh.Version = 2
	s.mockRecords.On("FindByCurrencyAndDate", ctx, "EUR", day).
		Return(&fresh, nil).Once()
	s.mockRecords.On("SaveRateRecord", ctx, mock.MatchedBy(func(r domain.RateRecord) bool {
		return r.RateRecordID == "rec-eur" && r.Version == 2 && r.HasProvider("nbp") && r.HasProvider("ecb")
	})).Return(nil).Once()
	s.mockTrail.On("SaveTrailEntry", ctx, mock.Anything).Return(nil).Once()

	entry, err := s.service.Ingest(ctx, rates, domain.TrailOpFreshSync)

	s.Require().NoError(err)
	s.Equal(1, entry.EvaluatedCount)
	s.Equal([]string{"rec-eur"}, entry.AffectedIDs)
	s.mockRecords.AssertExpectations(s.T())
}

func (s *ReconcilerServiceTestSuite) TestIngest_ConflictResolvedAsDuplicateCountsAsSkipped() {
	ctx := context.Background()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rates := []domain.ProviderRate{providerRate("nbp", "EUR", day, "4.3434")}

	s.mockRecords.On("FindByCurrenciesAndDate", ctx, mock.Anything, day).
		Return([]domain.RateRecord{}, nil).Once()
	s.mockRecords.On("SaveAllRateRecords", ctx, mock.Anything).
		Return(apperrors.ErrVersionConflict).Once()
	s.mockRecords.On("SaveRateRecord", ctx, mock.Anything).
		Return(apperrors.ErrVersionConflict).Once()
	// the concurrent writer already carried our provider's rate
	fresh := existingRecord("rec-eur", "EUR", day, "nbp", "4.3434")
	fresh.Version = 2
	s.mockRecords.On("FindByCurrencyAndDate", ctx, "EUR", day).
		Return(&fresh, nil).Once()
	s.mockTrail.On("SaveTrailEntry", ctx, mock.MatchedBy(func(e domain.TrailEntry) bool {
		return e.State == domain.TrailStateSuccess && e.EvaluatedCount == 0 && e.SkippedCount == 1
	})).Return(nil).Once()

	entry, err := s.service.Ingest(ctx, rates, domain.TrailOpFreshSync)

	s.Require().NoError(err)
	s.Zero(entry.EvaluatedCount)
	s.Equal(1, entry.SkippedCount)
	s.mockRecords.AssertExpectations(s.T())
	s.mockTrail.AssertExpectations(s.T())
}

func (s *ReconcilerServiceTestSuite) TestSyncHistory_RejectsInvertedRange() {
	ctx := context.Background()
	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -5)

	_, err := s.service.SyncHistory(ctx, from, to)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockProv.AssertNotCalled(s.T(), "FetchForDateRange", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReconcilerServiceTestSuite) TestSyncCurrent_FetchesAndIngests() {
	ctx := context.Background()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rates := []domain.ProviderRate{providerRate("nbp", "EUR", day, "4.3434")}

	s.mockProv.On("FetchCurrent", ctx).Return(rates, nil).Once()
	s.mockRecords.On("FindByCurrenciesAndDate", ctx, mock.Anything, day).
		Return([]domain.RateRecord{}, nil).Once()
	s.mockRecords.On("SaveAllRateRecords", ctx, mock.Anything).Return(nil).Once()
	s.mockTrail.On("SaveTrailEntry", ctx, mock.MatchedBy(func(e domain.TrailEntry) bool {
		return e.Operation == domain.TrailOpFreshSync && e.State == domain.TrailStateSuccess
	})).Return(nil).Once()

	entry, err := s.service.SyncCurrent(ctx)

	s.Require().NoError(err)
	s.Equal(1, entry.EvaluatedCount)
	s.mockProv.AssertExpectations(s.T())
}

func existingRecord(id, currency string, date time.Time, provider, to string) domain.RateRecord {
	return domain.RateRecord{
		RateRecordID: id,
		CurrencyCode: currency,
		Date:         date,
		Version:      1,
		RatesByProvider: map[string]domain.Rate{
			provider: {
				FromCurrencyCode: currency,
				ToCurrencyCode:   "PLN",
				From:             decimal.NewFromInt(1),
				To:               decimal.RequireFromString(to),
			},
		},
	}
}

func TestReconcilerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerServiceTestSuite))
}
