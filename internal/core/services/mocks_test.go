package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock RateRecordRepository ---
type MockRateRecordRepository struct {
	mock.Mock
}

func (m *MockRateRecordRepository) FindByDate(ctx context.Context, date time.Time) ([]domain.RateRecord, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateRecord), args.Error(1)
}

func (m *MockRateRecordRepository) FindByCurrencyAndDate(ctx context.Context, currencyCode string, date time.Time) (*domain.RateRecord, error) {
	args := m.Called(ctx, currencyCode, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateRecord), args.Error(1)
}

func (m *MockRateRecordRepository) FindByCurrenciesAndDate(ctx context.Context, currencyCodes []string, date time.Time) ([]domain.RateRecord, error) {
	args := m.Called(ctx, currencyCodes, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateRecord), args.Error(1)
}

func (m *MockRateRecordRepository) FindByCurrencyInAndDateBetween(ctx context.Context, currencyCodes []string, fromDate, toDate time.Time) ([]domain.RateRecord, error) {
	args := m.Called(ctx, currencyCodes, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateRecord), args.Error(1)
}

func (m *MockRateRecordRepository) FindByDateBetween(ctx context.Context, fromDate, toDate time.Time) ([]domain.RateRecord, error) {
	args := m.Called(ctx, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateRecord), args.Error(1)
}

func (m *MockRateRecordRepository) SaveRateRecord(ctx context.Context, record domain.RateRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRateRecordRepository) SaveAllRateRecords(ctx context.Context, records []domain.RateRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// --- Mock TrailRepository ---
type MockTrailRepository struct {
	mock.Mock
}

func (m *MockTrailRepository) SaveTrailEntry(ctx context.Context, entry domain.TrailEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTrailRepository) ListTrailEntries(ctx context.Context, limit int) ([]domain.TrailEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrailEntry), args.Error(1)
}

// --- Mock RateProvider ---
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRateProvider) FetchCurrent(ctx context.Context) ([]domain.ProviderRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProviderRate), args.Error(1)
}

func (m *MockRateProvider) FetchForDateRange(ctx context.Context, fromDate, toDate time.Time) ([]domain.ProviderRate, error) {
	args := m.Called(ctx, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProviderRate), args.Error(1)
}
