package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
)

// RateRecordReader defines read operations for rate record data.
type RateRecordReader interface {
	// FindByDate retrieves all rate records for an exact calendar date.
	FindByDate(ctx context.Context, date time.Time) ([]domain.RateRecord, error)

	// FindByCurrencyAndDate retrieves the single record for a currency on a
	// date. Returns apperrors.ErrNotFound when absent.
	FindByCurrencyAndDate(ctx context.Context, currencyCode string, date time.Time) (*domain.RateRecord, error)

	// FindByCurrenciesAndDate retrieves records for several currencies on one
	// date. Missing currencies are simply absent from the result.
	FindByCurrenciesAndDate(ctx context.Context, currencyCodes []string, date time.Time) ([]domain.RateRecord, error)

	// FindByCurrencyInAndDateBetween retrieves records for the given currencies
	// with a date inside [fromDate, toDate] inclusive.
	FindByCurrencyInAndDateBetween(ctx context.Context, currencyCodes []string, fromDate, toDate time.Time) ([]domain.RateRecord, error)

	// FindByDateBetween retrieves all records with a date inside
	// [fromDate, toDate] inclusive, regardless of currency.
	FindByDateBetween(ctx context.Context, fromDate, toDate time.Time) ([]domain.RateRecord, error)
}

// RateRecordWriter defines write operations for rate record data.
type RateRecordWriter interface {
	// SaveRateRecord upserts a single record. Existing records are matched by
	// id and their version token must match the in-memory one; a mismatch
	// returns apperrors.ErrVersionConflict and writes nothing.
	SaveRateRecord(ctx context.Context, record domain.RateRecord) error

	// SaveAllRateRecords persists a batch. Each record is subject to the same
	// version check as SaveRateRecord; the first conflict aborts the batch and
	// is reported with the offending record id.
	SaveAllRateRecords(ctx context.Context, records []domain.RateRecord) error
}

// RateRecordRepository combines all rate-record repository interfaces.
type RateRecordRepository interface {
	RateRecordReader
	RateRecordWriter
}
