package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rates_app/internal/core/ports/repositories"
	"github.com/SscSPs/fx_rates_app/internal/utils/fxmath"
	"github.com/shopspring/decimal"
)

// ConversionService converts amounts between currencies. It selects one of
// three mutually exclusive arithmetic strategies by comparing the from/to
// currencies with the configured base currency, reads the latest-rate cache
// when no date is given and the record store for explicit dates, and applies
// the Decimal32/HALF_EVEN numeric policy from fxmath at every step.
type ConversionService struct {
	cache        portsrepo.CacheBackend
	records      portsrepo.RateRecordReader
	baseCurrency string
}

// NewConversionService creates a new ConversionService.
func NewConversionService(cache portsrepo.CacheBackend, records portsrepo.RateRecordReader, baseCurrency string) *ConversionService {
	return &ConversionService{
		cache:        cache,
		records:      records,
		baseCurrency: strings.ToUpper(baseCurrency),
	}
}

// Convert computes the converted amount for from -> to. A nil date uses the
// latest cached rates; an explicit date forces an exact-date store lookup.
func (s *ConversionService) Convert(ctx context.Context, fromCurrency, toCurrency string, amount decimal.Decimal, date *time.Time) (*domain.Conversion, error) {
	fromCurrency = strings.ToUpper(fromCurrency)
	toCurrency = strings.ToUpper(toCurrency)
	if len(fromCurrency) != 3 || len(toCurrency) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}

	strategy := domain.SelectStrategy(s.baseCurrency, fromCurrency, toCurrency)

	// Identity conversion needs no rate at all; resolving it through the
	// cross-rate formula would demand a quotation for the base currency
	// against itself, which no provider publishes.
	if fromCurrency == toCurrency {
		effective := time.Now().UTC()
		if date != nil {
			effective = domain.ToUTCDate(*date)
		}
		return &domain.Conversion{
			FromCurrencyCode: fromCurrency,
			ToCurrencyCode:   toCurrency,
			Amount:           amount,
			Value:            fxmath.RoundDisplay(amount),
			Strategy:         strategy,
			EffectiveDate:    effective,
		}, nil
	}

	var (
		value     decimal.Decimal
		effective time.Time
		err       error
	)
	switch strategy {
	case domain.StrategyToDefault:
		value, effective, err = s.convertToDefault(ctx, fromCurrency, amount, date)
	case domain.StrategyFromDefault:
		value, effective, err = s.convertFromDefault(ctx, toCurrency, amount, date)
	default:
		value, effective, err = s.convertDifferent(ctx, fromCurrency, toCurrency, amount, date)
	}
	if err != nil {
		return nil, err
	}

	return &domain.Conversion{
		FromCurrencyCode: fromCurrency,
		ToCurrencyCode:   toCurrency,
		Amount:           amount,
		Value:            fxmath.RoundDisplay(value),
		Strategy:         strategy,
		EffectiveDate:    effective,
	}, nil
}

// convertToDefault handles from != base, to == base: the provider already
// prices `from` in the base currency, so a single multiplication suffices.
func (s *ConversionService) convertToDefault(ctx context.Context, fromCurrency string, amount decimal.Decimal, date *time.Time) (decimal.Decimal, time.Time, error) {
	entry, err := s.resolveRate(ctx, fromCurrency, date)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	return fxmath.Mul(entry.To, amount), entry.Date, nil
}

// convertFromDefault handles from == base, to != base: going away from the
// base currency divides by the quotation of the target currency.
func (s *ConversionService) convertFromDefault(ctx context.Context, toCurrency string, amount decimal.Decimal, date *time.Time) (decimal.Decimal, time.Time, error) {
	entry, err := s.resolveRate(ctx, toCurrency, date)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	if entry.To.IsZero() {
		return decimal.Zero, time.Time{}, fmt.Errorf("%w: zero rate stored for %s", apperrors.ErrNotFound, toCurrency)
	}
	return fxmath.Div(fxmath.Mul(entry.From, amount), entry.To), entry.Date, nil
}

// convertDifferent cross-rates through the base currency. Both quotations are
// fetched in one batched lookup.
func (s *ConversionService) convertDifferent(ctx context.Context, fromCurrency, toCurrency string, amount decimal.Decimal, date *time.Time) (decimal.Decimal, time.Time, error) {
	entries, err := s.resolveRates(ctx, []string{fromCurrency, toCurrency}, date)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	fromEntry, ok := entries[fromCurrency]
	if !ok {
		return decimal.Zero, time.Time{}, fmt.Errorf("%w: no rate available for %s", apperrors.ErrNotFound, fromCurrency)
	}
	toEntry, ok := entries[toCurrency]
	if !ok {
		return decimal.Zero, time.Time{}, fmt.Errorf("%w: no rate available for %s", apperrors.ErrNotFound, toCurrency)
	}
	if toEntry.To.IsZero() {
		return decimal.Zero, time.Time{}, fmt.Errorf("%w: zero rate stored for %s", apperrors.ErrNotFound, toCurrency)
	}
	effective := fromEntry.Date
	if toEntry.Date.After(effective) {
		effective = toEntry.Date
	}
	return fxmath.Div(fxmath.Mul(fromEntry.To, amount), toEntry.To), effective, nil
}

// resolveRate fetches one currency's quotation: latest-cache fast path when
// date is nil, exact-date record store path otherwise.
func (s *ConversionService) resolveRate(ctx context.Context, currencyCode string, date *time.Time) (*domain.CacheEntry, error) {
	if date == nil {
		entry, err := s.cache.FindLatest(ctx, currencyCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: no latest rate for %s", apperrors.ErrNotFound, currencyCode)
			}
			return nil, fmt.Errorf("failed to read latest rate for %s: %w", currencyCode, err)
		}
		return entry, nil
	}

	day := domain.ToUTCDate(*date)
	record, err := s.records.FindByCurrencyAndDate(ctx, currencyCode, day)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no rate for %s on %s", apperrors.ErrNotFound, currencyCode, day.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to read rate for %s: %w", currencyCode, err)
	}
	entry := domain.NewCacheEntry(record, false, time.Now().UTC())
	return &entry, nil
}

// resolveRates is the batched variant used by the cross-rate strategy.
func (s *ConversionService) resolveRates(ctx context.Context, currencyCodes []string, date *time.Time) (map[string]domain.CacheEntry, error) {
	if date == nil {
		entries, err := s.cache.FindAllLatestFor(ctx, currencyCodes)
		if err != nil {
			return nil, fmt.Errorf("failed to read latest rates: %w", err)
		}
		return entries, nil
	}

	day := domain.ToUTCDate(*date)
	records, err := s.records.FindByCurrenciesAndDate(ctx, currencyCodes, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates for %s: %w", day.Format("2006-01-02"), err)
	}
	now := time.Now().UTC()
	entries := make(map[string]domain.CacheEntry, len(records))
	for i := range records {
		entries[records[i].CurrencyCode] = domain.NewCacheEntry(&records[i], false, now)
	}
	return entries, nil
}
