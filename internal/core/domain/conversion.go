package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionStrategy identifies the arithmetic path used to convert between
// two currencies when only provider-to-base rates exist.
type ConversionStrategy string

const (
	// StrategyFromDefault converts away from the base currency.
	StrategyFromDefault ConversionStrategy = "FROM_DEFAULT"
	// StrategyToDefault converts into the base currency.
	StrategyToDefault ConversionStrategy = "TO_DEFAULT"
	// StrategyDifferent cross-rates through the base currency.
	StrategyDifferent ConversionStrategy = "DIFFERENT"
)

// SelectStrategy picks the conversion strategy for a from/to pair against the
// configured base currency. Pure function; the three outcomes are mutually
// exclusive and exhaustive.
func SelectStrategy(baseCurrency, fromCurrency, toCurrency string) ConversionStrategy {
	switch {
	case fromCurrency == baseCurrency && toCurrency != baseCurrency:
		return StrategyFromDefault
	case fromCurrency != baseCurrency && toCurrency == baseCurrency:
		return StrategyToDefault
	default:
		return StrategyDifferent
	}
}

// Conversion is the outcome of one currency conversion.
type Conversion struct {
	FromCurrencyCode string             `json:"fromCurrencyCode"`
	ToCurrencyCode   string             `json:"toCurrencyCode"`
	Amount           decimal.Decimal    `json:"amount"`
	Value            decimal.Decimal    `json:"value"` // display-rounded, 2 dp
	Strategy         ConversionStrategy `json:"strategy"`
	EffectiveDate    time.Time          `json:"effectiveDate"` // date of the rate(s) used
}
