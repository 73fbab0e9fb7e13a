package services

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ConversionSvcFacade converts amounts between currencies using the most
// recent known rate, or the rate for an explicit date when one is given.
type ConversionSvcFacade interface {
	// Convert computes the converted amount. A nil date means "use the latest
	// cached rate"; a non-nil date forces an exact-date lookup against the
	// record store. Returns apperrors.ErrNotFound when no rate is available
	// for the requested currency/date.
	Convert(ctx context.Context, fromCurrency, toCurrency string, amount decimal.Decimal, date *time.Time) (*domain.Conversion, error)
}
