package dto

import (
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ConvertRequest defines the query parameters of a conversion call. Date is
// optional; when empty the latest cached rate is used.
type ConvertRequest struct {
	From   string          `form:"from" binding:"required,len=3,uppercase"`
	To     string          `form:"to" binding:"required,len=3,uppercase"`
	Amount decimal.Decimal `form:"amount" binding:"required"`
	Date   string          `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ConversionResponse defines the structure for conversion API responses.
type ConversionResponse struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	Amount        decimal.Decimal `json:"amount"`
	Value         decimal.Decimal `json:"value"`
	EffectiveDate time.Time       `json:"effectiveDate"`
}

// ToConversionResponse converts a domain.Conversion to its response DTO. The
// selected strategy is deliberately not exposed; it is an internal detail.
func ToConversionResponse(c *domain.Conversion) ConversionResponse {
	return ConversionResponse{
		From:          c.FromCurrencyCode,
		To:            c.ToCurrencyCode,
		Amount:        c.Amount,
		Value:         c.Value,
		EffectiveDate: c.EffectiveDate,
	}
}
