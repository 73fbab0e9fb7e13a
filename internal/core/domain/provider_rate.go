package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ProviderRate is one provider-sourced quotation as delivered by a rate
// provider adapter, before reconciliation into the record store.
type ProviderRate struct {
	ProviderName string          `json:"providerName"`
	CurrencyCode string          `json:"currencyCode"`
	Date         time.Time       `json:"date"`
	From         decimal.Decimal `json:"from"` // quoted unit amount, usually 1
	To           decimal.Decimal `json:"to"`   // value in the base currency
	Details      json.RawMessage `json:"details,omitempty"`
}

// Rate converts the provider quotation into the stored rate shape for the
// given base currency.
func (p ProviderRate) Rate(baseCurrency string) Rate {
	return Rate{
		FromCurrencyCode: p.CurrencyCode,
		ToCurrencyCode:   baseCurrency,
		From:             p.From,
		To:               p.To,
	}
}
