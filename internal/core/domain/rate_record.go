package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a single provider's quotation of a currency against the base
// currency. From is the unit amount the provider quotes (1 for most
// currencies, 100 for e.g. HUF), To is the value of that amount expressed in
// the base currency.
type Rate struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	From             decimal.Decimal `json:"from"`
	To               decimal.Decimal `json:"to"`
}

// PerUnit returns the value of one unit of the quoted currency in the base
// currency (To/From).
func (r Rate) PerUnit() decimal.Decimal {
	if r.From.IsZero() {
		return decimal.Zero
	}
	return r.To.Div(r.From)
}

// RateRecord aggregates all providers' rates for one (currency, date) pair.
// The reconciler is the sole writer; a persisted record always has at least
// one provider entry and at most one entry per provider name.
type RateRecord struct {
	RateRecordID      string                     `json:"rateRecordID"` // Primary Key (UUID)
	CurrencyCode      string                     `json:"currencyCode"`
	Date              time.Time                  `json:"date"` // UTC midnight
	RatesByProvider   map[string]Rate            `json:"ratesByProvider"`
	DetailsByProvider map[string]json.RawMessage `json:"detailsByProvider"`
	Version           int64                      `json:"version"` // optimistic concurrency token
	AuditFields
}

// HasProvider reports whether the record already holds a rate from the named
// provider.
func (r *RateRecord) HasProvider(providerName string) bool {
	_, ok := r.RatesByProvider[providerName]
	return ok
}

// PutProviderRate adds or replaces the named provider's contribution. Callers
// that need at-most-once semantics must check HasProvider first.
func (r *RateRecord) PutProviderRate(providerName string, rate Rate, details json.RawMessage) {
	if r.RatesByProvider == nil {
		r.RatesByProvider = make(map[string]Rate)
	}
	r.RatesByProvider[providerName] = rate
	if len(details) > 0 {
		if r.DetailsByProvider == nil {
			r.DetailsByProvider = make(map[string]json.RawMessage)
		}
		r.DetailsByProvider[providerName] = details
	}
}

// EffectiveRate collapses the per-provider quotations into the single value
// pair the cache projection and the conversion engine work with: the mean of
// the per-unit values across providers, re-expressed against a unit amount of
// one. With a single provider (the common case) this is the provider's own
// quotation normalised to From=1.
func (r *RateRecord) EffectiveRate() Rate {
	if len(r.RatesByProvider) == 0 {
		return Rate{}
	}
	sum := decimal.Zero
	count := int64(0)
	var from, to string
	for _, pr := range r.RatesByProvider {
		sum = sum.Add(pr.PerUnit())
		count++
		from, to = pr.FromCurrencyCode, pr.ToCurrencyCode
	}
	return Rate{
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		From:             decimal.NewFromInt(1),
		To:               sum.Div(decimal.NewFromInt(count)),
	}
}
