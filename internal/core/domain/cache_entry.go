package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CacheEntry is a denormalised, read-optimised projection of one RateRecord.
// It references the record by id only; the cache may be rebuilt at any time
// without the record knowing. At most one entry per currency is flagged latest
// at a time, but historical non-latest entries stay cached for fast
// date-specific lookups until eviction.
type CacheEntry struct {
	RateRecordID string          `json:"rateRecordID"`
	CurrencyCode string          `json:"currencyCode"`
	Date         time.Time       `json:"date"` // UTC midnight
	From         decimal.Decimal `json:"from"`
	To           decimal.Decimal `json:"to"`
	IsLatest     bool            `json:"isLatest"`
	CachedAt     time.Time       `json:"cachedAt"`
}

// NewCacheEntry projects a rate record into its cache representation.
func NewCacheEntry(record *RateRecord, isLatest bool, now time.Time) CacheEntry {
	eff := record.EffectiveRate()
	return CacheEntry{
		RateRecordID: record.RateRecordID,
		CurrencyCode: record.CurrencyCode,
		Date:         record.Date,
		From:         eff.From,
		To:           eff.To,
		IsLatest:     isLatest,
		CachedAt:     now,
	}
}
