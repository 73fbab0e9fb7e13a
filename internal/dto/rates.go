package dto

import (
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SyncHistoryRequest defines the body of a historical ingestion request.
type SyncHistoryRequest struct {
	FromDate string `json:"fromDate" binding:"required,datetime=2006-01-02"`
	ToDate   string `json:"toDate" binding:"required,datetime=2006-01-02"`
}

// CacheEntryResponse defines the structure for API responses containing a
// cached rate.
type CacheEntryResponse struct {
	RateRecordID string          `json:"rateRecordID"`
	CurrencyCode string          `json:"currencyCode"`
	Date         time.Time       `json:"date"`
	From         decimal.Decimal `json:"from"`
	To           decimal.Decimal `json:"to"`
	IsLatest     bool            `json:"isLatest"`
}

// ToCacheEntryResponse converts a domain.CacheEntry to its response DTO.
func ToCacheEntryResponse(entry *domain.CacheEntry) CacheEntryResponse {
	return CacheEntryResponse{
		RateRecordID: entry.RateRecordID,
		CurrencyCode: entry.CurrencyCode,
		Date:         entry.Date,
		From:         entry.From,
		To:           entry.To,
		IsLatest:     entry.IsLatest,
	}
}

// TrailEntryResponse defines the structure for audit trail API responses.
type TrailEntryResponse struct {
	TrailID        string    `json:"trailID"`
	Operation      string    `json:"operation"`
	State          string    `json:"state"`
	Date           time.Time `json:"date"`
	EvaluatedCount int       `json:"evaluatedCount"`
	SkippedCount   int       `json:"skippedCount"`
	AffectedIDs    []string  `json:"affectedIDs"`
}

// ToTrailEntryResponse converts a domain.TrailEntry to its response DTO.
func ToTrailEntryResponse(entry *domain.TrailEntry) TrailEntryResponse {
	return TrailEntryResponse{
		TrailID:        entry.TrailID,
		Operation:      string(entry.Operation),
		State:          string(entry.State),
		Date:           entry.Date,
		EvaluatedCount: entry.EvaluatedCount,
		SkippedCount:   entry.SkippedCount,
		AffectedIDs:    entry.AffectedIDs,
	}
}

// ToListTrailEntryResponse converts a slice of trail entries to response DTOs.
func ToListTrailEntryResponse(entries []domain.TrailEntry) []TrailEntryResponse {
	responses := make([]TrailEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToTrailEntryResponse(&entries[i])
	}
	return responses
}
