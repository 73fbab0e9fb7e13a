package services

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
)

// ReconcilerSvcFacade ingests provider-sourced rate batches into the record
// store without duplicating provider contributions, and exposes the audit
// trail of past ingestions.
type ReconcilerSvcFacade interface {
	// Ingest merges a batch of provider rates. Exactly one trail entry is
	// emitted per call, on success and on failure alike. A given
	// (currency, date, provider) triple is written at most once, so
	// re-ingesting the same batch is a no-op with skippedCount = batch size.
	Ingest(ctx context.Context, rates []domain.ProviderRate, operation domain.TrailOperation) (*domain.TrailEntry, error)

	// SyncCurrent pulls the providers' freshest rates and ingests them as a
	// FRESH_SYNC batch.
	SyncCurrent(ctx context.Context) (*domain.TrailEntry, error)

	// SyncHistory pulls historical rates for [fromDate, toDate] and ingests
	// them as a HISTORY_UPDATE batch.
	SyncHistory(ctx context.Context, fromDate, toDate time.Time) (*domain.TrailEntry, error)

	// ListTrail returns recent trail entries, newest first.
	ListTrail(ctx context.Context, limit int) ([]domain.TrailEntry, error)
}
