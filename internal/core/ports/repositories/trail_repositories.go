package repositories

import (
	"context"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
)

// TrailWriter defines write operations for the audit trail. Trail entries are
// append-only; there is no update or delete.
type TrailWriter interface {
	// SaveTrailEntry persists a new trail entry.
	SaveTrailEntry(ctx context.Context, entry domain.TrailEntry) error
}

// TrailReader defines read operations for the audit trail.
type TrailReader interface {
	// ListTrailEntries retrieves the most recent entries, newest first.
	ListTrailEntries(ctx context.Context, limit int) ([]domain.TrailEntry, error)
}

// TrailRepository combines all trail-related repository interfaces.
type TrailRepository interface {
	TrailWriter
	TrailReader
}
