package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTrailRepository implements repositories.TrailRepository using pgxpool.
// The table is append-only; no update or delete statements exist here.
type PgxTrailRepository struct {
	db *pgxpool.Pool
}

// NewTrailRepository creates a new PgxTrailRepository.
func NewTrailRepository(db *pgxpool.Pool) *PgxTrailRepository {
	return &PgxTrailRepository{db: db}
}

// SaveTrailEntry persists a new trail entry.
func (r *PgxTrailRepository) SaveTrailEntry(ctx context.Context, entry domain.TrailEntry) error {
	query := `
		INSERT INTO trail_entries (
			trail_id, operation, state, date, evaluated_count, skipped_count, affected_ids
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		entry.TrailID, string(entry.Operation), string(entry.State), entry.Date,
		entry.EvaluatedCount, entry.SkippedCount, entry.AffectedIDs,
	)
	if err != nil {
		return fmt.Errorf("error inserting trail entry: %w", err)
	}
	return nil
}

// ListTrailEntries retrieves the most recent entries, newest first.
func (r *PgxTrailRepository) ListTrailEntries(ctx context.Context, limit int) ([]domain.TrailEntry, error) {
	query := `
		SELECT trail_id, operation, state, date, evaluated_count, skipped_count, affected_ids
		FROM trail_entries
		ORDER BY date DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing trail entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TrailEntry
	for rows.Next() {
		var entry domain.TrailEntry
		var operation, state string
		if err := rows.Scan(
			&entry.TrailID, &operation, &state, &entry.Date,
			&entry.EvaluatedCount, &entry.SkippedCount, &entry.AffectedIDs,
		); err != nil {
			return nil, fmt.Errorf("error scanning trail entry: %w", err)
		}
		entry.Operation = domain.TrailOperation(operation)
		entry.State = domain.TrailState(state)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trail entries: %w", err)
	}
	return entries, nil
}
