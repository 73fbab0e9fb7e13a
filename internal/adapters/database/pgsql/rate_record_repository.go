package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for a unique constraint clash.
const uniqueViolation = "23505"

// PgxRateRecordRepository implements repositories.RateRecordRepository using pgxpool.
// Provider maps are stored as JSONB; the version column is the optimistic
// concurrency token.
type PgxRateRecordRepository struct {
	db *pgxpool.Pool
}

// NewRateRecordRepository creates a new PgxRateRecordRepository.
func NewRateRecordRepository(db *pgxpool.Pool) *PgxRateRecordRepository {
	return &PgxRateRecordRepository{db: db}
}

const rateRecordColumns = `
	rate_record_id, currency_code, date, rates_by_provider, details_by_provider, version,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanRateRecord(row pgx.Row) (*domain.RateRecord, error) {
	record := &domain.RateRecord{}
	var ratesJSON, detailsJSON []byte
	err := row.Scan(
		&record.RateRecordID, &record.CurrencyCode, &record.Date, &ratesJSON, &detailsJSON, &record.Version,
		&record.CreatedAt, &record.CreatedBy, &record.LastUpdatedAt, &record.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ratesJSON, &record.RatesByProvider); err != nil {
		return nil, fmt.Errorf("error decoding provider rates for record %s: %w", record.RateRecordID, err)
	}
	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &record.DetailsByProvider); err != nil {
			return nil, fmt.Errorf("error decoding provider details for record %s: %w", record.RateRecordID, err)
		}
	}
	record.Date = record.Date.UTC()
	return record, nil
}

func collectRateRecords(rows pgx.Rows) ([]domain.RateRecord, error) {
	defer rows.Close()
	var records []domain.RateRecord
	for rows.Next() {
		record, err := scanRateRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning rate record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate records: %w", err)
	}
	return records, nil
}

// FindByDate retrieves all rate records for an exact calendar date.
func (r *PgxRateRecordRepository) FindByDate(ctx context.Context, date time.Time) ([]domain.RateRecord, error) {
	query := `SELECT ` + rateRecordColumns + ` FROM rate_records WHERE date = $1`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("error finding rate records by date: %w", err)
	}
	return collectRateRecords(rows)
}

// FindByCurrencyAndDate retrieves the single record for a currency on a date.
func (r *PgxRateRecordRepository) FindByCurrencyAndDate(ctx context.Context, currencyCode string, date time.Time) (*domain.RateRecord, error) {
	query := `SELECT ` + rateRecordColumns + ` FROM rate_records WHERE currency_code = $1 AND date = $2`
	record, err := scanRateRecord(r.db.QueryRow(ctx, query, currencyCode, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error finding rate record: %w", err)
	}
	return record, nil
}

// FindByCurrenciesAndDate retrieves records for several currencies on one date.
func (r *PgxRateRecordRepository) FindByCurrenciesAndDate(ctx context.Context, currencyCodes []string, date time.Time) ([]domain.RateRecord, error) {
	query := `SELECT ` + rateRecordColumns + ` FROM rate_records WHERE currency_code = ANY($1) AND date = $2`
	rows, err := r.db.Query(ctx, query, currencyCodes, date)
	if err != nil {
		return nil, fmt.Errorf("error finding rate records by currencies and date: %w", err)
	}
	return collectRateRecords(rows)
}

// FindByCurrencyInAndDateBetween retrieves records inside an inclusive date range.
func (r *PgxRateRecordRepository) FindByCurrencyInAndDateBetween(ctx context.Context, currencyCodes []string, fromDate, toDate time.Time) ([]domain.RateRecord, error) {
	query := `SELECT ` + rateRecordColumns + ` FROM rate_records WHERE currency_code = ANY($1) AND date BETWEEN $2 AND $3`
	rows, err := r.db.Query(ctx, query, currencyCodes, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("error finding rate records in date range: %w", err)
	}
	return collectRateRecords(rows)
}

// FindByDateBetween retrieves all records inside an inclusive date range.
func (r *PgxRateRecordRepository) FindByDateBetween(ctx context.Context, fromDate, toDate time.Time) ([]domain.RateRecord, error) {
	query := `SELECT ` + rateRecordColumns + ` FROM rate_records WHERE date BETWEEN $1 AND $2`
	rows, err := r.db.Query(ctx, query, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("error finding rate records in date range: %w", err)
	}
	return collectRateRecords(rows)
}

// SaveRateRecord upserts a single record with an optimistic version check.
// New records (version 0) insert with version 1; existing records update only
// when the stored version still matches, otherwise apperrors.ErrVersionConflict.
func (r *PgxRateRecordRepository) SaveRateRecord(ctx context.Context, record domain.RateRecord) error {
	return r.saveOne(ctx, r.db, record)
}

// SaveAllRateRecords persists a batch inside one transaction. The first
// version conflict rolls the whole transaction back and surfaces
// apperrors.ErrVersionConflict so the caller can fall back to per-record
// conflict handling.
func (r *PgxRateRecordRepository) SaveAllRateRecords(ctx context.Context, records []domain.RateRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error beginning rate record batch: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for i := range records {
		if err := r.saveOne(ctx, tx, records[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing rate record batch: %w", err)
	}
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *PgxRateRecordRepository) saveOne(ctx context.Context, q querier, record domain.RateRecord) error {
	ratesJSON, err := json.Marshal(record.RatesByProvider)
	if err != nil {
		return fmt.Errorf("error encoding provider rates for record %s: %w", record.RateRecordID, err)
	}
	var detailsJSON []byte
	if record.DetailsByProvider != nil {
		detailsJSON, err = json.Marshal(record.DetailsByProvider)
		if err != nil {
			return fmt.Errorf("error encoding provider details for record %s: %w", record.RateRecordID, err)
		}
	}

	if record.Version == 0 {
		query := `
			INSERT INTO rate_records (
				rate_record_id, currency_code, date, rates_by_provider, details_by_provider, version,
				created_at, created_by, last_updated_at, last_updated_by
			) VALUES ($1, $2, $3, $4, $5, 1, $6, $7, $8, $9)
		`
		_, err = q.Exec(ctx, query,
			record.RateRecordID, record.CurrencyCode, record.Date, ratesJSON, detailsJSON,
			record.CreatedAt, record.CreatedBy, record.LastUpdatedAt, record.LastUpdatedBy,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				// another writer created the (currency, date) record first;
				// the caller re-reads and merges
				return fmt.Errorf("%w: record for %s on %s already exists",
					apperrors.ErrVersionConflict, record.CurrencyCode, record.Date.Format("2006-01-02"))
			}
			return fmt.Errorf("error inserting rate record: %w", err)
		}
		return nil
	}

	query := `
		UPDATE rate_records
		SET rates_by_provider = $1, details_by_provider = $2, version = version + 1,
			last_updated_at = $3, last_updated_by = $4
		WHERE rate_record_id = $5 AND version = $6
	`
	tag, err := q.Exec(ctx, query,
		ratesJSON, detailsJSON, record.LastUpdatedAt, record.LastUpdatedBy,
		record.RateRecordID, record.Version,
	)
	if err != nil {
		return fmt.Errorf("error updating rate record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: record %s at version %d", apperrors.ErrVersionConflict, record.RateRecordID, record.Version)
	}
	return nil
}
