package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxCacheBackend is the "remote KV" cache backend: cache projections live in
// a Postgres table shared by all instances of the service. It implements the
// same contract as the in-process memory backend; which one runs is decided
// at composition time.
type PgxCacheBackend struct {
	db *pgxpool.Pool
}

// NewCacheBackend creates a new PgxCacheBackend.
func NewCacheBackend(db *pgxpool.Pool) *PgxCacheBackend {
	return &PgxCacheBackend{db: db}
}

const cacheEntryColumns = `rate_record_id, currency_code, date, from_value, to_value, is_latest, cached_at`

func scanCacheEntry(row pgx.Row) (*domain.CacheEntry, error) {
	entry := &domain.CacheEntry{}
	err := row.Scan(
		&entry.RateRecordID, &entry.CurrencyCode, &entry.Date, &entry.From, &entry.To,
		&entry.IsLatest, &entry.CachedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Date = entry.Date.UTC()
	return entry, nil
}

func collectCacheEntries(rows pgx.Rows) ([]domain.CacheEntry, error) {
	defer rows.Close()
	var entries []domain.CacheEntry
	for rows.Next() {
		entry, err := scanCacheEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning cache entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache entries: %w", err)
	}
	return entries, nil
}

// FindLatest returns the entry currently flagged latest for the currency.
func (r *PgxCacheBackend) FindLatest(ctx context.Context, currencyCode string) (*domain.CacheEntry, error) {
	query := `SELECT ` + cacheEntryColumns + ` FROM rate_cache_entries WHERE currency_code = $1 AND is_latest`
	entry, err := scanCacheEntry(r.db.QueryRow(ctx, query, currencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error finding latest cache entry: %w", err)
	}
	return entry, nil
}

// FindAllLatestFor returns latest entries for the given currencies, keyed by
// currency code.
func (r *PgxCacheBackend) FindAllLatestFor(ctx context.Context, currencyCodes []string) (map[string]domain.CacheEntry, error) {
	query := `SELECT ` + cacheEntryColumns + ` FROM rate_cache_entries WHERE currency_code = ANY($1) AND is_latest`
	rows, err := r.db.Query(ctx, query, currencyCodes)
	if err != nil {
		return nil, fmt.Errorf("error finding latest cache entries: %w", err)
	}
	entries, err := collectCacheEntries(rows)
	if err != nil {
		return nil, err
	}
	byCurrency := make(map[string]domain.CacheEntry, len(entries))
	for i := range entries {
		byCurrency[entries[i].CurrencyCode] = entries[i]
	}
	return byCurrency, nil
}

// FindAllLatest returns every entry currently flagged latest.
func (r *PgxCacheBackend) FindAllLatest(ctx context.Context) ([]domain.CacheEntry, error) {
	query := `SELECT ` + cacheEntryColumns + ` FROM rate_cache_entries WHERE is_latest`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error finding latest cache entries: %w", err)
	}
	return collectCacheEntries(rows)
}

// FindByCurrencyAndDate returns the cached entry for a currency and date.
func (r *PgxCacheBackend) FindByCurrencyAndDate(ctx context.Context, currencyCode string, date time.Time) (*domain.CacheEntry, error) {
	query := `SELECT ` + cacheEntryColumns + ` FROM rate_cache_entries WHERE currency_code = $1 AND date = $2`
	entry, err := scanCacheEntry(r.db.QueryRow(ctx, query, currencyCode, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error finding cache entry by date: %w", err)
	}
	return entry, nil
}

// FindByCurrenciesAndDate returns cached entries for several currencies on one date.
func (r *PgxCacheBackend) FindByCurrenciesAndDate(ctx context.Context, currencyCodes []string, date time.Time) ([]domain.CacheEntry, error) {
	query := `SELECT ` + cacheEntryColumns + ` FROM rate_cache_entries WHERE currency_code = ANY($1) AND date = $2`
	rows, err := r.db.Query(ctx, query, currencyCodes, date)
	if err != nil {
		return nil, fmt.Errorf("error finding cache entries by date: %w", err)
	}
	return collectCacheEntries(rows)
}

// SaveAll upserts entries by rate record id inside one transaction, so
// readers never observe a half-written refresh batch.
func (r *PgxCacheBackend) SaveAll(ctx context.Context, entries []domain.CacheEntry) ([]domain.CacheEntry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error beginning cache batch: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	query := `
		INSERT INTO rate_cache_entries (
			rate_record_id, currency_code, date, from_value, to_value, is_latest, cached_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (rate_record_id) DO UPDATE SET
			currency_code = EXCLUDED.currency_code,
			date = EXCLUDED.date,
			from_value = EXCLUDED.from_value,
			to_value = EXCLUDED.to_value,
			is_latest = EXCLUDED.is_latest,
			cached_at = EXCLUDED.cached_at
	`
	for i := range entries {
		e := entries[i]
		if _, err := tx.Exec(ctx, query,
			e.RateRecordID, e.CurrencyCode, e.Date, e.From, e.To, e.IsLatest, e.CachedAt,
		); err != nil {
			return nil, fmt.Errorf("error upserting cache entry %s: %w", e.RateRecordID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing cache batch: %w", err)
	}
	return entries, nil
}

// DeleteWhereNotLatest evicts non-latest entries cached before the cutoff.
func (r *PgxCacheBackend) DeleteWhereNotLatest(ctx context.Context, cachedBefore time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM rate_cache_entries WHERE NOT is_latest AND cached_at < $1`, cachedBefore)
	if err != nil {
		return 0, fmt.Errorf("error evicting cache entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAll clears the backend.
func (r *PgxCacheBackend) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM rate_cache_entries`); err != nil {
		return fmt.Errorf("error clearing cache entries: %w", err)
	}
	return nil
}
