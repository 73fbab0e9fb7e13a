package pgsql

import (
	portsrepo "github.com/SscSPs/fx_rates_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres-backed repositories. The cache
// backend slot defaults to the Postgres implementation; main swaps in the
// memory backend when configuration asks for it.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RateRecordRepo: NewRateRecordRepository(dbPool),
		CacheBackend:   NewCacheBackend(dbPool),
		TrailRepo:      NewTrailRepository(dbPool),
		CurrencyRepo:   NewCurrencyRepository(dbPool),
	}
}

// Compile-time interface checks.
var (
	_ portsrepo.RateRecordRepository = (*PgxRateRecordRepository)(nil)
	_ portsrepo.CacheBackend         = (*PgxCacheBackend)(nil)
	_ portsrepo.TrailRepository      = (*PgxTrailRepository)(nil)
	_ portsrepo.CurrencyRepository   = (*PgxCurrencyRepository)(nil)
)
