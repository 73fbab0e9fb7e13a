// Package memory provides the process-local cache backend: a plain map
// guarded by an RWMutex, keyed by rate record id with secondary indexes kept
// implicit (scans are over a handful of currencies, not worth an index).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rates_app/internal/core/ports/repositories"
)

// CacheBackend is the in-process implementation of the cache backend
// contract. Writes are last-write-wins per record id; SaveAll applies its
// whole batch under one lock so readers never observe a half-written refresh.
type CacheBackend struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry // keyed by rate record id
}

// NewCacheBackend creates an empty in-memory cache backend.
func NewCacheBackend() *CacheBackend {
	return &CacheBackend{entries: make(map[string]domain.CacheEntry)}
}

var _ portsrepo.CacheBackend = (*CacheBackend)(nil)

// FindLatest returns the entry currently flagged latest for the currency.
func (c *CacheBackend) FindLatest(_ context.Context, currencyCode string) (*domain.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, entry := range c.entries {
		if entry.IsLatest && entry.CurrencyCode == currencyCode {
			found := entry
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// FindAllLatestFor returns latest entries for the given currencies, keyed by
// currency code.
func (c *CacheBackend) FindAllLatestFor(_ context.Context, currencyCodes []string) (map[string]domain.CacheEntry, error) {
	wanted := make(map[string]struct{}, len(currencyCodes))
	for _, code := range currencyCodes {
		wanted[code] = struct{}{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	byCurrency := make(map[string]domain.CacheEntry)
	for _, entry := range c.entries {
		if !entry.IsLatest {
			continue
		}
		if _, ok := wanted[entry.CurrencyCode]; ok {
			byCurrency[entry.CurrencyCode] = entry
		}
	}
	return byCurrency, nil
}

// FindAllLatest returns every entry currently flagged latest.
func (c *CacheBackend) FindAllLatest(_ context.Context) ([]domain.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var latest []domain.CacheEntry
	for _, entry := range c.entries {
		if entry.IsLatest {
			latest = append(latest, entry)
		}
	}
	return latest, nil
}

// FindByCurrencyAndDate returns the cached entry for a currency and date.
func (c *CacheBackend) FindByCurrencyAndDate(_ context.Context, currencyCode string, date time.Time) (*domain.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, entry := range c.entries {
		if entry.CurrencyCode == currencyCode && entry.Date.Equal(date) {
			found := entry
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// FindByCurrenciesAndDate returns cached entries for several currencies on one date.
func (c *CacheBackend) FindByCurrenciesAndDate(_ context.Context, currencyCodes []string, date time.Time) ([]domain.CacheEntry, error) {
	wanted := make(map[string]struct{}, len(currencyCodes))
	for _, code := range currencyCodes {
		wanted[code] = struct{}{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var matches []domain.CacheEntry
	for _, entry := range c.entries {
		if !entry.Date.Equal(date) {
			continue
		}
		if _, ok := wanted[entry.CurrencyCode]; ok {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

// SaveAll upserts entries by rate record id under one lock.
func (c *CacheBackend) SaveAll(_ context.Context, entries []domain.CacheEntry) ([]domain.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range entries {
		c.entries[entries[i].RateRecordID] = entries[i]
	}
	return entries, nil
}

// DeleteWhereNotLatest evicts non-latest entries cached before the cutoff.
func (c *CacheBackend) DeleteWhereNotLatest(_ context.Context, cachedBefore time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var evicted int64
	for id, entry := range c.entries {
		if !entry.IsLatest && entry.CachedAt.Before(cachedBefore) {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted, nil
}

// DeleteAll clears the backend.
func (c *CacheBackend) DeleteAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.CacheEntry)
	return nil
}
