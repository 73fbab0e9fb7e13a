package repositories

// RepositoryProvider bundles the concrete repositories wired at composition
// time so service construction takes one argument.
type RepositoryProvider struct {
	RateRecordRepo RateRecordRepository
	CacheBackend   CacheBackend
	TrailRepo      TrailRepository
	CurrencyRepo   CurrencyRepository
}
