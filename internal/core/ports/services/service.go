package services

// ServiceContainer holds the service facades the transport layer depends on.
type ServiceContainer struct {
	Conversion  ConversionSvcFacade
	LatestRates LatestRateSvcFacade
	Reconciler  ReconcilerSvcFacade
	Currency    CurrencySvcFacade
}
