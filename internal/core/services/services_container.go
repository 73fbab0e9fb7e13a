package services

import (
	portsprov "github.com/SscSPs/fx_rates_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/fx_rates_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_rates_app/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_app/internal/events"
	"github.com/SscSPs/fx_rates_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	provider portsprov.RateProvider,
	bus *events.RatesUpdatedBus,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.LatestRates = NewLatestRateService(
		repos.RateRecordRepo,
		repos.CacheBackend,
		repos.TrailRepo,
		cfg.RequiredCurrencies,
		cfg.LookbackStrideDays,
		cfg.HistoryStartDate,
		cfg.CacheRetention,
	)
	container.Reconciler = NewReconcilerService(
		repos.RateRecordRepo,
		repos.TrailRepo,
		provider,
		bus,
		cfg.BaseCurrency,
	)
	container.Conversion = NewConversionService(
		repos.CacheBackend,
		repos.RateRecordRepo,
		cfg.BaseCurrency,
	)

	return container
}

// Compile-time checks that the implementations satisfy their facades.
var (
	_ portssvc.CurrencySvcFacade   = (*CurrencyService)(nil)
	_ portssvc.LatestRateSvcFacade = (*LatestRateService)(nil)
	_ portssvc.ReconcilerSvcFacade = (*ReconcilerService)(nil)
	_ portssvc.ConversionSvcFacade = (*ConversionService)(nil)
)
