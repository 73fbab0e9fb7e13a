package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/fx_rates_app/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_app/internal/metrics"
	"github.com/SscSPs/fx_rates_app/internal/middleware"
	"github.com/SscSPs/fx_rates_app/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	m *metrics.Metrics,
	metricsHandler http.Handler,
) {
	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/", getHome)
	r.GET("/metrics", gin.WrapH(metricsHandler))

	setupAPIV1Routes(r, cfg, services, m)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	m *metrics.Metrics,
) {
	v1 := r.Group("/api/v1", cors.Default())

	registerConversionRoutes(v1, services.Conversion, m, conversionRateLimiter(cfg))
	registerRatesRoutes(v1, services.LatestRates, services.Reconciler)
	registerCurrencyRoutes(v1, services.Currency)
}

// conversionRateLimiter builds the per-IP limiter middleware for the public
// conversion endpoint. An unparsable rate disables limiting rather than
// refusing to start.
func conversionRateLimiter(cfg *config.Config) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(cfg.ConvertRateLimit)
	if err != nil {
		slog.Warn("Invalid conversion rate limit, disabling limiter", slog.String("rate", cfg.ConvertRateLimit), slog.String("error", err.Error()))
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(limiter.New(memorystore.NewStore(), rate))
}
