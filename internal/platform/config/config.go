package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// BaseCurrency is the "default" currency every provider rate is quoted
	// against; conversion strategy selection compares from/to with it.
	BaseCurrency string
	// RequiredCurrencies is the set of currency codes the latest-rate cache
	// must always hold an answer for.
	RequiredCurrencies []string

	// CacheBackendKind selects the cache backend at composition time:
	// "memory" or "pgsql".
	CacheBackendKind string
	// CacheEvictionInterval is how often the non-latest eviction job runs.
	CacheEvictionInterval time.Duration
	// CacheRetention is how long a non-latest entry stays cached before the
	// eviction job may remove it.
	CacheRetention time.Duration

	// LookbackStrideDays is the width of each backward search window used by
	// the latest-rate refresher.
	LookbackStrideDays int
	// HistoryStartDate bounds the backward walk; searching past it yields a
	// "no history" error instead of widening forever.
	HistoryStartDate time.Time

	// ProviderBaseURL is the upstream rate feed endpoint.
	ProviderBaseURL string
	// ProviderName is the deduplication key recorded for the wired provider.
	ProviderName string
	// FreshSyncInterval is how often the background fresh sync runs; zero
	// disables it.
	FreshSyncInterval time.Duration

	// ConvertRateLimit is the ulule/limiter formatted rate for the public
	// conversion endpoint, e.g. "300-M".
	ConvertRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("BASE_CURRENCY", "PLN")
	viper.SetDefault("REQUIRED_CURRENCIES", "USD,EUR,GBP,CHF")
	viper.SetDefault("CACHE_BACKEND", "memory")
	viper.SetDefault("CACHE_EVICTION_INTERVAL", "1h")
	viper.SetDefault("CACHE_RETENTION", "24h")
	viper.SetDefault("LOOKBACK_STRIDE_DAYS", 10)
	viper.SetDefault("HISTORY_START_DATE", "2002-01-01")
	viper.SetDefault("PROVIDER_BASE_URL", "")
	viper.SetDefault("PROVIDER_NAME", "nbp")
	viper.SetDefault("FRESH_SYNC_INTERVAL", "0")
	viper.SetDefault("CONVERT_RATE_LIMIT", "300-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.BaseCurrency = strings.ToUpper(viper.GetString("BASE_CURRENCY"))
	for _, code := range strings.Split(viper.GetString("REQUIRED_CURRENCIES"), ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			cfg.RequiredCurrencies = append(cfg.RequiredCurrencies, code)
		}
	}

	cfg.CacheBackendKind = strings.ToLower(viper.GetString("CACHE_BACKEND"))
	if cfg.CacheBackendKind != "memory" && cfg.CacheBackendKind != "pgsql" {
		log.Printf("Warning: unknown CACHE_BACKEND %q. Defaulting to memory.\n", cfg.CacheBackendKind)
		cfg.CacheBackendKind = "memory"
	}

	var err error
	cfg.CacheEvictionInterval, err = time.ParseDuration(viper.GetString("CACHE_EVICTION_INTERVAL"))
	if err != nil {
		log.Printf("Warning: invalid CACHE_EVICTION_INTERVAL (%v). Defaulting to 1h.\n", err)
		cfg.CacheEvictionInterval = time.Hour
	}
	cfg.CacheRetention, err = time.ParseDuration(viper.GetString("CACHE_RETENTION"))
	if err != nil {
		log.Printf("Warning: invalid CACHE_RETENTION (%v). Defaulting to 24h.\n", err)
		cfg.CacheRetention = 24 * time.Hour
	}

	cfg.LookbackStrideDays = viper.GetInt("LOOKBACK_STRIDE_DAYS")
	if cfg.LookbackStrideDays <= 0 {
		log.Printf("Warning: invalid LOOKBACK_STRIDE_DAYS (%d). Defaulting to 10.\n", cfg.LookbackStrideDays)
		cfg.LookbackStrideDays = 10
	}

	cfg.HistoryStartDate, err = time.Parse("2006-01-02", viper.GetString("HISTORY_START_DATE"))
	if err != nil {
		log.Printf("Warning: invalid HISTORY_START_DATE (%v). Defaulting to 2002-01-01.\n", err)
		cfg.HistoryStartDate = time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	cfg.ProviderBaseURL = viper.GetString("PROVIDER_BASE_URL")
	cfg.ProviderName = viper.GetString("PROVIDER_NAME")

	freshSyncStr := viper.GetString("FRESH_SYNC_INTERVAL")
	if freshSyncStr != "" && freshSyncStr != "0" {
		cfg.FreshSyncInterval, err = time.ParseDuration(freshSyncStr)
		if err != nil {
			log.Printf("Warning: invalid FRESH_SYNC_INTERVAL (%v). Disabling fresh sync.\n", err)
			cfg.FreshSyncInterval = 0
		}
	}

	cfg.ConvertRateLimit = viper.GetString("CONVERT_RATE_LIMIT")

	return cfg, nil
}
