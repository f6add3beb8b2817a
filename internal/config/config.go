package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/ocean-series-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultNOAAURL is the NOAA STAR global mean sea level CSV (decimal year + mm columns).
const DefaultNOAAURL = "https://www.star.nesdis.noaa.gov/socd/lsa/SeaLevelRise/slr/slr_sla_gbl_free_txj1j2_90.csv"

// DefaultMaxYears is the SERIES_MAX_YEARS default.
const DefaultMaxYears = 500

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Generation defaults.
	StartYear   int
	EndYear     int
	Seed        uint64
	Scenario    domain.Scenario
	CatalogPath string

	// MaxYears bounds the generation range of any query.
	MaxYears int

	CacheSize int
	CacheTTL  time.Duration

	// NOAA observed sea level (feature-flagged via NOAA_ENABLED).
	NOAAEnabled bool
	NOAAURL     string
	NOAATimeout time.Duration
	NOAARetries int
	NOAARefresh time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	startYear, err := parseInt("SERIES_START_YEAR", 1990)
	if err != nil {
		return nil, err
	}
	endYear, err := parseInt("SERIES_END_YEAR", 0)
	if err != nil {
		return nil, err
	}
	if endYear == 0 {
		endYear = domain.CurrentYear()
	}

	maxYears, err := parseInt("SERIES_MAX_YEARS", DefaultMaxYears)
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("SERIES_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid SERIES_SEED")
	}

	scenario, err := domain.ParseScenario(os.Getenv("SERIES_SCENARIO"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERIES_SCENARIO: %w", err)
	}

	cacheSize, err := parseInt("CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", "0s", true)
	if err != nil {
		return nil, err
	}

	noaaTimeout, err := parseDuration("NOAA_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	noaaRefresh, err := parseDuration("NOAA_REFRESH", "6h", false)
	if err != nil {
		return nil, err
	}
	noaaRetries, err := parseInt("NOAA_RETRIES", 2)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StartYear:   startYear,
		EndYear:     endYear,
		Seed:        seed,
		Scenario:    scenario,
		CatalogPath: os.Getenv("CATALOG_PATH"),
		MaxYears:    maxYears,

		CacheSize: cacheSize,
		CacheTTL:  cacheTTL,

		NOAAEnabled: os.Getenv("NOAA_ENABLED") == "true",
		NOAAURL:     sharedcfg.EnvOrDefault("NOAA_URL", DefaultNOAAURL),
		NOAATimeout: noaaTimeout,
		NOAARetries: noaaRetries,
		NOAARefresh: noaaRefresh,

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "synthetic-series"),
	}

	if cfg.MaxYears < 1 || cfg.MaxYears > domain.MaxYears {
		return nil, fmt.Errorf("SERIES_MAX_YEARS must be between 1 and %d", domain.MaxYears)
	}
	if err := cfg.Range().ValidateSpan(cfg.MaxYears); err != nil {
		return nil, fmt.Errorf("SERIES_START_YEAR/SERIES_END_YEAR: %w", err)
	}
	if cfg.CacheSize <= 0 {
		return nil, errors.New("CACHE_SIZE must be positive")
	}
	if cfg.NOAARetries < 0 {
		return nil, errors.New("NOAA_RETRIES must not be negative")
	}
	if cfg.NOAAEnabled && cfg.NOAAURL == "" {
		return nil, errors.New("NOAA_ENABLED is true but NOAA_URL is empty")
	}
	if cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// Range returns the configured generation range.
func (c *Config) Range() domain.YearRange {
	return domain.YearRange{Start: c.StartYear, End: c.EndYear}
}

// LoadCatalog returns the catalog file named by CatalogPath, or the built-in
// catalog when no path is set.
func (c *Config) LoadCatalog() (domain.Catalog, error) {
	if c.CatalogPath == "" {
		return domain.DefaultCatalog(), nil
	}
	f, err := os.Open(c.CatalogPath)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("open CATALOG_PATH: %w", err)
	}
	defer f.Close()
	return domain.LoadCatalog(f)
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
