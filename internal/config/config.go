package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// NBA stats
	BallDontLieAPIKey string        `envconfig:"BALLDONTLIE_API_KEY" default:""`
	NBAStatsBaseURL   string        `envconfig:"NBA_STATS_BASE_URL" default:"https://stats.nba.com/stats"`
	NBAStatsTimeout   time.Duration `envconfig:"NBA_STATS_TIMEOUT" default:"30s"`
	NBAStatsThrottle  time.Duration `envconfig:"NBA_STATS_THROTTLE" default:"800ms"`

	// EuroLeague
	EuroLeagueBaseURL string        `envconfig:"EUROLEAGUE_BASE_URL" default:"https://api-live.euroleague.net"`
	EuroLeagueTimeout time.Duration `envconfig:"EUROLEAGUE_TIMEOUT" default:"30s"`

	// Upstream retry
	RetryAttempts       int           `envconfig:"RETRY_ATTEMPTS" default:"4"`
	RetryInitialBackoff time.Duration `envconfig:"RETRY_INITIAL_BACKOFF" default:"1s"`
	RetryMaxBackoff     time.Duration `envconfig:"RETRY_MAX_BACKOFF" default:"8s"`

	// Cloudflare D1 (consumed by the upload step, not by the job)
	CloudflareAPIToken  string `envconfig:"CLOUDFLARE_API_TOKEN" default:""`
	CloudflareAccountID string `envconfig:"CLOUDFLARE_ACCOUNT_ID" default:""`
	D1DatabaseName      string `envconfig:"D1_DATABASE_NAME" default:"hoopslab-db"`

	// Nightly job
	OutputDir  string `envconfig:"OUTPUT_DIR" default:"data/etl_out"`
	SeedFile   string `envconfig:"SEED_FILE" default:""`
	SQLDialect string `envconfig:"SQL_DIALECT" default:"sqlite"`

	// Redis
	RedisURL string        `envconfig:"REDIS_URL" default:""`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"6h"`

	// Warehouse
	WarehouseDriver string `envconfig:"WAREHOUSE_DRIVER" default:"sqlite"`
	WarehouseDSN    string `envconfig:"WAREHOUSE_DSN" default:"data/warehouse.db"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	NightlyCron string `envconfig:"NIGHTLY_CRON" default:"0 2 * * *"`
	RunOnStart  bool   `envconfig:"RUN_ON_START" default:"false"`
	LoadOnRun   bool   `envconfig:"LOAD_ON_RUN" default:"false"`

	// Monitoring
	MetricsPort    int    `envconfig:"METRICS_PORT" default:"9090"`
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL" default:""`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
// and lowercases SQL_DIALECT and WAREHOUSE_DRIVER
func (c *Config) Validate() error {
	c.SQLDialect = strings.ToLower(strings.TrimSpace(c.SQLDialect))
	c.WarehouseDriver = strings.ToLower(strings.TrimSpace(c.WarehouseDriver))

	switch c.SQLDialect {
	case "sqlite", "d1", "postgres", "postgresql":
	default:
		return fmt.Errorf("SQL_DIALECT must be sqlite or postgres, got %q", c.SQLDialect)
	}

	switch c.WarehouseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("WAREHOUSE_DRIVER must be sqlite or postgres, got %q", c.WarehouseDriver)
	}

	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1")
	}

	if c.RetryInitialBackoff <= 0 || c.RetryMaxBackoff < c.RetryInitialBackoff {
		return fmt.Errorf("RETRY_MAX_BACKOFF (%s) must be >= RETRY_INITIAL_BACKOFF (%s) > 0",
			c.RetryMaxBackoff, c.RetryInitialBackoff)
	}

	if c.NBAStatsThrottle < 0 {
		return fmt.Errorf("NBA_STATS_THROTTLE must not be negative")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}

	if c.LoadOnRun && dialectFamily(c.SQLDialect) != c.WarehouseDriver {
		return fmt.Errorf("LOAD_ON_RUN needs SQL_DIALECT %q to match WAREHOUSE_DRIVER %q",
			c.SQLDialect, c.WarehouseDriver)
	}

	if c.IsProduction() && c.WarehouseDriver == "postgres" && c.WarehouseDSN == "" {
		return fmt.Errorf("WAREHOUSE_DSN is required in production")
	}

	return nil
}

func dialectFamily(dialect string) string {
	switch dialect {
	case "d1":
		return "sqlite"
	case "postgresql":
		return "postgres"
	}
	return dialect
}

// HasD1Credentials returns true if the Cloudflare D1 upload can be authenticated
func (c *Config) HasD1Credentials() bool {
	return c.CloudflareAPIToken != "" && c.CloudflareAccountID != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
