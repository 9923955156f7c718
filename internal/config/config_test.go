package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api-live.euroleague.net", cfg.EuroLeagueBaseURL)
	assert.Equal(t, 30*time.Second, cfg.EuroLeagueTimeout)
	assert.Equal(t, 800*time.Millisecond, cfg.NBAStatsThrottle)
	assert.Equal(t, 4, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.RetryInitialBackoff)
	assert.Equal(t, 8*time.Second, cfg.RetryMaxBackoff)
	assert.Equal(t, "hoopslab-db", cfg.D1DatabaseName)
	assert.Equal(t, "data/etl_out", cfg.OutputDir)
	assert.Equal(t, "sqlite", cfg.SQLDialect)
	assert.Equal(t, "0 2 * * *", cfg.NightlyCron)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.HasD1Credentials())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BALLDONTLIE_API_KEY", "bdl-key")
	t.Setenv("CLOUDFLARE_API_TOKEN", "cf-token")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "cf-account")
	t.Setenv("SQL_DIALECT", "postgres")
	t.Setenv("RETRY_ATTEMPTS", "2")
	t.Setenv("NBA_STATS_THROTTLE", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bdl-key", cfg.BallDontLieAPIKey)
	assert.Equal(t, "postgres", cfg.SQLDialect)
	assert.Equal(t, 2, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.NBAStatsThrottle)
	assert.True(t, cfg.HasD1Credentials())
}

func TestLoad_NormalizesNames(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SQL_DIALECT", "D1")
	t.Setenv("WAREHOUSE_DRIVER", "SQLite")
	t.Setenv("LOAD_ON_RUN", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "d1", cfg.SQLDialect)
	assert.Equal(t, "sqlite", cfg.WarehouseDriver)
	assert.True(t, cfg.LoadOnRun)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			SQLDialect:          "sqlite",
			WarehouseDriver:     "sqlite",
			RetryAttempts:       4,
			RetryInitialBackoff: time.Second,
			RetryMaxBackoff:     8 * time.Second,
			OutputDir:           "data/etl_out",
			AppEnv:              "development",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown dialect", mutate: func(c *Config) { c.SQLDialect = "mysql" }, wantErr: "SQL_DIALECT"},
		{name: "unknown warehouse", mutate: func(c *Config) { c.WarehouseDriver = "d1" }, wantErr: "WAREHOUSE_DRIVER"},
		{name: "zero attempts", mutate: func(c *Config) { c.RetryAttempts = 0 }, wantErr: "RETRY_ATTEMPTS"},
		{name: "backoff cap below start", mutate: func(c *Config) { c.RetryMaxBackoff = 500 * time.Millisecond }, wantErr: "RETRY_MAX_BACKOFF"},
		{name: "negative throttle", mutate: func(c *Config) { c.NBAStatsThrottle = -time.Second }, wantErr: "NBA_STATS_THROTTLE"},
		{name: "no output dir", mutate: func(c *Config) { c.OutputDir = "" }, wantErr: "OUTPUT_DIR"},
		{
			name: "load into mismatched warehouse",
			mutate: func(c *Config) {
				c.LoadOnRun = true
				c.SQLDialect = "postgres"
			},
			wantErr: "LOAD_ON_RUN",
		},
		{
			name: "load d1 artifact into sqlite",
			mutate: func(c *Config) {
				c.LoadOnRun = true
				c.SQLDialect = "d1"
			},
		},
		{
			name: "mixed case names",
			mutate: func(c *Config) {
				c.LoadOnRun = true
				c.SQLDialect = "SQLite"
				c.WarehouseDriver = " SQLITE"
			},
		},
		{
			name: "mixed case mismatch",
			mutate: func(c *Config) {
				c.LoadOnRun = true
				c.SQLDialect = "PostgreSQL"
			},
			wantErr: "LOAD_ON_RUN",
		},
		{
			name: "production postgres without dsn",
			mutate: func(c *Config) {
				c.AppEnv = "production"
				c.WarehouseDriver = "postgres"
			},
			wantErr: "WAREHOUSE_DSN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
