package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/usman-global/usman-books/internal/accounting"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN selects the PostgreSQL persister. Empty keeps state in memory.
	PGDSN        string        `envconfig:"PG_DSN"`
	PGMaxConns   int32         `envconfig:"PG_MAX_CONNS" default:"8"`
	PGMinConns   int32         `envconfig:"PG_MIN_CONNS" default:"1"`
	PGMaxConnAge time.Duration `envconfig:"PG_MAX_CONN_LIFETIME" default:"30m"`

	// SQLitePath selects a local SQLite persister when PG_DSN is empty.
	SQLitePath string `envconfig:"SQLITE_PATH"`

	// RedisAddr enables the report cache, idempotency keys and the job queue.
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"10m"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	SeedFile string `envconfig:"SEED_FILE"`

	BaseCurrency        string  `envconfig:"BASE_CURRENCY" default:"USD"`
	DepreciationRate    float64 `envconfig:"DEPRECIATION_RATE" default:"10"`
	DepreciationCron    string  `envconfig:"DEPRECIATION_CRON" default:"0 1 1 * *"`
	PlannerAutoRollover bool    `envconfig:"PLANNER_AUTO_ROLLOVER" default:"false"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if !strings.EqualFold(c.BaseCurrency, accounting.BaseCurrency) {
		return fmt.Errorf("config: BASE_CURRENCY %q unsupported, books are kept in %s", c.BaseCurrency, accounting.BaseCurrency)
	}
	if c.DepreciationRate <= 0 || c.DepreciationRate > 100 {
		return fmt.Errorf("config: DEPRECIATION_RATE must be in (0, 100], got %v", c.DepreciationRate)
	}
	if c.ReportCacheTTL <= 0 {
		return fmt.Errorf("config: REPORT_CACHE_TTL must be positive")
	}
	return nil
}

// Persistent reports whether state survives the process, in PostgreSQL or
// a SQLite file.
func (c *Config) Persistent() bool {
	return c != nil && (c.PGDSN != "" || c.SQLitePath != "")
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
