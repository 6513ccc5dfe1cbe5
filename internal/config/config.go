package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPrefix is prepended to every environment variable name.
const envPrefix = "MARKET_"

const insecureJWTSecret = "supersecretkey"

type Config struct {
	// Env is "development" or anything else; development relaxes secret checks.
	Env            string        `yaml:"env" env:"ENV" envDefault:"production"`
	Addr           string        `yaml:"addr" env:"ADDR" envDefault:":8080"`
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" envDefault:"supersecretkey"`
	APITimeout     time.Duration `yaml:"timeout" env:"API_TIMEOUT" envDefault:"15s"`
	DatabasePath   string        `yaml:"database_path" env:"DATABASE_PATH" envDefault:"gigmarket.db"`
	MigrateOnStart bool          `yaml:"migrate_on_start" env:"MIGRATE_ON_START" envDefault:"true"`
	TokenDuration  time.Duration `yaml:"token_duration" env:"TOKEN_DURATION" envDefault:"1h"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL" envDefault:"info"`

	Market    MarketConfig    `yaml:"market"`
	Outbox    OutboxConfig    `yaml:"outbox" envPrefix:"OUTBOX_"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

type MarketConfig struct {
	SummaryLimit           int  `yaml:"summary_limit" env:"SUMMARY_LIMIT" envDefault:"6"`
	MaxListLimit           int  `yaml:"max_list_limit" env:"MAX_LIST_LIMIT" envDefault:"500"`
	FillJobOnAccept        bool `yaml:"fill_job_on_accept" env:"FILL_JOB_ON_ACCEPT" envDefault:"false"`
	RejectSiblingsOnAccept bool `yaml:"reject_siblings_on_accept" env:"REJECT_SIBLINGS_ON_ACCEPT" envDefault:"false"`
}

type OutboxConfig struct {
	Enabled      bool          `yaml:"enabled" env:"ENABLED" envDefault:"true"`
	Workers      int           `yaml:"workers" env:"WORKERS" envDefault:"2"`
	MaxAttempts  int           `yaml:"max_attempts" env:"MAX_ATTEMPTS" envDefault:"5"`
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL" envDefault:"500ms"`
	Lease        time.Duration `yaml:"lease" env:"LEASE" envDefault:"5m"`
}

// RateLimitConfig bounds write requests per actor. A zero rate disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RPS" envDefault:"5"`
	Burst             int     `yaml:"burst" env:"BURST" envDefault:"10"`

	// callers idle for IdleTTL lose their bucket; checked every CleanupInterval
	IdleTTL         time.Duration `yaml:"idle_ttl" env:"IDLE_TTL" envDefault:"10m"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL" envDefault:"1m"`
}

// LoadConfig reads an optional .env file, then MARKET_* environment variables
// with defaults, then overlays the YAML file at path when one is given.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the configuration targets a developer machine.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate checks required values and fills in defaults for optional sections.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.APITimeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.TokenDuration <= 0 {
		return errors.New("token_duration must be positive")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == insecureJWTSecret && !c.IsDevelopment() {
		return errors.New("insecure jwt_secret: set MARKET_JWT_SECRET or use env=development")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.Market.SummaryLimit <= 0 {
		c.Market.SummaryLimit = 6
	}
	if c.Market.MaxListLimit <= 0 {
		c.Market.MaxListLimit = 500
	}
	if c.Market.SummaryLimit > c.Market.MaxListLimit {
		return fmt.Errorf("market.summary_limit (%d) exceeds market.max_list_limit (%d)", c.Market.SummaryLimit, c.Market.MaxListLimit)
	}
	if c.Market.RejectSiblingsOnAccept && !c.Market.FillJobOnAccept {
		// siblings may only be rejected when the job is filled
		return errors.New("market.reject_siblings_on_accept requires market.fill_job_on_accept")
	}

	if c.Outbox.Workers <= 0 {
		c.Outbox.Workers = 2
	}
	if c.Outbox.MaxAttempts <= 0 {
		c.Outbox.MaxAttempts = 5
	}
	if c.Outbox.PollInterval <= 0 {
		c.Outbox.PollInterval = 500 * time.Millisecond
	}
	if c.Outbox.Lease <= 0 {
		c.Outbox.Lease = 5 * time.Minute
	}

	if c.RateLimit.RequestsPerSecond < 0 {
		return errors.New("rate_limit.requests_per_second must not be negative")
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 1
	}
	if c.RateLimit.IdleTTL <= 0 {
		c.RateLimit.IdleTTL = 10 * time.Minute
	}
	if c.RateLimit.CleanupInterval <= 0 {
		c.RateLimit.CleanupInterval = time.Minute
	}

	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
