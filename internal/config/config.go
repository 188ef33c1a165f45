package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds client configuration loaded from environment variables (and .env when present).
type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		HTTPAddr           string `env:"HTTP_ADDR" envDefault:":8080"`
		CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
		// Limit for POST /flows/:id/claim, limiter format "<n>-<S|M|H|D>"
		SubmitRate string `env:"SUBMIT_RATE" envDefault:"5-M"`
	}

	Ledger struct {
		BaseURL string        `env:"LEDGER_BASE_URL" envDefault:"http://localhost:3000/api"`
		Timeout time.Duration `env:"LEDGER_TIMEOUT" envDefault:"10s"`
	}

	Polling struct {
		Interval    time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
		MaxAttempts int           `env:"POLL_MAX_ATTEMPTS" envDefault:"60"`
	}

	Flows struct {
		IdleTTL          time.Duration `env:"FLOW_IDLE_TTL" envDefault:"30m"`
		SweepInterval    time.Duration `env:"FLOW_SWEEP_INTERVAL" envDefault:"60s"`
		Capacity         int           `env:"FLOW_CAPACITY" envDefault:"10000"`
		AllowSkipWaiting bool          `env:"ALLOW_SKIP_WAITING" envDefault:"false"`
	}

	Artifacts struct {
		// Public origin used to build card links, e.g. https://passit.example
		ShareBaseURL string        `env:"SHARE_BASE_URL" envDefault:"http://localhost:3000"`
		CacheTTL     time.Duration `env:"ARTIFACT_CACHE_TTL" envDefault:"30m"`
	}

	Redis struct {
		// Empty address disables the profile cache.
		Addr       string        `env:"REDIS_ADDR"`
		Password   string        `env:"REDIS_PASSWORD"`
		DB         int           `env:"REDIS_DB" envDefault:"0"`
		ProfileTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"10s"`
	}

	Telegram struct {
		// Empty token disables init-data authentication of the display API.
		BotToken    string        `env:"TELEGRAM_BOT_TOKEN"`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
	}
}

// Load reads .env (ignored when missing) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Ledger.BaseURL); err != nil {
		return fmt.Errorf("invalid LEDGER_BASE_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(c.Artifacts.ShareBaseURL); err != nil {
		return fmt.Errorf("invalid SHARE_BASE_URL: %w", err)
	}
	if c.Polling.Interval <= 0 {
		return fmt.Errorf("invalid POLL_INTERVAL: must be positive")
	}
	if c.Polling.MaxAttempts <= 0 {
		return fmt.Errorf("invalid POLL_MAX_ATTEMPTS: must be positive")
	}
	if c.Flows.Capacity <= 0 {
		return fmt.Errorf("invalid FLOW_CAPACITY: must be positive")
	}
	c.Artifacts.ShareBaseURL = strings.TrimRight(c.Artifacts.ShareBaseURL, "/")
	c.Ledger.BaseURL = strings.TrimRight(c.Ledger.BaseURL, "/")
	return nil
}

// RedisEnabled reports whether the profile cache should be wired.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}
