package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Role store backends.
const (
	RoleStoreRedis    = "redis"
	RoleStorePostgres = "postgres"
	RoleStoreMemory   = "memory"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	PublicURL         string        `envconfig:"APP_PUBLIC_URL" default:"http://localhost:8080"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	PGDSN      string `envconfig:"PG_DSN"`
	PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"10"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	RoleStore    string `envconfig:"ROLE_STORE" default:"redis"`
	RoleStoreKey string `envconfig:"ROLE_STORE_KEY" default:"tabdeel-pulse-roles"`

	SeedPassword     string        `envconfig:"SEED_PASSWORD" default:"password123"`
	ResetTokenTTL    time.Duration `envconfig:"RESET_TOKEN_TTL" default:"1h"`
	WorkerEnabled    bool          `envconfig:"WORKER_ENABLED" default:"true"`
	ReminderCron     string        `envconfig:"REMINDER_CRON" default:"0 6 * * *"`
	ReminderLeadDays int           `envconfig:"REMINDER_LEAD_DAYS" default:"3"`
	SMTPFrom         string        `envconfig:"SMTP_FROM" default:"no-reply@tabdeel.io"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	switch c.RoleStore {
	case RoleStoreRedis, RoleStoreMemory:
	case RoleStorePostgres:
		if c.PGDSN == "" {
			return errors.New("PG_DSN is required when ROLE_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown ROLE_STORE %q", c.RoleStore)
	}
	if c.ReminderLeadDays < 0 {
		return errors.New("REMINDER_LEAD_DAYS must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
