package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PaymentConfig struct {
	Lenco struct {
		WebhookSecret string `yaml:"webhook_secret"`
		WebhookPath   string `yaml:"webhook_path"`
	} `yaml:"lenco"`
	// LocalCurrency is formatted with LocalSymbol in notifications (e.g. ZMW -> K150.00).
	LocalCurrency string `yaml:"local_currency"`
	LocalSymbol   string `yaml:"local_symbol"`
}

type SchedulerConfig struct {
	StaleSweepCron string        `yaml:"stale_sweep_cron"`
	StaleAfter     time.Duration `yaml:"stale_after"`
}

type SecurityConfig struct {
	// EncryptionKey enables AES-GCM encryption of stored webhook payloads when set.
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Payment   PaymentConfig   `yaml:"payment"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Security  SecurityConfig  `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads an optional .env file, the YAML file at path (missing file is
// allowed when the environment carries everything), then applies env overrides,
// defaults and validation.
func LoadConfig(path string, dev bool) (*Config, error) {
	// .env is optional; real env vars always win over it
	_ = godotenv.Load()

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Payment.Lenco.WebhookSecret, "LENCO_WEBHOOK_SECRET")
	setString(&cfg.Admin.JWTSecret, "ADMIN_JWT_SECRET")
	setString(&cfg.Security.EncryptionKey, "WEBHOOK_ENCRYPTION_KEY")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = p
		}
	}
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 15 * time.Second
	}
	if cfg.HTTP.MaxBodyBytes <= 0 {
		cfg.HTTP.MaxBodyBytes = 1 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Payment.Lenco.WebhookPath == "" {
		cfg.Payment.Lenco.WebhookPath = "/webhooks/lenco"
	}
	if cfg.Payment.LocalCurrency == "" {
		cfg.Payment.LocalCurrency = "ZMW"
	}
	if cfg.Payment.LocalSymbol == "" {
		cfg.Payment.LocalSymbol = "K"
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 30 * time.Minute
	}
	if cfg.Scheduler.StaleSweepCron == "" {
		cfg.Scheduler.StaleSweepCron = "@every 5m"
	}
	if cfg.Scheduler.StaleAfter <= 0 {
		cfg.Scheduler.StaleAfter = 30 * time.Minute
	}
}

// Validate performs minimal validation of required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if c.Payment.Lenco.WebhookSecret == "" {
		return errors.New("payment.lenco.webhook_secret is required")
	}
	if k := len(c.Security.EncryptionKey); k != 0 && k != 16 && k != 24 && k != 32 {
		return fmt.Errorf("security.encryption_key must be 16, 24 or 32 bytes; got %d", k)
	}
	return nil
}
