// Package config reads runtime settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	NotifierPostmark = "postmark"
	NotifierAMQP     = "amqp"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	BaseURL  string `mapstructure:"BASE_URL"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	StripeSecretKey      string `mapstructure:"STRIPE_SECRET_KEY"`
	PaymentCurrency      string `mapstructure:"PAYMENT_CURRENCY"`
	PaymentVerifyConfirm bool   `mapstructure:"PAYMENT_VERIFY_CONFIRM"`

	Notifier       string `mapstructure:"NOTIFIER"`
	PostmarkToken  string `mapstructure:"POSTMARK_TOKEN"`
	EmailFrom      string `mapstructure:"EMAIL_FROM"`
	EmailRecipient string `mapstructure:"EMAIL_RECIPIENT"`
	AMQPURL        string `mapstructure:"AMQP_URL"`
	AMQPExchange   string `mapstructure:"AMQP_EXCHANGE"`

	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"PORT":                   "8080",
	"LOG_LEVEL":              "info",
	"BASE_URL":               "",
	"STORE_DRIVER":           "memory",
	"SQLITE_PATH":            ":memory:",
	"STRIPE_SECRET_KEY":      "",
	"PAYMENT_CURRENCY":       "usd",
	"PAYMENT_VERIFY_CONFIRM": false,
	"NOTIFIER":               NotifierPostmark,
	"POSTMARK_TOKEN":         "",
	"EMAIL_FROM":             "",
	"EMAIL_RECIPIENT":        "",
	"AMQP_URL":               "",
	"AMQP_EXCHANGE":          "portfolio.events",
	"CORS_ALLOWED_ORIGINS":   "",
	"SHUTDOWN_TIMEOUT":       "5s",
}

// Load reads envFile into the process environment when it exists, then
// builds a Config from environment variables. Variables already set in
// the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown store drivers and notifiers.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: want memory or sqlite", c.StoreDriver)
	}

	switch c.Notifier {
	case NotifierPostmark:
	case NotifierAMQP:
		if c.AMQPURL == "" {
			return errors.New("NOTIFIER=amqp requires AMQP_URL")
		}
	default:
		return fmt.Errorf("invalid NOTIFIER %q: want postmark or amqp", c.Notifier)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %s", c.ShutdownTimeout)
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas. Empty means any origin.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
