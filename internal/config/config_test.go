package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for key := range defaults {
		prev, hadPrev := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if hadPrev {
				os.Setenv(key, prev)
				return
			}
			os.Unsetenv(key)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("store driver = %q, want memory", cfg.StoreDriver)
	}
	if cfg.SQLitePath != ":memory:" {
		t.Errorf("sqlite path = %q, want :memory:", cfg.SQLitePath)
	}
	if cfg.PaymentCurrency != "usd" {
		t.Errorf("currency = %q, want usd", cfg.PaymentCurrency)
	}
	if cfg.PaymentVerifyConfirm {
		t.Error("expected payment verification off by default")
	}
	if cfg.Notifier != NotifierPostmark {
		t.Errorf("notifier = %q, want %q", cfg.Notifier, NotifierPostmark)
	}
	if cfg.AMQPExchange != "portfolio.events" {
		t.Errorf("exchange = %q, want portfolio.events", cfg.AMQPExchange)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("shutdown timeout = %s, want 5s", cfg.ShutdownTimeout)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("base url = %q, want http://localhost:8080", cfg.BaseURL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("PAYMENT_VERIFY_CONFIRM", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Port)
	}
	if cfg.StoreDriver != "sqlite" {
		t.Errorf("store driver = %q, want sqlite", cfg.StoreDriver)
	}
	if !cfg.PaymentVerifyConfirm {
		t.Error("expected payment verification on")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown timeout = %s, want 30s", cfg.ShutdownTimeout)
	}
	if cfg.StripeSecretKey != "sk_test_abc" {
		t.Errorf("stripe key = %q", cfg.StripeSecretKey)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), ".env")
	content := "POSTMARK_TOKEN=pm-token\nEMAIL_RECIPIENT=owner@example.com\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.PostmarkToken != "pm-token" {
		t.Errorf("postmark token = %q, want pm-token", cfg.PostmarkToken)
	}
	if cfg.EmailRecipient != "owner@example.com" {
		t.Errorf("recipient = %q, want owner@example.com", cfg.EmailRecipient)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %q, want environment value warn", cfg.LogLevel)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{StoreDriver: "memory", Notifier: NotifierPostmark, ShutdownTimeout: time.Second}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "sqlite", mutate: func(c *Config) { c.StoreDriver = "sqlite" }},
		{name: "unknown driver", mutate: func(c *Config) { c.StoreDriver = "postgres" }, wantErr: true},
		{name: "unknown notifier", mutate: func(c *Config) { c.Notifier = "sms" }, wantErr: true},
		{name: "amqp without url", mutate: func(c *Config) { c.Notifier = NotifierAMQP }, wantErr: true},
		{name: "amqp with url", mutate: func(c *Config) { c.Notifier = NotifierAMQP; c.AMQPURL = "amqp://localhost" }},
		{name: "zero timeout", mutate: func(c *Config) { c.ShutdownTimeout = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	c := Config{}
	if got := c.AllowedOrigins(); len(got) != 1 || got[0] != "*" {
		t.Errorf("empty origins = %v, want [*]", got)
	}

	c.CORSAllowedOrigins = "https://a.example, https://b.example ,"
	got := c.AllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("origins = %v", got)
	}
}
