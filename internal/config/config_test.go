package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("WOO_STORE_URL", "https://shop.example.com")
	t.Setenv("WOO_CONSUMER_KEY", "ck_test123")
	t.Setenv("WOO_CONSUMER_SECRET", "cs_test456")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_def")
	t.Setenv("DATABASE_URL", "postgres://localhost/storefront_test")
	t.Setenv("BASE_URL", "https://shop.example.com/")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
}

func TestLoadFromEnv(t *testing.T) {
	setTestEnv(t)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.Secrets.StoreURL != "https://shop.example.com" {
		t.Errorf("StoreURL = %s", cfg.Secrets.StoreURL)
	}
	if cfg.Secrets.ConsumerKey != "ck_test123" {
		t.Errorf("ConsumerKey = %s", cfg.Secrets.ConsumerKey)
	}
	if cfg.Currency != "eur" {
		t.Errorf("Currency = %s, want default eur", cfg.Currency)
	}
	// Trailing slash stripped so redirect URLs join cleanly.
	if cfg.BaseURL != "https://shop.example.com" {
		t.Errorf("BaseURL = %s", cfg.BaseURL)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		omit string
		want string
	}{
		{"store url", "WOO_STORE_URL", "store_url"},
		{"consumer key", "WOO_CONSUMER_KEY", "consumer_key"},
		{"consumer secret", "WOO_CONSUMER_SECRET", "consumer_secret"},
		{"stripe key", "STRIPE_SECRET_KEY", "stripe_secret_key"},
		{"webhook secret", "STRIPE_WEBHOOK_SECRET", "stripe_webhook_secret"},
		{"database url", "DATABASE_URL", "database_url"},
		{"base url", "BASE_URL", "base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTestEnv(t)
			t.Setenv(tt.omit, "")

			_, err := Load(context.Background())
			if err == nil {
				t.Fatal("Load() succeeded with missing required field")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `{
		"port": "7070",
		"environment": "development",
		"base_url": "https://dolls.example.com",
		"currency": "usd",
		"secrets": {
			"store_url": "https://dolls.example.com",
			"consumer_key": "ck_file",
			"consumer_secret": "cs_file",
			"stripe_secret_key": "sk_file",
			"stripe_webhook_secret": "whsec_file",
			"database_url": "postgres://localhost/storefront"
		}
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "7070" {
		t.Errorf("Port = %s, want 7070", cfg.Port)
	}
	if cfg.Currency != "usd" {
		t.Errorf("Currency = %s, want usd", cfg.Currency)
	}
	if cfg.Secrets.ConsumerKey != "ck_file" {
		t.Errorf("ConsumerKey = %s", cfg.Secrets.ConsumerKey)
	}
}

func TestLoadFromFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load() accepted malformed config file")
	}
}
