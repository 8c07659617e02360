// Package config handles loading and validation of service configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Config holds all service configuration.
// Environment determines whether secrets load from env vars (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	SecretName string

	// Public storefront origin for payment redirects.
	BaseURL string

	// ISO currency code sessions are priced in.
	Currency string

	// Secrets (loaded from env vars, CONFIG_FILE, or Secret Manager)
	Secrets Secrets
}

// Secrets contains the credentials the service depends on.
// In production, this is loaded from Secret Manager as JSON.
// In development, loaded from individual env vars or CONFIG_FILE.
type Secrets struct {
	StoreURL         string `json:"store_url"`
	ConsumerKey      string `json:"consumer_key"`
	ConsumerSecret   string `json:"consumer_secret"`
	StripeSecretKey  string `json:"stripe_secret_key"`
	StripeWebhookKey string `json:"stripe_webhook_secret"`
	DatabaseURL      string `json:"database_url"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Port:        envOrDefault("PORT", "8080"),
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		SecretName:  envOrDefault("SECRET_NAME", "dolls-storefront"),
		BaseURL:     os.Getenv("BASE_URL"),
		Currency:    envOrDefault("CURRENCY", "eur"),
	}

	var err error
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading secrets: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Port        string  `json:"port"`
		Environment string  `json:"environment"`
		LogLevel    string  `json:"log_level"`
		BaseURL     string  `json:"base_url"`
		Currency    string  `json:"currency"`
		Secrets     Secrets `json:"secrets"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:        withDefault(fileConfig.Port, "8080"),
		Environment: withDefault(fileConfig.Environment, "development"),
		LogLevel:    withDefault(fileConfig.LogLevel, "info"),
		BaseURL:     fileConfig.BaseURL,
		Currency:    withDefault(fileConfig.Currency, "eur"),
		Secrets:     fileConfig.Secrets,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// loadFromSecretManager fetches secrets from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{secret_name}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.SecretName)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Secrets); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	return nil
}

// loadFromEnv reads secrets from individual environment variables.
// Used in development mode for local testing.
func (c *Config) loadFromEnv() {
	c.Secrets = Secrets{
		StoreURL:         os.Getenv("WOO_STORE_URL"),
		ConsumerKey:      os.Getenv("WOO_CONSUMER_KEY"),
		ConsumerSecret:   os.Getenv("WOO_CONSUMER_SECRET"),
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
	}
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Secrets.StoreURL == "" {
		return fmt.Errorf("store_url is required")
	}
	if _, err := url.Parse(c.Secrets.StoreURL); err != nil {
		return fmt.Errorf("invalid store_url: %w", err)
	}
	if c.Secrets.ConsumerKey == "" {
		return fmt.Errorf("consumer_key is required")
	}
	if c.Secrets.ConsumerSecret == "" {
		return fmt.Errorf("consumer_secret is required")
	}
	if c.Secrets.StripeSecretKey == "" {
		return fmt.Errorf("stripe_secret_key is required")
	}
	if c.Secrets.StripeWebhookKey == "" {
		return fmt.Errorf("stripe_webhook_secret is required")
	}
	if c.Secrets.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	return nil
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
