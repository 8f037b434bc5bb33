// Package api assembles configuration, routing, and the HTTP server for
// the tutoring service.
package api

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/agentsform/studymate-api/internal/billing"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the API server.
type Config struct {
	DataDir     string
	BindAddress string
	Port        int
	AdminKey    string
	FrontendURL string

	StripeAPIKey        string
	StripeWebhookSecret string
	PriceScholar        string
	PriceAchiever       string

	SendGridAPIKey string // optional, emails are logged if empty
	EmailFrom      string // sender address, e.g. "noreply@studymate.app"
}

// BillingConfig returns the billing subsystem view of the configuration.
func (c *Config) BillingConfig() *billing.Config {
	return &billing.Config{
		APIKey:        c.StripeAPIKey,
		WebhookSecret: c.StripeWebhookSecret,
		FrontendURL:   c.FrontendURL,
		Prices: billing.PriceConfig{
			Scholar:  c.PriceScholar,
			Achiever: c.PriceAchiever,
		},
	}
}

// LoadConfig loads the API server configuration from environment variables.
// A .env file is loaded if present but not required.
func LoadConfig() (*Config, error) {
	// Best-effort .env loading (not required)
	_ = godotenv.Load()

	port, err := envOrDefaultInt("API_PORT", 8080)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:             envOrDefault("API_DATA_DIR", "/data"),
		BindAddress:         envOrDefault("API_BIND_ADDRESS", "0.0.0.0"),
		Port:                port,
		AdminKey:            strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		FrontendURL:         strings.TrimSpace(os.Getenv("FRONTEND_URL")),
		StripeAPIKey:        strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		StripeWebhookSecret: strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
		PriceScholar:        envOrDefault("STRIPE_PRICE_SCHOLAR", "price_scholar"),
		PriceAchiever:       envOrDefault("STRIPE_PRICE_ACHIEVER", "price_achiever"),
		SendGridAPIKey:      strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
		EmailFrom:           envOrDefault("EMAIL_FROM", "noreply@studymate.app"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate api config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.AdminKey == "" {
		missing = append(missing, "ADMIN_API_KEY")
	}
	if c.FrontendURL == "" {
		missing = append(missing, "FRONTEND_URL")
	}
	if c.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535, got %d", c.Port)
	}

	parsedFrontend, err := url.Parse(c.FrontendURL)
	if err != nil {
		return fmt.Errorf("FRONTEND_URL must be a valid URL: %w", err)
	}
	if parsedFrontend.Scheme != "http" && parsedFrontend.Scheme != "https" {
		return fmt.Errorf("FRONTEND_URL must use http or https scheme")
	}
	if parsedFrontend.Host == "" {
		return fmt.Errorf("FRONTEND_URL must include a host")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) (int, error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
		}
		return n, nil
	}
	return fallback, nil
}
