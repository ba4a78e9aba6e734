package main

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-provided setting. Secrets (the Stripe keys)
// never appear anywhere else in the codebase.
type Config struct {
	DatabaseURL          string `env:"DATABASE_URL,required,notEmpty"`
	Port                 string `env:"PORT" envDefault:"8080"`
	DomainURL            string `env:"DOMAIN_URL" envDefault:"http://localhost:8080"`
	Currency             string `env:"CURRENCY" envDefault:"usd"`
	StripeSecretKey      string `env:"STRIPE_SECRET_KEY,required,notEmpty"`
	StripePublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`
}

func loadConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// Success/cancel URLs are built by joining with a leading slash.
	cfg.DomainURL = strings.TrimRight(cfg.DomainURL, "/")
	return &cfg, nil
}
