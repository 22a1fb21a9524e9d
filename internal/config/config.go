package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// AI providers
	ImagenAPIKey       string
	ImagenAPIBaseURL   string
	AutoenhanceAPIKey  string
	AutoenhanceBaseURL string

	// Stripe
	StripeAPIKey        string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	// Supabase storage
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// Auth
	JWTSecret string

	// Database
	DatabaseURL string

	// Task queue
	RedisAddr         string
	RedisPassword     string
	WorkerConcurrency int

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	cfg := &Config{
		ImagenAPIKey:       getEnv("IMAGEN_API_KEY", ""),
		ImagenAPIBaseURL:   getEnv("IMAGEN_API_BASE_URL", "https://api.imagen-ai.com/v1/"),
		AutoenhanceAPIKey:  getEnv("AUTOENHANCE_API_KEY", ""),
		AutoenhanceBaseURL: getEnv("AUTOENHANCE_API_BASE_URL", "https://api.autoenhance.ai/v3/"),

		StripeAPIKey:        getEnv("STRIPE_API_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/billing/success"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/billing/cancel"),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "listing-media"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ImagenAPIKey == "" {
		return fmt.Errorf("IMAGEN_API_KEY is required")
	}
	if c.AutoenhanceAPIKey == "" {
		return fmt.Errorf("AUTOENHANCE_API_KEY is required")
	}
	if c.StripeAPIKey == "" {
		return fmt.Errorf("STRIPE_API_KEY is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
