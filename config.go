package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cart-service/database"
	aws_pkg "cart-service/pkg/aws"
	"cart-service/repository"
	"cart-service/services"
)

// Config holds all configuration for the cart service.
type Config struct {
	Env      string
	Port     string
	Postgres database.PostgresConfig

	RedisURL        string
	ProductCacheTTL time.Duration

	JWTSecret           string
	JWTTTL              time.Duration
	TrustGatewayHeaders bool

	// SNS topic for cart item events; empty disables publishing
	CartSNSTopicARN string

	AllowedOrigins     []string
	RateLimitPerMinute int
	RateLimitBurst     int

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
}

// SecretsFactory builds a secrets reader on demand, so AWS is only contacted
// when AWS_USE_SECRETS is on.
type SecretsFactory func(ctx context.Context) (aws_pkg.SecretGetter, error)

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig(ctx context.Context, newSecrets SecretsFactory) (*Config, error) {
	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8086"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       os.Getenv("POSTGRES_DB"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		RedisURL:            os.Getenv("REDIS_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TrustGatewayHeaders: os.Getenv("TRUST_GATEWAY_HEADERS") == "true",
		CartSNSTopicARN:     os.Getenv("CART_SNS_TOPIC_ARN"),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", aws_pkg.DefaultMetricsNamespace),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", aws_pkg.DefaultLogGroup),
	}

	var err error
	if cfg.ProductCacheTTL, err = getDuration("PRODUCT_CACHE_TTL", repository.DefaultProductCacheTTL); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = getDuration("JWT_TTL", services.DefaultAccessTokenTTL); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 50); err != nil {
		return nil, err
	}

	// Override credentials from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if err := applySecrets(ctx, cfg, newSecrets); err != nil {
			return nil, err
		}
	}

	if cfg.Postgres.User == "" || cfg.Postgres.Password == "" || cfg.Postgres.DB == "" || cfg.Postgres.Host == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return cfg, nil
}

func applySecrets(ctx context.Context, cfg *Config, newSecrets SecretsFactory) error {
	sm, err := newSecrets(ctx)
	if err != nil {
		return fmt.Errorf("secrets manager unavailable: %w", err)
	}

	if m, err := aws_pkg.GetSecretMap(ctx, sm, "cart/DB_CREDENTIALS"); err == nil {
		override(&cfg.Postgres.User, m["POSTGRES_USER"])
		override(&cfg.Postgres.Password, m["POSTGRES_PASSWORD"])
		override(&cfg.Postgres.DB, m["POSTGRES_DB"])
		override(&cfg.Postgres.Host, m["POSTGRES_HOST"])
		override(&cfg.Postgres.Port, m["POSTGRES_PORT"])
	}

	if secret, err := sm.GetSecret(ctx, "cart/JWT_SECRET"); err == nil {
		override(&cfg.JWTSecret, strings.TrimSpace(secret))
	}
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
