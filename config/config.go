// Package config loads the application configuration from environment
// variables, with .env support for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every setting the server needs. One sub-struct per
// concern.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Sync      SyncConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string
}

// JWTConfig holds token issuance settings. Secret must be set, there is
// no safe default for a signing key.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// RateLimitConfig holds the per-user request limiter settings.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// StorageConfig holds the S3-compatible object store settings.
// BaseEndpoint points at MinIO in the default deployment.
type StorageConfig struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// SyncConfig holds the region sync settings.
type SyncConfig struct {
	UpstreamURL string
	Interval    time.Duration
}

// Load builds a Config from the environment. A .env file is loaded
// first when present, real environment variables win in production.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	accessMinutes, err := strconv.Atoi(getEnv("JWT_ACCESS_EXPIRY_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRY_MINUTES: %w", err)
	}

	refreshDays, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRY_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRY_DAYS: %w", err)
	}

	maxRequests, err := strconv.Atoi(getEnv("RATE_LIMIT_MAX_REQUESTS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MAX_REQUESTS: %w", err)
	}

	windowSeconds, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}

	syncMinutes, err := strconv.Atoi(getEnv("REGION_SYNC_INTERVAL_MINUTES", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGION_SYNC_INTERVAL_MINUTES: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/petfm.db"),
		},
		JWT: JWTConfig{
			Secret:     jwtSecret,
			AccessTTL:  time.Duration(accessMinutes) * time.Minute,
			RefreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: maxRequests,
			Window:      time.Duration(windowSeconds) * time.Second,
		},
		Storage: StorageConfig{
			AccessKey:    getEnv("S3_ACCESS_KEY", "minioadmin"),
			SecretKey:    getEnv("S3_SECRET_KEY", "minioadmin"),
			Bucket:       getEnv("S3_BUCKET", "covers"),
			Region:       getEnv("S3_REGION", "us-east-1"),
			BaseEndpoint: getEnv("S3_BASE_ENDPOINT", "http://127.0.0.1:9000"),
		},
		Sync: SyncConfig{
			UpstreamURL: getEnv("REGION_SYNC_URL", ""),
			Interval:    time.Duration(syncMinutes) * time.Minute,
		},
	}

	return cfg, nil
}

// Addr returns the listen address, e.g. "0.0.0.0:8080".
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
