package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the realtime service.
type Config struct {
	Port      string
	Env       string
	DBURL     string
	RedisURL  string
	SecretKey string

	// Fabric selects the pub/sub backend: "local" for single-instance
	// deployments, "redis" when running multiple API nodes.
	Fabric string
}

// Load reads configuration from environment variables. A .env file is
// loaded first if present (development convenience). Production deployments
// must provide DB_URL and SECRET_KEY; the redis fabric additionally
// requires REDIS_URL.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8000"),
		Env:       getEnv("ENV", "development"),
		DBURL:     strings.TrimSpace(os.Getenv("DB_URL")),
		RedisURL:  strings.TrimSpace(os.Getenv("REDIS_URL")),
		SecretKey: os.Getenv("SECRET_KEY"),
		Fabric:    getEnv("FABRIC", "local"),
	}

	if cfg.Env == "production" {
		if cfg.DBURL == "" {
			panic("DB_URL is required in production")
		}
		if cfg.SecretKey == "" {
			panic("SECRET_KEY is required in production")
		}
		if cfg.Fabric == "redis" && cfg.RedisURL == "" {
			panic("REDIS_URL is required for the redis fabric")
		}
	}

	return cfg
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
