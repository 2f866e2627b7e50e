package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type StorageBackend string

const (
	BackendMemory   StorageBackend = "memory"
	BackendPostgres StorageBackend = "postgres"
	BackendMongo    StorageBackend = "mongo"
	BackendRedis    StorageBackend = "redis"
)

// APIConfig is everything cmd/api needs to wire the planner.
type APIConfig struct {
	Port     string
	LogLevel string

	Storage     StorageBackend
	DatabaseURL string

	Catalog       StorageBackend
	MongoURI      string
	MongoDatabase string

	PartyOverrides   StorageBackend
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	PartyOverrideTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string
	DefaultCurrency    string
}

func LoadAPIConfigFromEnv() (APIConfig, error) {
	cfg := APIConfig{
		Port:               getenv("PORT", "8080"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		Storage:            StorageBackend(strings.ToLower(getenv("STORAGE_BACKEND", string(BackendMemory)))),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Catalog:            StorageBackend(strings.ToLower(getenv("CATALOG_BACKEND", string(BackendMemory)))),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDatabase:      getenv("MONGO_DATABASE", "planner"),
		PartyOverrides:     StorageBackend(strings.ToLower(getenv("PARTY_OVERRIDE_BACKEND", string(BackendMemory)))),
		RedisAddr:          getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RateLimitRPS:       20,
		RateLimitBurst:     40,
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		DefaultCurrency:    strings.ToUpper(getenv("DEFAULT_CURRENCY", "EUR")),
	}

	switch cfg.Storage {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return APIConfig{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return APIConfig{}, fmt.Errorf("STORAGE_BACKEND must be memory or postgres, got %q", cfg.Storage)
	}
	switch cfg.Catalog {
	case BackendMemory:
	case BackendMongo:
		if cfg.MongoURI == "" {
			return APIConfig{}, fmt.Errorf("MONGO_URI is required when CATALOG_BACKEND=mongo")
		}
	default:
		return APIConfig{}, fmt.Errorf("CATALOG_BACKEND must be memory or mongo, got %q", cfg.Catalog)
	}
	switch cfg.PartyOverrides {
	case BackendMemory, BackendRedis:
	default:
		return APIConfig{}, fmt.Errorf("PARTY_OVERRIDE_BACKEND must be memory or redis, got %q", cfg.PartyOverrides)
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return APIConfig{}, fmt.Errorf("REDIS_DB must be a non-negative integer, got %q", v)
		}
		cfg.RedisDB = n
	}
	if v := os.Getenv("PARTY_OVERRIDE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return APIConfig{}, fmt.Errorf("PARTY_OVERRIDE_TTL must be a duration (e.g. 24h): %w", err)
		}
		cfg.PartyOverrideTTL = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return APIConfig{}, fmt.Errorf("RATE_LIMIT_RPS must be a positive number, got %q", v)
		}
		cfg.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return APIConfig{}, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer, got %q", v)
		}
		cfg.RateLimitBurst = n
	}
	if len(cfg.DefaultCurrency) != 3 {
		return APIConfig{}, fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code, got %q", cfg.DefaultCurrency)
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
