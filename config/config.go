// Package config loads the service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Audit backends.
const (
	BackendMongo = "mongo"
	BackendRedis = "redis"
)

// Config is the service configuration.
type Config struct {
	Addr              string
	MongoURI          string
	MongoDB           string
	AuditBackend      string
	RedisAddr         string
	GeminiAPIKey      string
	GeminiModel       string
	CapabilityTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Load reads the configuration of service from the environment.
// A service "QUERYGUARD" reads QUERYGUARD_ADDR, QUERYGUARD_MONGO_URI and so on.
// The Gemini API key falls back to API_KEY.
func Load(service string) (Config, error) {
	env := func(name, def string) string {
		if v := os.Getenv(service + "_" + name); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Addr:         env("ADDR", ":3011"),
		MongoURI:     env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      env("MONGO_DB", "AnomalyDetector"),
		AuditBackend: env("AUDIT_BACKEND", BackendMongo),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		GeminiAPIKey: env("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:  env("GEMINI_MODEL", "gemini-1.5-flash"),
	}

	var err error
	cfg.CapabilityTimeout, err = duration(service+"_CAPABILITY_TIMEOUT", env("CAPABILITY_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = duration(service+"_SHUTDOWN_TIMEOUT", env("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, err
	}

	switch cfg.AuditBackend {
	case BackendMongo, BackendRedis:
	default:
		return Config{}, fmt.Errorf("%s_AUDIT_BACKEND: unknown backend %q", service, cfg.AuditBackend)
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New(service + "_GEMINI_API_KEY (or API_KEY) is required")
	}
	return cfg, nil
}

func duration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %v", name, d)
	}
	return d, nil
}
