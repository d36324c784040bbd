package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultServerPort     = "3000"
	defaultStoreName      = "recipeBook"
	defaultLogLevel       = "info"
	defaultRateLimit      = 60
	defaultRequestTimeout = 10 * time.Second
	defaultShutdown       = 10 * time.Second
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost      string
	ServerPort      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Record store configuration. StoreURI selects the backend by scheme.
	StoreURI  string
	StoreName string

	// Redis backs the shared rate limiter; empty means an in-process limiter.
	RedisURL string

	RateLimitPerMinute int
	CORSAllowedOrigins []string
	LogLevel           string
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	var err error
	switch env {
	case CI, Development, Test:
		err = loadFrom(cfg, os.Getenv)
	case Production:
		err = loadFrom(cfg, secretOrEnv)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFrom populates cfg using lookup and applies defaults for anything unset.
// Malformed numeric values are reported together.
func loadFrom(cfg *Config, lookup func(string) string) error {
	var errs ValidationErrors

	cfg.ServerHost = lookup("SERVER_HOST")
	cfg.ServerPort = valueOr(lookup("SERVER_PORT"), defaultServerPort)

	cfg.StoreURI = lookup("MONGO_URI")
	if cfg.StoreURI == "" {
		cfg.StoreURI = lookup("DATABASE_URL")
	}
	cfg.StoreName = valueOr(lookup("MONGO_DB"), defaultStoreName)
	cfg.RedisURL = lookup("REDIS_URL")
	cfg.LogLevel = strings.ToLower(valueOr(lookup("LOG_LEVEL"), defaultLogLevel))

	cfg.RateLimitPerMinute = defaultRateLimit
	if v := lookup("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_MINUTE", Message: fmt.Sprintf("not an integer: %q", v)})
		} else {
			cfg.RateLimitPerMinute = n
		}
	}

	cfg.RequestTimeout = defaultRequestTimeout
	if v := lookup("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "REQUEST_TIMEOUT", Message: fmt.Sprintf("not a duration: %q", v)})
		} else {
			cfg.RequestTimeout = d
		}
	}

	cfg.ShutdownTimeout = defaultShutdown
	if v := lookup("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "SHUTDOWN_TIMEOUT", Message: fmt.Sprintf("not a duration: %q", v)})
		} else {
			cfg.ShutdownTimeout = d
		}
	}

	cfg.CORSAllowedOrigins = splitList(valueOr(lookup("CORS_ALLOWED_ORIGINS"), "*"))

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// secretOrEnv prefers a Docker secret and falls back to the environment.
// Secret files use the lower-cased variable name, e.g. /run/secrets/mongo_uri.
func secretOrEnv(key string) string {
	if v := readSecret(strings.ToLower(key)); v != "" {
		return v
	}
	return os.Getenv(key)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
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
