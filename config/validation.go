package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a configuration
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
}

// Has reports whether a problem was recorded for field
func (errs ValidationErrors) Has(field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ValidateConfig checks that the configuration is usable. The record store
// connection string is the only value without a default.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.StoreURI == "" {
		errs = append(errs, ValidationError{Field: "MONGO_URI", Message: "record store connection string is required"})
	}
	if cfg.StoreName == "" {
		errs = append(errs, ValidationError{Field: "MONGO_DB", Message: "database name must not be empty"})
	}
	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}
	if cfg.RateLimitPerMinute <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_MINUTE", Message: "must be positive"})
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "REQUEST_TIMEOUT", Message: "must be positive"})
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "SHUTDOWN_TIMEOUT", Message: "must be positive"})
	}
	if !logLevels[cfg.LogLevel] {
		errs = append(errs, ValidationError{Field: "LOG_LEVEL", Message: fmt.Sprintf("unknown level %q", cfg.LogLevel)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
