package config

import (
	"fmt"
	"strings"

	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateTranslator(cfg.Translator); err != nil {
		errors = append(errors, err)
	}

	if err := validateRelay(cfg.Relay); err != nil {
		errors = append(errors, err)
	}

	if err := validateStore(cfg.Store); err != nil {
		errors = append(errors, err)
	}

	if err := validateRedis(cfg.Redis); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	// Write timeout stays zero: the SSE stream is a long-lived response.
	if cfg.WriteTimeoutSeconds < 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be non-negative",
		}
	}

	return nil
}

func validateTranslator(cfg TranslatorConfig) error {
	if cfg.BaseURL == "" {
		return &ValidationError{
			Field:   "translator.base_url",
			Message: "translation service base URL is required",
		}
	}

	if cfg.ProbeTimeout <= 0 {
		return &ValidationError{
			Field:   "translator.probe_timeout",
			Message: "probe timeout must be positive",
		}
	}

	if cfg.GenerateTimeout <= cfg.ProbeTimeout {
		return &ValidationError{
			Field:   "translator.generate_timeout",
			Message: "generate timeout must be longer than the probe timeout",
		}
	}

	return nil
}

func validateRelay(cfg RelayConfig) error {
	if cfg.PollInterval <= 0 {
		return &ValidationError{
			Field:   "relay.poll_interval",
			Message: "poll interval must be positive",
		}
	}

	if cfg.Lookback <= 0 {
		return &ValidationError{
			Field:   "relay.lookback",
			Message: "lookback window must be positive",
		}
	}

	if cfg.PageSize < 1 {
		return &ValidationError{
			Field:   "relay.page_size",
			Message: "page size must be at least 1",
		}
	}

	if cfg.SeenCapacity < 1 {
		return &ValidationError{
			Field:   "relay.seen_capacity",
			Message: "seen capacity must be at least 1",
		}
	}

	return nil
}

func validateStore(cfg StoreConfig) error {
	switch cfg.Driver {
	case constants.StoreDriverMemory:
		if cfg.Retention < 1 {
			return &ValidationError{
				Field:   "store.retention",
				Message: "retention must be at least 1 for the memory store",
			}
		}
	case constants.StoreDriverPostgres:
		return validatePostgres(cfg.Postgres)
	default:
		return &ValidationError{
			Field:   "store.driver",
			Message: fmt.Sprintf("unknown store driver: %s (supported: memory, postgres)", cfg.Driver),
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "store.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "store.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "store.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "store.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "store.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if !cfg.Enabled() {
		return nil
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}
