package config

import (
	"fmt"
	"net/url"
	"strings"

	"interactbot/pkg/endpoint"
	"interactbot/pkg/snowflake"
	"interactbot/pkg/verify"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Has reports whether field failed validation.
func (e ValidationErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)

	v.validateApplication(&cfg.Application)
	v.validateServer(&cfg.Server)
	v.validateAPI(&cfg.API)
	v.validateGuard(&cfg.Guard, &cfg.Redis)
	v.validateLogger(&cfg.Logger)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

func (v *Validator) validateApplication(cfg *ApplicationConfig) {
	if strings.TrimSpace(cfg.ID) == "" {
		v.addError("application.id", "is required (APPLICATION_ID)")
	} else if _, err := snowflake.Timestamp(cfg.ID); err != nil {
		v.addError("application.id", "must be a numeric snowflake")
	}

	if strings.TrimSpace(cfg.Secret) == "" {
		v.addError("application.secret", "is required (APPLICATION_SECRET)")
	}

	if strings.TrimSpace(cfg.PublicKey) == "" {
		v.addError("application.public_key", "is required (APPLICATION_PUBLIC_KEY)")
	} else if _, err := verify.ParsePublicKey(cfg.PublicKey); err != nil {
		v.addError("application.public_key", err.Error())
	}
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		v.addError("server.port", fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Port))
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		v.addError("server.path", "must start with /")
	}
	if cfg.Path == "/health" {
		v.addError("server.path", "conflicts with the health endpoint")
	}
	if cfg.ReadTimeoutSeconds < 0 {
		v.addError("server.read_timeout_seconds", "must not be negative")
	}
	if cfg.MaxBodyBytes < 0 {
		v.addError("server.max_body_bytes", "must not be negative")
	}
}

func (v *Validator) validateAPI(cfg *APIConfig) {
	if u, err := url.ParseRequestURI(cfg.BaseURL); err != nil || u.Host == "" {
		v.addError("api.base_url", "must be an absolute URL")
	}
	if !endpoint.IsSupportedVersion(cfg.Version) {
		v.addError("api.version", fmt.Sprintf("must be one of %s", strings.Join(endpoint.SupportedVersions, ", ")))
	}
	if cfg.TimeoutSeconds <= 0 {
		v.addError("api.timeout_seconds", "must be positive")
	}
}

func (v *Validator) validateGuard(cfg *GuardConfig, redis *RedisConfig) {
	switch cfg.Backend {
	case "memory", "none":
	case "redis":
		if strings.TrimSpace(redis.Addr) == "" {
			v.addError("redis.addr", "is required when guard.backend is redis")
		}
	default:
		v.addError("guard.backend", fmt.Sprintf("unknown backend %q (memory, redis, none)", cfg.Backend))
	}
	if cfg.Backend != "none" && cfg.TTLMinutes <= 0 {
		v.addError("guard.ttl_minutes", "must be positive")
	}
}

func (v *Validator) validateLogger(cfg *LoggerConfig) {
	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		v.addError("logger.level", fmt.Sprintf("unknown level %q", cfg.Level))
	}
}

func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// ValidateConfig is a convenience function to validate configuration.
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
