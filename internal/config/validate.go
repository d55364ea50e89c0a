package config

import (
	"errors"
	"fmt"
	"regexp"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	AIProviderGemini  = "gemini"
	AIProviderClassic = "classic"

	TranscribeProviderWhisper = "whisper"
	TranscribeProviderNone    = "none"
)

func (c *Config) validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		fail("SERVER_PORT %d out of range", c.Server.Port)
	}
	if c.Server.CORSOriginPattern != "" {
		if _, err := regexp.Compile(c.Server.CORSOriginPattern); err != nil {
			fail("SERVER_CORS_ORIGIN_PATTERN: %v", err)
		}
	}

	if c.Server.ReadHeaderTimeout <= 0 {
		fail("SERVER_READ_HEADER_TIMEOUT must be positive")
	}
	if c.Server.ReadTimeout < 0 {
		fail("SERVER_READ_TIMEOUT must not be negative")
	}

	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		fail("DB_DRIVER %q must be %q or %q", c.DB.Driver, DriverSQLite, DriverPostgres)
	}
	if c.DB.DSN == "" {
		fail("DB_DSN is required")
	}

	if len(c.Auth.JWTSecret) < 16 {
		fail("AUTH_JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTL < 0 {
		fail("AUTH_TOKEN_TTL must not be negative")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		fail("AUTH_BCRYPT_COST %d must be between 4 and 31", c.Auth.BcryptCost)
	}
	if c.Auth.MinPasswordLength < 1 || c.Auth.MinPasswordLength > 72 {
		fail("AUTH_MIN_PASSWORD_LENGTH %d must be between 1 and 72", c.Auth.MinPasswordLength)
	}

	switch c.AI.Provider {
	case AIProviderGemini, AIProviderClassic:
	default:
		fail("AI_PROVIDER %q must be %q or %q", c.AI.Provider, AIProviderGemini, AIProviderClassic)
	}
	if c.AI.Timeout <= 0 {
		fail("AI_TIMEOUT must be positive")
	}

	switch c.Transcribe.Provider {
	case TranscribeProviderNone:
	case TranscribeProviderWhisper:
		if c.Transcribe.URL == "" {
			fail("TRANSCRIBE_URL is required for the whisper provider")
		}
	default:
		fail("TRANSCRIBE_PROVIDER %q must be %q or %q", c.Transcribe.Provider, TranscribeProviderWhisper, TranscribeProviderNone)
	}
	if c.Transcribe.Timeout <= 0 {
		fail("TRANSCRIBE_TIMEOUT must be positive")
	}

	// A job that hits its deadline must still be able to write its 504.
	if job := max(c.AI.Timeout, c.Transcribe.Timeout); c.Server.WriteTimeout > 0 &&
		c.Server.WriteTimeout <= c.Server.ReadTimeout+job {
		fail("SERVER_WRITE_TIMEOUT %s must exceed SERVER_READ_TIMEOUT + max(AI_TIMEOUT, TRANSCRIBE_TIMEOUT) = %s",
			c.Server.WriteTimeout, c.Server.ReadTimeout+job)
	}

	if c.Workers.PoolSize < 1 {
		fail("WORKERS_POOL_SIZE must be at least 1")
	}
	if c.Storage.ArtifactDir == "" {
		fail("STORAGE_ARTIFACT_DIR is required")
	}

	return errors.Join(errs...)
}
