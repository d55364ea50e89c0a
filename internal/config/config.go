// Package config loads the service configuration.
//
// Sources, highest precedence first:
//  1. command-line flags (only the ones explicitly passed)
//  2. environment variables (after .env is loaded into the environment)
//  3. envDefault values declared on the struct tags below
package config

import "time"

// Config is the top-level configuration. Nested groups share an env prefix.
type Config struct {
	Server     Server     `envPrefix:"SERVER_"`
	DB         DB         `envPrefix:"DB_"`
	Auth       Auth       `envPrefix:"AUTH_"`
	AI         AI         `envPrefix:"AI_"`
	Transcribe Transcribe `envPrefix:"TRANSCRIBE_"`
	Workers    Workers    `envPrefix:"WORKERS_"`
	Storage    Storage    `envPrefix:"STORAGE_"`

	// LOG_LEVEL: zerolog level name.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Server struct {
	Port              int           `env:"PORT" envDefault:"8000"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	// ReadTimeout bounds reading the whole request, uploads included.
	ReadTimeout time.Duration `env:"READ_TIMEOUT" envDefault:"2m"`
	// WriteTimeout is counted from the end of the request headers, so it has
	// to cover the body upload plus the longest AI or transcription job.
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"5m"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// MaxUploadBytes caps multipart bodies on the media endpoints.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"41943040"`

	CORSOrigins       []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000"`
	CORSOriginPattern string   `env:"CORS_ORIGIN_PATTERN" envDefault:"^https://.*\\.vercel\\.app$"`
}

// DB selects the relational store. Driver is "sqlite" or "postgres".
// For sqlite the DSN is a file path (or ":memory:").
type DB struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DSN" envDefault:"data/my-applications.db"`
}

type Auth struct {
	JWTSecret         string        `env:"JWT_SECRET"`
	Issuer            string        `env:"ISSUER" envDefault:"my-applications"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12"`
	MinPasswordLength int           `env:"MIN_PASSWORD_LENGTH" envDefault:"6"`
}

// AI configures the minutes summarizer. Provider is "gemini" or "classic".
type AI struct {
	Provider      string        `env:"PROVIDER" envDefault:"gemini"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL"`
	GeminiBaseURL string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"60s"`
	// RateLimit is requests per second towards the AI service; Burst is the bucket size.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"1"`
	Burst     int     `env:"BURST" envDefault:"2"`
}

// Transcribe configures speech-to-text. Provider is "whisper" or "none".
type Transcribe struct {
	Provider string        `env:"PROVIDER" envDefault:"none"`
	URL      string        `env:"URL"`
	Model    string        `env:"MODEL" envDefault:"base"`
	APIKey   string        `env:"API_KEY"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"120s"`
}

type Workers struct {
	PoolSize int `env:"POOL_SIZE" envDefault:"4"`
}

type Storage struct {
	ArtifactDir string `env:"ARTIFACT_DIR" envDefault:"output"`
}
