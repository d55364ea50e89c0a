// Package main is the entry point for the my-applications API server.
//
// The main package stays minimal. Its job is to:
//  1. Read configuration (flags, env vars, .env)
//  2. Create dependencies (logger, database, AI clients, worker pool)
//  3. Start the server
//
// All actual logic lives in internal/.
package main

import (
	"context"
	"os"

	"github.com/sakif/my-applications/internal/artifact"
	"github.com/sakif/my-applications/internal/auth"
	"github.com/sakif/my-applications/internal/config"
	"github.com/sakif/my-applications/internal/executor"
	"github.com/sakif/my-applications/internal/logger"
	"github.com/sakif/my-applications/internal/minutes"
	"github.com/sakif/my-applications/internal/repository/sqlstore"
	"github.com/sakif/my-applications/internal/server"
	"github.com/sakif/my-applications/internal/service"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// === 1. CONFIGURATION ===
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		// no configured logger yet
		logger.NewLogger("server", "info").Error().Err(err).Msg("invalid configuration")
		return err
	}

	// === 2. LOGGING ===
	log := logger.NewLogger("server", cfg.LogLevel)

	// === 3. DATABASE ===
	// Open runs the embedded migrations before returning.
	db, err := sqlstore.Open(context.Background(), cfg.DB.Driver, cfg.DB.DSN, log.GetChildLogger())
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.DB.Driver).Msg("failed to open database")
		return err
	}

	// === 4. AUTH ===
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to create token service")
		return err
	}
	authSvc, err := service.NewAuthService(db, tokens, auth.NewPasswordService(cfg.Auth.BcryptCost), service.AuthOptions{
		TokenTTL:          cfg.Auth.TokenTTL,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	})
	if err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to create auth service")
		return err
	}

	// === 5. MINUTES ===
	summarizer, err := minutes.NewSummarizer(cfg.AI, log.GetChildLogger())
	if err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to create summarizer")
		return err
	}
	transcriber, err := minutes.NewTranscriber(cfg.Transcribe, log.GetChildLogger())
	if err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to create transcriber")
		return err
	}
	if cfg.AI.Provider == config.AIProviderGemini && cfg.AI.GeminiAPIKey == "" {
		log.Warn().Msg("AI_GEMINI_API_KEY not set, /ai/mom-generator will answer 503")
	}

	store, err := artifact.NewStore(cfg.Storage.ArtifactDir)
	if err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to prepare artifact directory")
		return err
	}

	pool := executor.NewPool(cfg.Workers.PoolSize, log.GetChildLogger())
	minutesSvc := service.NewMinutesService(summarizer, transcriber, db, store, pool, service.MinutesOptions{
		AITimeout:         cfg.AI.Timeout,
		TranscribeTimeout: cfg.Transcribe.Timeout,
	})

	// === 6. SERVER ===
	srv, err := server.New(cfg.Server, log, server.Deps{
		DB:        db,
		Tokens:    tokens,
		Auth:      authSvc,
		Activity:  service.NewActivityService(db),
		Minutes:   minutesSvc,
		Pool:      pool,
		Artifacts: store,
	})
	if err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to create server")
		return err
	}

	// Start blocks until SIGINT/SIGTERM and closes the database on the way out.
	if err := srv.Start(); err != nil {
		log.Error().Err(err).Msg("server error")
		return err
	}
	return nil
}
