// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware, and
// routes, and owns the shutdown order:
//
//	stop accepting connections → drain requests → drain worker pool → close DB
//
// The services themselves are built in cmd/server/main.go and handed in via
// Deps, so tests can assemble a Server around an in-memory database.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/my-applications/internal/artifact"
	"github.com/sakif/my-applications/internal/auth"
	"github.com/sakif/my-applications/internal/config"
	"github.com/sakif/my-applications/internal/executor"
	"github.com/sakif/my-applications/internal/handler"
	"github.com/sakif/my-applications/internal/logger"
	"github.com/sakif/my-applications/internal/middleware"
	"github.com/sakif/my-applications/internal/service"
)

// ServiceName is reported by GET /.
const ServiceName = "my-applications"

// Database is what the server needs from the store beyond the services:
// a health check and a handle to close on shutdown.
type Database interface {
	handler.Pinger
	Close() error
}

// Deps are the already-constructed components the routes are wired to.
type Deps struct {
	DB        Database
	Tokens    auth.TokenVerifier
	Auth      *service.AuthService
	Activity  *service.ActivityService
	Minutes   handler.MinutesGenerator
	Pool      *executor.Pool
	Artifacts *artifact.Store
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config config.Server
	log    *logger.Logger
	deps   Deps
}

// New creates a Server and registers every route.
func New(cfg config.Server, log *logger.Logger, deps Deps) (*Server, error) {
	if deps.DB == nil || deps.Tokens == nil || deps.Auth == nil || deps.Activity == nil || deps.Minutes == nil || deps.Artifacts == nil {
		return nil, errors.New("server: missing dependency")
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		log:    log,
		deps:   deps,
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /                  → service banner
// GET    /health            → DB ping
// POST   /auth/signup       → create account, returns token
// POST   /auth/login        → returns token
// GET    /auth/me           → current user            [bearer]
// DELETE /auth/me           → delete account + data   [bearer]
// *      /user/recent       → recently used tools      [bearer]
// *      /user/usage        → per-tool usage counters  [bearer]
// *      /user/favourites   → favourite toggles        [bearer]
// *      /user/suggestions  → suggestion box           [bearer]
// POST   /ai/mom-generator  → AI minutes (multipart)
// GET    /ai/models         → AI models usable for generation
// POST   /meeting-mom       → classic minutes + text artifact (multipart)
// POST   /transcribe/local  → speech-to-text (multipart)
// GET    /output/*          → generated artifacts
//
// MIDDLEWARE ORDER MATTERS:
// TraceID runs before Logger so the request log line carries the trace_id,
// and Recoverer sits inside Logger so a panic is still logged as a 500.
func (s *Server) setupRoutes() error {
	corsOpts := cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.config.CORSOriginPattern != "" {
		pattern, err := regexp.Compile(s.config.CORSOriginPattern)
		if err != nil {
			return fmt.Errorf("compiling CORS origin pattern: %w", err)
		}
		allowed := make(map[string]bool, len(s.config.CORSOrigins))
		for _, o := range s.config.CORSOrigins {
			allowed[o] = true
		}
		// AllowOriginFunc replaces AllowedOrigins when set, so the explicit
		// list is checked here too.
		corsOpts.AllowOriginFunc = func(_ *http.Request, origin string) bool {
			return allowed[origin] || pattern.MatchString(origin)
		}
	}

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.TraceID(s.log))
	s.router.Use(middleware.Logger)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CrossOriginResource)
	s.router.Use(cors.Handler(corsOpts))

	health := handler.NewHealthHandler(s.deps.DB, ServiceName)
	authHandler := handler.NewAuthHandler(s.deps.Auth)
	activityHandler := handler.NewActivityHandler(s.deps.Activity)
	minutesHandler := handler.NewMinutesHandler(s.deps.Minutes, s.config.MaxUploadBytes)

	requireUser := auth.RequireUser(s.deps.Tokens, s.deps.Auth)

	s.router.Get("/", health.HandleRoot)
	s.router.Get("/health", health.HandleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/me", authHandler.HandleMe)
			r.Delete("/me", authHandler.HandleDeleteMe)
		})
	})

	s.router.Route("/user", func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/recent", activityHandler.GetRecent)
		r.Post("/recent", activityHandler.PostRecent)
		r.Delete("/recent", activityHandler.DeleteRecent)

		r.Get("/usage", activityHandler.GetUsage)
		r.Post("/usage", activityHandler.PostUsage)
		r.Delete("/usage", activityHandler.DeleteUsage)

		r.Get("/favourites", activityHandler.GetFavourites)
		r.Post("/favourites", activityHandler.PostFavourites)
		r.Delete("/favourites", activityHandler.DeleteFavourites)

		r.Get("/suggestions", activityHandler.GetSuggestions)
		r.Post("/suggestions", activityHandler.PostSuggestions)
		r.Delete("/suggestions", activityHandler.DeleteSuggestions)
	})

	s.router.Post("/ai/mom-generator", minutesHandler.HandleAIMinutes)
	s.router.Get("/ai/models", minutesHandler.HandleModels)
	s.router.Post("/meeting-mom", minutesHandler.HandleClassicMinutes)
	s.router.Post("/transcribe/local", minutesHandler.HandleTranscribe)

	// GET /output/abc.pdf → {ArtifactDir}/abc.pdf
	fileServer := http.FileServer(http.Dir(s.deps.Artifacts.Dir()))
	s.router.Handle(artifact.PublicPrefix+"*", http.StripPrefix(artifact.PublicPrefix, fileServer))

	return nil
}

// HTTPServer builds the *http.Server with the configured address and
// timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled or the listener fails.
//
// SHUTDOWN ORDER:
//  1. Stop accepting new HTTP connections and wait for in-flight requests
//     (bounded by ShutdownTimeout)
//  2. Wait for pool jobs whose callers already gave up on them
//  3. Close the database
func (s *Server) Run(ctx context.Context) error {
	defer s.deps.DB.Close()

	srv := s.HTTPServer()

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info().
			Int("port", s.config.Port).
			Str("url", fmt.Sprintf("http://localhost:%d", s.config.Port)).
			Msg("server starting")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if s.deps.Pool != nil {
		s.deps.Pool.Wait()
	}
	s.log.Info().Msg("server stopped gracefully")
	return nil
}
