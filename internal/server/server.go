// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware and
// routes, and decides:
//   - Which URL patterns map to which handler functions
//   - Which routes need a token and which are rate limited
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config → logger, sqlstore.DB, storage.ImageStore, TokenService, PasswordService
//
// Server.New() creates:
//
//	repositories (from the DB) → services → handlers → routes
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes) rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/recipe-share/internal/apidocs"
	"github.com/sakif/recipe-share/internal/auth"
	"github.com/sakif/recipe-share/internal/handler"
	"github.com/sakif/recipe-share/internal/metrics"
	"github.com/sakif/recipe-share/internal/middleware"
	"github.com/sakif/recipe-share/internal/repository/sqlstore"
	"github.com/sakif/recipe-share/internal/respond"
	"github.com/sakif/recipe-share/internal/service"
	"github.com/sakif/recipe-share/internal/storage"
	"github.com/sakif/recipe-share/internal/storage/local"
)

// jsonBodyLimit caps request bodies that never carry a file.
const jsonBodyLimit = 1 << 20

// Config holds server configuration.
type Config struct {
	Port              int
	MaxUploadBytes    int64
	AuthRatePerMinute int // 0 disables rate limiting on /register and /login
	AuthRateBurst     int
	MetricsEnabled    bool
}

// Deps are the long-lived resources the server is built from. The server
// takes ownership of DB and closes it on shutdown.
type Deps struct {
	DB        *sqlstore.DB
	Images    storage.ImageStore
	Tokens    *auth.TokenService
	Passwords *auth.PasswordService
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config Config
	deps   Deps
	docs   *apidocs.Docs
	logger *slog.Logger
}

// New creates a Server and registers every route.
//
// Each layer only receives what it needs:
//   - Services get repository interfaces (not the concrete sqlstore.DB)
//   - Handlers get services (not repositories)
func New(cfg Config, deps Deps, logger *slog.Logger) (*Server, error) {
	if deps.DB == nil || deps.Images == nil || deps.Tokens == nil || deps.Passwords == nil {
		return nil, errors.New("server: missing dependency")
	}

	docs, err := apidocs.New()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		deps:   deps,
		docs:   docs,
		logger: logger,
	}
	s.setupRoutes()

	return s, nil
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /register               → create account           (rate limited)
//	POST   /login                  → get a token              (rate limited)
//	GET    /users/profile          → own profile              (auth)
//	PUT    /users/profile-photo    → replace profile photo    (auth)
//	GET    /recipes                → list, newest first
//	GET    /recipes/search?q=      → search name/ingredients
//	GET    /recipes/{id}           → one recipe
//	POST   /recipes                → create                   (auth)
//	PUT    /recipes/{id}           → partial update           (auth, owner)
//	DELETE /recipes/{id}           → delete                   (auth, owner)
//	GET    /recipes/{id}/comments  → list comments
//	POST   /recipes/{id}/comments  → add comment              (auth)
//	PUT    /comments/{id}          → edit comment             (auth, owner)
//	DELETE /comments/{id}          → delete comment           (auth, owner)
//	GET    /uploads/*              → stored images (local storage only)
//	GET    /healthz                → liveness + database ping
//	GET    /metrics                → Prometheus metrics
//	GET    /api-docs               → Swagger UI (+ /openapi.json, /openapi.yaml)
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns a unique ID to each request (for tracing)
//  2. RealIP: extracts the client IP from proxy headers (the rate limiter keys on it)
//  3. Recoverer: catches panics and returns 500 instead of crashing
//  4. Instrument: Prometheus counters, labelled by route pattern
//  5. Logger: one log line per request
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	var m *metrics.Metrics
	if s.config.MetricsEnabled {
		m = metrics.New()
		r.Use(m.Instrument)
	}

	r.Use(middleware.Logger(s.logger))

	// chi panics on Use after the first route, so routes start here.
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusNotFound, respond.ErrorBody{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusMethodNotAllowed, respond.ErrorBody{Error: "method not allowed"})
	})

	r.Get("/healthz", s.handleHealth)
	r.Mount("/api-docs", s.docs.Routes("/api-docs"))

	// === Stored images ===
	// Only the local backend needs the API to serve files. S3 images are
	// fetched straight from the bucket's public URL.
	if store, ok := s.deps.Images.(*local.Store); ok {
		prefix := store.URLPrefix()
		fileServer := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(store.Dir())))
		r.Handle(prefix+"/*", noDirectoryListing(fileServer))
	}

	// === Dependency chain ===
	users := s.deps.DB.Users()
	recipes := s.deps.DB.Recipes()
	comments := s.deps.DB.Comments()

	authService := service.NewAuthService(users, s.deps.Tokens, s.deps.Passwords, s.logger)
	userService := service.NewUserService(users, s.deps.Images, s.logger)
	recipeService := service.NewRecipeService(recipes, s.deps.Images, s.logger)
	commentService := service.NewCommentService(comments, s.logger)

	authHandler := handler.NewAuthHandler(authService, jsonBodyLimit, s.logger)
	userHandler := handler.NewUserHandler(userService, s.config.MaxUploadBytes, s.logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, s.config.MaxUploadBytes, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, jsonBodyLimit, s.logger)

	// === Public routes ===
	limiter := middleware.NewRateLimiter(s.config.AuthRatePerMinute, s.config.AuthRateBurst, s.logger)
	r.With(limiter.Handler).Post("/register", authHandler.HandleRegister)
	r.With(limiter.Handler).Post("/login", authHandler.HandleLogin)

	r.Get("/recipes", recipeHandler.HandleList)
	r.Get("/recipes/search", recipeHandler.HandleSearch)
	r.Get("/recipes/{id}", recipeHandler.HandleGet)
	r.Get("/recipes/{id}/comments", commentHandler.HandleList)

	// === Authenticated routes ===
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.deps.Tokens, s.logger))

		r.Get("/users/profile", userHandler.HandleProfile)
		r.Put("/users/profile-photo", userHandler.HandleUpdatePhoto)

		r.Post("/recipes", recipeHandler.HandleCreate)
		r.Put("/recipes/{id}", recipeHandler.HandleUpdate)
		r.Delete("/recipes/{id}", recipeHandler.HandleDelete)

		r.Post("/recipes/{id}/comments", commentHandler.HandleCreate)
		r.Put("/comments/{id}", commentHandler.HandleUpdate)
		r.Delete("/comments/{id}", commentHandler.HandleDelete)
	})
}

// handleHealth reports 200 only when the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.deps.DB.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		respond.JSON(w, http.StatusServiceUnavailable, respond.ErrorBody{Error: "database unavailable"})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// noDirectoryListing hides http.FileServer's directory index pages.
func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			respond.JSON(w, http.StatusNotFound, respond.ErrorBody{Error: "route not found"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database (flushes the WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.deps.DB.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
		// Uploads up to MaxUploadBytes have to arrive within ReadTimeout.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
