// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: every dependency is constructed and wired
// here, in one place —
//
//	Selector → Store[User]/Store[HistoryRecord] → repositories
//	        → services → handlers → routes
//
// Handlers never touch the store directly and services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/rulesmith/internal/auth"
	"github.com/sakif/rulesmith/internal/config"
	"github.com/sakif/rulesmith/internal/generator"
	"github.com/sakif/rulesmith/internal/handler"
	"github.com/sakif/rulesmith/internal/middleware"
	"github.com/sakif/rulesmith/internal/model"
	"github.com/sakif/rulesmith/internal/repository"
	"github.com/sakif/rulesmith/internal/service"
	"github.com/sakif/rulesmith/internal/storage"
)

// Durable resource files under the storage root.
const (
	usersFile   = "users.json"
	historyFile = "history.json"
)

// Server represents the HTTP server and its dependencies.
type Server struct {
	router   *chi.Mux
	cfg      config.Config
	logger   *slog.Logger
	selector *storage.Selector
}

// New creates a Server, wiring the full dependency graph.
//
// The only hard construction failure is a missing/short JWT secret — the
// whole API is auth-gated, so starting without tokens would serve nothing
// useful. Storage unavailability, by contrast, is soft: the selector
// degrades to in-memory mode and the server starts anyway.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	selector := storage.NewSelector(cfg.DataDir, []string{usersFile, historyFile}, logger)

	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		logger:   logger,
		selector: selector,
	}

	s.setupRoutes(tokens)
	return s, nil
}

// setupRoutes wires middleware, stores, services, handlers, and routes.
//
// Route map:
//
//	GET  /api/health           → liveness + storage mode
//	POST /api/auth/register    → create account
//	POST /api/auth/login       → issue token
//	POST /api/auth/logout      → clear cookie
//	GET  /api/auth/me          → authenticated profile   [auth]
//	POST /api/history/save     → save record             [auth]
//	GET  /api/history/list     → list records            [auth]
//	POST /api/history/delete   → delete record           [auth]
//	POST /api/generate-rules   → proxy to generation API
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	// Global middleware, in order: request ID → real IP → panic recovery →
	// request logging.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Stores and repositories — one Store per collection, both sharing the
	// selector so a failure in either flips the whole process to volatile.
	users := repository.NewUsers(storage.NewStore[model.User](s.selector, usersFile, s.logger))
	history := repository.NewHistory(storage.NewStore[model.HistoryRecord](s.selector, historyFile, s.logger))

	passwords := auth.NewPasswordService()
	gen := generator.NewDeepSeekGenerator(s.cfg.DeepSeekBaseURL, s.cfg.DeepSeekAPIKey, s.cfg.DeepSeekModel)

	authSvc := service.NewAuthService(users, tokens, passwords, s.logger)
	historySvc := service.NewHistoryService(history, s.logger)
	rulesSvc := service.NewRulesService(gen, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, s.logger)
	historyHandler := handler.NewHistoryHandler(historySvc, s.logger)
	rulesHandler := handler.NewRulesHandler(rulesSvc, s.logger)
	healthHandler := handler.NewHealthHandler(s.selector.VolatileMode)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HandleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(tokens))
				r.Get("/me", authHandler.HandleMe)
			})
		})

		r.Route("/history", func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/save", historyHandler.HandleSave)
			r.Get("/list", historyHandler.HandleList)
			r.Post("/delete", historyHandler.HandleDelete)
		})

		r.Post("/generate-rules", rulesHandler.HandleGenerate)
	})
}

// Start starts the HTTP server and blocks until shutdown.
//
// Graceful shutdown: on SIGINT/SIGTERM, stop accepting connections and give
// in-flight requests 30 seconds to finish. There is no storage flush step —
// every write is already synchronous whole-file replacement.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second, // generation calls can run long
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("dataDir", s.cfg.DataDir),
			slog.Bool("volatileStorage", s.selector.VolatileMode()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
