// Package main is the entry point for the rulesmith server.
//
// main stays minimal: load configuration, build the logger, hand off to
// internal/server. All actual logic lives in the imported packages.
package main

import (
	"os"

	"log/slog"

	"github.com/sakif/rulesmith/internal/config"
	"github.com/sakif/rulesmith/internal/server"
)

func main() {
	cfg := config.Load()

	level := slog.LevelDebug
	if cfg.AppEnv == "production" {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	if cfg.JWTSecret == "" {
		// Refuse to start without a signing secret — every protected route
		// depends on it, and a defaulted secret would mean forgeable tokens.
		logger.Error("JWT_SECRET is not set; set it to a long random string, e.g. JWT_SECRET=$(openssl rand -hex 32)")
		os.Exit(1)
	}

	if cfg.DeepSeekAPIKey == "" {
		logger.Warn("DEEPSEEK_API_KEY not set — /api/generate-rules will return failures")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
