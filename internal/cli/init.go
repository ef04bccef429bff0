// Package cli provides the budgetctl commands and the initialization helpers
// shared by cmd/budget and cmd/budgetctl.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/storage"
)

// SetupLogger builds a component logger writing text to w at the given level
// and installs it as the slog default. Unknown levels fall back to info.
func SetupLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info level", "error", err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldOperation, log.OpValidate, "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, log.FieldPath, dbPath)
		os.Exit(1)
	}
	return repo.WithLogger(logger)
}

// Shutdowner is anything that can stop within a deadline, such as *http.Server.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// GracefulShutdown waits for ctx to be cancelled, typically by a signal via
// signal.NotifyContext, then stops srv within timeout and runs cleanup.
func GracefulShutdown(ctx context.Context, logger *log.Logger, srv Shutdowner, timeout time.Duration, cleanup func()) error {
	<-ctx.Done()
	logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	if cleanup != nil {
		cleanup()
	}
	logger.Info("Shutdown complete")
	return err
}
