// Package cli provides common CLI initialization utilities.
// It consolidates the startup and shutdown steps shared by cmd/ventas and
// cmd/ventas-import.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ventas/internal/config"
	"ventas/internal/log"
	"ventas/internal/storage"
)

// SetupLogger initializes structured logging from LOG_LEVEL and LOG_FORMAT
// style values and installs it as the default logger.
func SetupLogger(level, format string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	if format != "" {
		cfg.Format = format
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// SetupLoggerFromEnv is SetupLogger fed by the environment.
func SetupLoggerFromEnv() *log.Logger {
	return SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// LoadEnvFile loads .env files for local development. With no arguments it
// loads ./.env. Missing files are ignored; variables already set win.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadConfig loads configuration and validates it.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err.Error(), "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal handler.
func GracefulShutdown(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// ShutdownStep is one named part of the shutdown sequence.
type ShutdownStep struct {
	Name string
	Fn   func(context.Context) error
}

// Shutdown runs steps in order under a shared timeout. Every step runs even
// when an earlier one fails; the failures are joined.
func Shutdown(logger *log.Logger, timeout time.Duration, steps ...ShutdownStep) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, step := range steps {
		if err := step.Fn(ctx); err != nil {
			logger.Error("Shutdown step failed", log.FieldOperation, step.Name, log.FieldError, err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
			continue
		}
		logger.Debug("Shutdown step complete", log.FieldOperation, step.Name)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Warn("Shutdown timeout reached")
	} else {
		logger.Info("Shutdown complete")
	}
	return errors.Join(errs...)
}
