package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kurihiro0119/repo-analyzer/internal/api"
	"github.com/kurihiro0119/repo-analyzer/internal/collector"
	"github.com/kurihiro0119/repo-analyzer/internal/config"
	"github.com/kurihiro0119/repo-analyzer/internal/errutil"
	"github.com/kurihiro0119/repo-analyzer/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logging.Configure(cfg.LogFormat, cfg.LogLevel, cfg.LogOutput); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	if err := errutil.InitSentry(cfg.SentryDSN, cfg.SentryEnv); err != nil {
		return err
	}
	defer sentry.Flush(2 * time.Second)

	logger := logging.Default()
	logger.Info("Configuration loaded", "config", cfg)

	// Initialize collector
	coll, err := collector.NewGitHubCollector(cfg.GitHubToken, collector.WithBaseURL(cfg.GitHubAPIURL))
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub collector: %w", err)
	}

	// Initialize handler and routes
	handler := api.NewHandler(coll)
	router := api.SetupRoutes(handler, cfg.AllowedOrigins)

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", "addr", addr, "authenticated", cfg.GitHubToken != "")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
