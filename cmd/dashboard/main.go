package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kurihiro0119/repo-analyzer/internal/config"
	"github.com/kurihiro0119/repo-analyzer/internal/dashboard"
	"github.com/kurihiro0119/repo-analyzer/internal/errutil"
	"github.com/kurihiro0119/repo-analyzer/internal/logging"
	"github.com/kurihiro0119/repo-analyzer/internal/source"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.Configure(cfg.LogFormat, cfg.LogLevel, cfg.LogOutput); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	if err := errutil.InitSentry(cfg.SentryDSN, cfg.SentryEnv); err != nil {
		return err
	}
	defer sentry.Flush(2 * time.Second)

	src, err := source.New(cfg)
	if err != nil {
		return err
	}
	orch := dashboard.NewOrchestrator(src,
		dashboard.WithTimeout(cfg.PrimaryTimeout),
		dashboard.WithStepInterval(cfg.StepInterval),
	)

	addr := fmt.Sprintf("%s:%s", cfg.DashboardHost, cfg.DashboardPort)
	server := dashboard.NewServer(addr, orch)
	logging.Default().Info("Dashboard configured", "source", src.Name(), "analyzer", cfg.AnalyzerURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
