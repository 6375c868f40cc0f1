package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/repo-analyzer/internal/config"
	"github.com/kurihiro0119/repo-analyzer/internal/dashboard"
	"github.com/kurihiro0119/repo-analyzer/internal/logging"
	"github.com/kurihiro0119/repo-analyzer/internal/render"
	"github.com/kurihiro0119/repo-analyzer/internal/source"
)

var (
	outputJSON bool
	dataSource string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "repo-analyzer",
	Short: "GitHub repository analyzer",
	Long: `A CLI tool for analyzing public GitHub repositories.

It reports languages, contributors, commit activity, directory structure,
test coverage, issues, pull requests, releases, dependency manifests and
topics, using either the analysis service or the GitHub API directly.`,
	SilenceUsage: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [owner/name]",
	Short: "Analyze a repository",
	Long:  `Fetch and display the full analysis of a GitHub repository.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	analyzeCmd.Flags().StringVar(&dataSource, "source", "", "data source: proxy or direct (default from DATA_SOURCE)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 0, "timeout for the primary request (default from PRIMARY_TIMEOUT)")

	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// progress prints step markers to stderr as they activate
type progress struct {
	mu    sync.Mutex
	steps []string
}

func (p *progress) OnState(dashboard.State) {}

func (p *progress) OnStep(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < len(p.steps) {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.GreenString("✓"), p.steps[i])
	}
}

func (p *progress) OnRegion(render.Region, *dashboard.Report) {}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataSource != "" {
		cfg.DataSource = dataSource
	}
	if timeout > 0 {
		cfg.PrimaryTimeout = timeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// keep stdout for the report
	logOutput := cfg.LogOutput
	if logOutput == "stdout" || logOutput == "-" {
		logOutput = "stderr"
	}
	if err := logging.Configure(cfg.LogFormat, cfg.LogLevel, logOutput); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	src, err := source.New(cfg)
	if err != nil {
		return err
	}

	opts := []dashboard.Option{dashboard.WithTimeout(cfg.PrimaryTimeout), dashboard.WithStepInterval(cfg.StepInterval)}
	if outputJSON {
		opts = append(opts, dashboard.WithStepInterval(0))
	}
	orch := dashboard.NewOrchestrator(src, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	state, ok := orch.Run(ctx, dashboard.State{}, args[0], &progress{steps: orch.Steps()})
	if !ok {
		return errors.New("repository must not be blank")
	}
	if state.Phase == dashboard.PhaseError {
		fmt.Fprintln(os.Stderr, color.RedString(state.Error))
		return errors.New(state.Error)
	}

	if outputJSON {
		return writeJSON(os.Stdout, state.Report)
	}
	writeTables(os.Stdout, state.Report)
	return nil
}
