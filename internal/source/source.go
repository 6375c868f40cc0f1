// Package source provides the data sources the dashboard reads repository data from.
package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kurihiro0119/repo-analyzer/internal/collector"
	"github.com/kurihiro0119/repo-analyzer/internal/config"
	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	"github.com/kurihiro0119/repo-analyzer/pkg/client"
)

// Source fetches the data shown on the dashboard for a repository identifier
type Source interface {
	// Name returns the configured data source name
	Name() string

	// Analyze fetches metadata, languages and contributors
	Analyze(ctx context.Context, repo string) (*domain.Analysis, error)

	Tree(ctx context.Context, repo string) ([]domain.DirectoryNode, error)
	Activity(ctx context.Context, repo string) ([]domain.ActivityPoint, error)
	Coverage(ctx context.Context, repo string) (*domain.Coverage, error)
	Stats(ctx context.Context, repo string) (*domain.RepositoryStats, error)
	Issues(ctx context.Context, repo string) (*domain.IssueReport, error)
	PullRequests(ctx context.Context, repo string) (*domain.PullRequestReport, error)
	Releases(ctx context.Context, repo string) ([]domain.Release, error)
	Dependencies(ctx context.Context, repo string) (domain.Dependencies, error)
	Topics(ctx context.Context, repo string) ([]string, error)
}

// New creates the source selected by cfg.DataSource
func New(cfg *config.Config) (Source, error) {
	switch cfg.DataSource {
	case config.SourceProxy:
		return NewProxy(client.NewClient(cfg.AnalyzerURL, nil)), nil
	case config.SourceDirect:
		// a missing language breakdown degrades to an empty chart in this mode
		c, err := collector.NewGitHubCollector(cfg.GitHubToken,
			collector.WithBaseURL(cfg.GitHubAPIURL),
			collector.WithHTTPClient(http.DefaultClient),
			collector.WithOptionalLanguages(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub collector: %w", err)
		}
		return NewDirect(c), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}
