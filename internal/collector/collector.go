package collector

import (
	"context"
	"net/http"
	"time"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

// Collector defines the interface for collecting repository data from GitHub
type Collector interface {
	// GetAnalysis retrieves repository metadata, languages and the top contributors
	GetAnalysis(ctx context.Context, repo domain.RepoID) (*domain.Analysis, error)

	// GetTree retrieves the directory structure of the default branch
	GetTree(ctx context.Context, repo domain.RepoID) ([]domain.DirectoryNode, error)

	// GetActivity retrieves weekly commit counts of the most recent commits
	GetActivity(ctx context.Context, repo domain.RepoID) ([]domain.ActivityPoint, error)

	// GetCoverage detects a coverage percentage from the README badge or a coverage file
	GetCoverage(ctx context.Context, repo domain.RepoID) (*domain.Coverage, error)

	// GetStats retrieves extended repository statistics
	GetStats(ctx context.Context, repo domain.RepoID) (*domain.RepositoryStats, error)

	// GetIssues retrieves issue totals and the most recent issues
	GetIssues(ctx context.Context, repo domain.RepoID) (*domain.IssueReport, error)

	// GetPullRequests retrieves pull request totals and the most recent pull requests
	GetPullRequests(ctx context.Context, repo domain.RepoID) (*domain.PullRequestReport, error)

	// GetReleases retrieves the latest releases
	GetReleases(ctx context.Context, repo domain.RepoID) ([]domain.Release, error)

	// GetDependencies retrieves known dependency manifests from the repository root
	GetDependencies(ctx context.Context, repo domain.RepoID) (domain.Dependencies, error)

	// GetTopics retrieves the repository topics
	GetTopics(ctx context.Context, repo domain.RepoID) ([]string, error)
}

// Limits applied to list endpoints
const (
	TopContributors    = 10
	RecentCommits      = 100
	RecentIssues       = 20
	RecentPullRequests = 20
	ReleasesPerPage    = 30
)

type options struct {
	baseURL           string
	graphqlURL        string
	httpClient        *http.Client
	now               func() time.Time
	optionalLanguages bool
}

// Option configures a collector
type Option func(*options)

// WithBaseURL sets the REST API base URL, e.g. for GitHub Enterprise or tests
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithGraphQLURL sets the GraphQL endpoint. It defaults to one derived from the base URL.
func WithGraphQLURL(u string) Option {
	return func(o *options) { o.graphqlURL = u }
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithClock overrides the current time used for age calculations
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithOptionalLanguages makes GetAnalysis report an empty language map when
// the languages request fails, instead of failing the analysis
func WithOptionalLanguages() Option {
	return func(o *options) { o.optionalLanguages = true }
}
