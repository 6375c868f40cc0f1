package source

import (
	"context"

	"github.com/kurihiro0119/repo-analyzer/internal/collector"
	"github.com/kurihiro0119/repo-analyzer/internal/config"
	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	apperrors "github.com/kurihiro0119/repo-analyzer/internal/errors"
)

// direct calls the GitHub REST API itself. Only the primary analysis is offered;
// every auxiliary panel reports an unsupported error.
type direct struct {
	collector collector.Collector
}

var _ Source = (*direct)(nil)

// NewDirect creates a source that reads repository metadata straight from GitHub
func NewDirect(c collector.Collector) Source {
	return &direct{collector: c}
}

func (d *direct) Name() string { return config.SourceDirect }

func (d *direct) Analyze(ctx context.Context, repo string) (*domain.Analysis, error) {
	id, err := domain.ParseRepoID(repo)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	return d.collector.GetAnalysis(ctx, id)
}

func (d *direct) Tree(context.Context, string) ([]domain.DirectoryNode, error) {
	return nil, apperrors.NewUnsupportedError("tree")
}

func (d *direct) Activity(context.Context, string) ([]domain.ActivityPoint, error) {
	return nil, apperrors.NewUnsupportedError("activity")
}

func (d *direct) Coverage(context.Context, string) (*domain.Coverage, error) {
	return nil, apperrors.NewUnsupportedError("coverage")
}

func (d *direct) Stats(context.Context, string) (*domain.RepositoryStats, error) {
	return nil, apperrors.NewUnsupportedError("stats")
}

func (d *direct) Issues(context.Context, string) (*domain.IssueReport, error) {
	return nil, apperrors.NewUnsupportedError("issues")
}

func (d *direct) PullRequests(context.Context, string) (*domain.PullRequestReport, error) {
	return nil, apperrors.NewUnsupportedError("pull requests")
}

func (d *direct) Releases(context.Context, string) ([]domain.Release, error) {
	return nil, apperrors.NewUnsupportedError("releases")
}

func (d *direct) Dependencies(context.Context, string) (domain.Dependencies, error) {
	return nil, apperrors.NewUnsupportedError("dependencies")
}

func (d *direct) Topics(context.Context, string) ([]string, error) {
	return nil, apperrors.NewUnsupportedError("topics")
}
