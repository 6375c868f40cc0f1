package dashboard

import (
	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

// Panel holds the outcome of one auxiliary fetch
type Panel[T any] struct {
	Value T
	Err   error
}

// OK reports whether the fetch succeeded
func (p Panel[T]) OK() bool {
	return p.Err == nil
}

// Report is everything gathered for one repository
type Report struct {
	Repo     string
	Analysis *domain.Analysis

	Tree         Panel[[]domain.DirectoryNode]
	Activity     Panel[[]domain.ActivityPoint]
	Coverage     Panel[*domain.Coverage]
	Stats        Panel[*domain.RepositoryStats]
	Issues       Panel[*domain.IssueReport]
	PullRequests Panel[*domain.PullRequestReport]
	Releases     Panel[[]domain.Release]
	Dependencies Panel[domain.Dependencies]
	Topics       Panel[[]string]
}
