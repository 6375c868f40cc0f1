package collector

import (
	"context"
	"fmt"

	"github.com/google/go-github/v55/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/sync/errgroup"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

// issueCountsQuery fetches issue and pull request totals in one round trip
type issueCountsQuery struct {
	Repository struct {
		OpenIssues struct {
			TotalCount int
		} `graphql:"openIssues: issues(states: OPEN)"`
		ClosedIssues struct {
			TotalCount int
		} `graphql:"closedIssues: issues(states: CLOSED)"`
		OpenPullRequests struct {
			TotalCount int
		} `graphql:"openPullRequests: pullRequests(states: OPEN)"`
		ClosedPullRequests struct {
			TotalCount int
		} `graphql:"closedPullRequests: pullRequests(states: CLOSED)"`
		MergedPullRequests struct {
			TotalCount int
		} `graphql:"mergedPullRequests: pullRequests(states: MERGED)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func (c *githubCollector) queryCounts(ctx context.Context, repo domain.RepoID) (*issueCountsQuery, error) {
	var q issueCountsQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(repo.Owner),
		"name":  githubv4.String(repo.Name),
	}
	if err := c.graphql.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for counts: %w", err)
	}
	return &q, nil
}

// countIssues returns open and closed issue totals, excluding pull requests.
// Without a token the totals come from the REST list endpoints, where the
// issue lists include pull requests.
func (c *githubCollector) countIssues(ctx context.Context, repo domain.RepoID) (open, closed int, err error) {
	if c.graphql != nil {
		q, err := c.queryCounts(ctx, repo)
		if err != nil {
			return 0, 0, err
		}
		return q.Repository.OpenIssues.TotalCount, q.Repository.ClosedIssues.TotalCount, nil
	}

	totals, err := c.listTotals(ctx, repo,
		c.issueLister(repo, "open"),
		c.issueLister(repo, "closed"),
		c.pullLister(repo, "open"),
		c.pullLister(repo, "closed"),
	)
	if err != nil {
		return 0, 0, err
	}
	return max(totals[0]-totals[2], 0), max(totals[1]-totals[3], 0), nil
}

// countPullRequests returns open, closed and merged pull request totals.
// Closed includes merged pull requests.
func (c *githubCollector) countPullRequests(ctx context.Context, repo domain.RepoID) (open, closed, merged int, err error) {
	if c.graphql != nil {
		q, err := c.queryCounts(ctx, repo)
		if err != nil {
			return 0, 0, 0, err
		}
		r := q.Repository
		return r.OpenPullRequests.TotalCount,
			r.ClosedPullRequests.TotalCount + r.MergedPullRequests.TotalCount,
			r.MergedPullRequests.TotalCount,
			nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	var totals, mergedTotal []int
	eg.Go(func() error {
		var err error
		totals, err = c.listTotals(egCtx, repo, c.pullLister(repo, "open"), c.pullLister(repo, "closed"))
		return err
	})
	// The REST API has no merged filter
	eg.Go(func() error {
		var err error
		mergedTotal, err = c.searchTotals(egCtx, repo, "is:pr is:merged")
		return err
	})
	if err := eg.Wait(); err != nil {
		return 0, 0, 0, err
	}
	return totals[0], totals[1], mergedTotal[0], nil
}

// lister requests one page of a list endpoint and returns the item count on it
type lister func(ctx context.Context, opts github.ListOptions) (int, *github.Response, error)

func (c *githubCollector) issueLister(repo domain.RepoID, state string) lister {
	return func(ctx context.Context, opts github.ListOptions) (int, *github.Response, error) {
		items, resp, err := c.client.Issues.ListByRepo(ctx, repo.Owner, repo.Name, &github.IssueListByRepoOptions{
			State:       state,
			ListOptions: opts,
		})
		return len(items), resp, err
	}
}

func (c *githubCollector) pullLister(repo domain.RepoID, state string) lister {
	return func(ctx context.Context, opts github.ListOptions) (int, *github.Response, error) {
		items, resp, err := c.client.PullRequests.List(ctx, repo.Owner, repo.Name, &github.PullRequestListOptions{
			State:       state,
			ListOptions: opts,
		})
		return len(items), resp, err
	}
}

// listTotals requests one item per page so each last page number is a total
func (c *githubCollector) listTotals(ctx context.Context, repo domain.RepoID, lists ...lister) ([]int, error) {
	totals := make([]int, len(lists))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, list := range lists {
		eg.Go(func() error {
			if err := c.rateLimiter.Check(); err != nil {
				return err
			}
			n, resp, err := list(egCtx, github.ListOptions{PerPage: 1})
			c.updateRateLimitFromResponse(resp)
			if err != nil {
				return classifyError(err, repo)
			}
			totals[i] = n
			if resp.LastPage > 0 {
				totals[i] = resp.LastPage
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return totals, nil
}

// searchTotals runs one search per qualifier set and returns the total counts in order
func (c *githubCollector) searchTotals(ctx context.Context, repo domain.RepoID, qualifiers ...string) ([]int, error) {
	totals := make([]int, len(qualifiers))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, qualifier := range qualifiers {
		eg.Go(func() error {
			if err := c.rateLimiter.Check(); err != nil {
				return err
			}
			query := fmt.Sprintf("repo:%s %s", repo, qualifier)
			result, resp, err := c.client.Search.Issues(egCtx, query, &github.SearchOptions{
				ListOptions: github.ListOptions{PerPage: 1},
			})
			c.updateRateLimitFromResponse(resp)
			if err != nil {
				return classifyError(err, repo)
			}
			totals[i] = result.GetTotal()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return totals, nil
}
