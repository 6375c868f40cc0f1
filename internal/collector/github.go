package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/kurihiro0119/repo-analyzer/internal/aggregator"
	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	"github.com/kurihiro0119/repo-analyzer/internal/logging"
)

var (
	badgeCoverage = regexp.MustCompile(`(?i)(\d+)(?:%25|%)\s*coverage`)
	filePercent   = regexp.MustCompile(`(\d+)%`)
)

// githubCollector implements Collector using GitHub API
type githubCollector struct {
	client      *github.Client
	graphql     *githubv4.Client // nil without a token
	rateLimiter RateLimiter
	now         func() time.Time

	optionalLanguages bool
}

// NewGitHubCollector creates a new GitHub collector. An empty token uses anonymous access.
func NewGitHubCollector(token string, opts ...Option) (Collector, error) {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(httpClient)
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", o.baseURL, err)
		}
		client.BaseURL = u
	}

	c := &githubCollector{
		client:            client,
		rateLimiter:       NewRateLimiter(o.now),
		now:               o.now,
		optionalLanguages: o.optionalLanguages,
	}

	// GraphQL requires authentication
	if token != "" {
		endpoint := o.graphqlURL
		if endpoint == "" {
			endpoint = graphqlEndpoint(client.BaseURL)
		}
		c.graphql = githubv4.NewEnterpriseClient(endpoint, httpClient)
	}

	return c, nil
}

// graphqlEndpoint derives the GraphQL endpoint from the REST base URL
func graphqlEndpoint(base *url.URL) string {
	u := *base
	switch {
	case u.Host == "api.github.com":
		u.Path = "/graphql"
	case strings.HasSuffix(u.Path, "/api/v3/"):
		u.Path = strings.TrimSuffix(u.Path, "v3/") + "graphql"
	default:
		u.Path = strings.TrimSuffix(u.Path, "/") + "/graphql"
	}
	return u.String()
}

// GetAnalysis retrieves repository metadata, languages and the top contributors
func (c *githubCollector) GetAnalysis(ctx context.Context, repo domain.RepoID) (*domain.Analysis, error) {
	logger := logging.From(ctx).With("repo", repo.String())
	logger.Debug("Fetching repository")

	r, err := c.getRepository(ctx, repo)
	if err != nil {
		return nil, err
	}

	var languages map[string]int
	contributors := []domain.Contributor{}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := c.rateLimiter.Check(); err != nil {
			return err
		}
		langs, resp, err := c.client.Repositories.ListLanguages(egCtx, repo.Owner, repo.Name)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			if c.optionalLanguages {
				logger.Warn("Failed to fetch languages", "error", detach(err))
				return nil
			}
			return classifyError(err, repo)
		}
		languages = langs
		return nil
	})
	eg.Go(func() error {
		if err := c.rateLimiter.Check(); err != nil {
			return err
		}
		list, resp, err := c.client.Repositories.ListContributors(egCtx, repo.Owner, repo.Name, &github.ListContributorsOptions{
			ListOptions: github.ListOptions{PerPage: TopContributors},
		})
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			// Contributors are optional for the analysis
			logger.Warn("Failed to fetch contributors", "error", detach(err))
			return nil
		}
		for _, ct := range list {
			if len(contributors) == TopContributors {
				break
			}
			contributors = append(contributors, domain.Contributor{
				Login:         ct.GetLogin(),
				Contributions: ct.GetContributions(),
			})
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if languages == nil {
		languages = map[string]int{}
	}

	logger.Info("Analyzed repository", "languages", len(languages), "contributors", len(contributors))
	return &domain.Analysis{
		Name:         r.GetName(),
		FullName:     r.GetFullName(),
		Description:  r.GetDescription(),
		Stars:        r.GetStargazersCount(),
		Forks:        r.GetForksCount(),
		Watchers:     r.GetWatchersCount(),
		OpenIssues:   r.GetOpenIssuesCount(),
		Languages:    languages,
		Contributors: contributors,
		CreatedAt:    formatTimestamp(r.GetCreatedAt()),
		UpdatedAt:    formatTimestamp(r.GetUpdatedAt()),
	}, nil
}

// GetTree retrieves the directory structure of the default branch
func (c *githubCollector) GetTree(ctx context.Context, repo domain.RepoID) ([]domain.DirectoryNode, error) {
	r, err := c.getRepository(ctx, repo)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Check(); err != nil {
		return nil, err
	}
	tree, resp, err := c.client.Git.GetTree(ctx, repo.Owner, repo.Name, r.GetDefaultBranch(), true)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		// Empty repository
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return []domain.DirectoryNode{}, nil
		}
		return nil, classifyError(err, repo)
	}
	if tree.GetTruncated() {
		logging.From(ctx).Warn("Repository tree truncated by GitHub", "repo", repo.String(), "entries", len(tree.Entries))
	}

	return buildTree(tree.Entries), nil
}

type treeBuilder struct {
	node     domain.DirectoryNode
	children []*treeBuilder
}

func (b *treeBuilder) build() domain.DirectoryNode {
	n := b.node
	if n.Type == domain.NodeTypeDir {
		n.Children = make([]domain.DirectoryNode, 0, len(b.children))
		for _, child := range b.children {
			n.Children = append(n.Children, child.build())
		}
	}
	return n
}

// buildTree nests flat git tree entries. Entries whose parent is missing attach to the root.
func buildTree(entries []*github.TreeEntry) []domain.DirectoryNode {
	root := &treeBuilder{node: domain.DirectoryNode{Type: domain.NodeTypeDir}}
	dirs := map[string]*treeBuilder{"": root}

	for _, e := range entries {
		p := e.GetPath()
		if p == "" {
			continue
		}
		nodeType := domain.NodeTypeFile
		if e.GetType() == "tree" {
			nodeType = domain.NodeTypeDir
		}
		b := &treeBuilder{node: domain.DirectoryNode{Name: path.Base(p), Type: nodeType}}

		parentPath := path.Dir(p)
		if parentPath == "." {
			parentPath = ""
		}
		parent, ok := dirs[parentPath]
		if !ok {
			parent = root
		}
		parent.children = append(parent.children, b)
		if nodeType == domain.NodeTypeDir {
			dirs[p] = b
		}
	}

	return root.build().Children
}

// GetActivity retrieves weekly commit counts of the most recent commits
func (c *githubCollector) GetActivity(ctx context.Context, repo domain.RepoID) ([]domain.ActivityPoint, error) {
	if err := c.rateLimiter.Check(); err != nil {
		return nil, err
	}

	commits, resp, err := c.client.Repositories.ListCommits(ctx, repo.Owner, repo.Name, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: RecentCommits},
	})
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		// Skip if repository is empty or has no commits
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return []domain.ActivityPoint{}, nil
		}
		return nil, classifyError(err, repo)
	}

	timestamps := make([]time.Time, 0, len(commits))
	for _, commit := range commits {
		if commit.Commit == nil || commit.Commit.Author == nil {
			continue
		}
		timestamps = append(timestamps, commit.Commit.Author.GetDate().Time)
	}

	return aggregator.WeeklyActivity(timestamps), nil
}

// GetCoverage detects a coverage percentage from the README badge or a coverage file
func (c *githubCollector) GetCoverage(ctx context.Context, repo domain.RepoID) (*domain.Coverage, error) {
	if err := c.rateLimiter.Check(); err != nil {
		return nil, err
	}

	readme, resp, err := c.client.Repositories.GetReadme(ctx, repo.Owner, repo.Name, nil)
	c.updateRateLimitFromResponse(resp)
	switch {
	case err == nil:
		text, decodeErr := readme.GetContent()
		if decodeErr == nil {
			if m := badgeCoverage.FindStringSubmatch(text); m != nil {
				return newCoverage(m[1], "badge"), nil
			}
		}
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		// No README, fall through to coverage files
	default:
		return nil, classifyError(err, repo)
	}

	files, err := c.listRoot(ctx, repo)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.GetType() != "file" || !strings.Contains(strings.ToLower(f.GetName()), "coverage") {
			continue
		}
		text, err := c.fileContent(ctx, repo, f.GetPath())
		if err != nil {
			logging.From(ctx).Warn("Failed to read coverage file", "repo", repo.String(), "file", f.GetName(), "error", err)
			continue
		}
		if m := filePercent.FindStringSubmatch(text); m != nil {
			return newCoverage(m[1], f.GetName()), nil
		}
	}

	return &domain.Coverage{}, nil
}

func newCoverage(digits, source string) *domain.Coverage {
	value, err := strconv.Atoi(digits)
	if err != nil {
		return &domain.Coverage{}
	}
	value = min(max(value, 0), 100)
	return &domain.Coverage{Coverage: &value, Source: &source}
}

// GetStats retrieves extended repository statistics
func (c *githubCollector) GetStats(ctx context.Context, repo domain.RepoID) (*domain.RepositoryStats, error) {
	r, err := c.getRepository(ctx, repo)
	if err != nil {
		return nil, err
	}

	stats := &domain.RepositoryStats{
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		Watchers:      r.GetWatchersCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		Size:          r.GetSize(),
		CreatedAt:     formatTimestamp(r.GetCreatedAt()),
		UpdatedAt:     formatTimestamp(r.GetUpdatedAt()),
		PushedAt:      formatTimestamp(r.GetPushedAt()),
		DefaultBranch: r.GetDefaultBranch(),
		Archived:      r.GetArchived(),
		Fork:          r.GetFork(),
		Private:       r.GetPrivate(),
		HasWiki:       r.GetHasWiki(),
		HasPages:      r.GetHasPages(),
		HasDownloads:  r.GetHasDownloads(),
		HasIssues:     r.GetHasIssues(),
		HasProjects:   r.GetHasProjects(),
	}
	if r.License != nil {
		name := r.License.GetName()
		stats.License = &name
	}
	if created := r.GetCreatedAt(); !created.IsZero() {
		stats.AgeDays = int(c.now().Sub(created.Time).Hours() / 24)
	}

	total, err := c.countCommits(ctx, repo)
	if err != nil {
		logging.From(ctx).Warn("Failed to count commits", "repo", repo.String(), "error", err)
	}
	stats.TotalCommits = total

	return stats, nil
}

// countCommits requests one commit per page so the last page number is the commit count
func (c *githubCollector) countCommits(ctx context.Context, repo domain.RepoID) (int, error) {
	if err := c.rateLimiter.Check(); err != nil {
		return 0, err
	}
	commits, resp, err := c.client.Repositories.ListCommits(ctx, repo.Owner, repo.Name, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return 0, nil
		}
		return 0, classifyError(err, repo)
	}
	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(commits), nil
}

// GetIssues retrieves issue totals and the most recent issues
func (c *githubCollector) GetIssues(ctx context.Context, repo domain.RepoID) (*domain.IssueReport, error) {
	report := &domain.IssueReport{RecentIssues: []domain.Issue{}}
	var closedPairs [][2]*time.Time

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := c.rateLimiter.Check(); err != nil {
			return err
		}
		issues, resp, err := c.client.Issues.ListByRepo(egCtx, repo.Owner, repo.Name, &github.IssueListByRepoOptions{
			State:       "all",
			Sort:        "created",
			Direction:   "desc",
			ListOptions: github.ListOptions{PerPage: RecentIssues},
		})
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			return classifyError(err, repo)
		}
		for _, issue := range issues {
			created := issue.GetCreatedAt().Time
			item := domain.Issue{
				Number:        issue.GetNumber(),
				Title:         issue.GetTitle(),
				State:         issue.GetState(),
				CreatedAt:     formatTimestamp(issue.GetCreatedAt()),
				UpdatedAt:     formatTimestamp(issue.GetUpdatedAt()),
				ClosedAt:      formatTimestamp(issue.GetClosedAt()),
				User:          issue.GetUser().GetLogin(),
				Labels:        labelNames(issue.Labels),
				Comments:      issue.GetComments(),
				IsPullRequest: issue.IsPullRequest(),
			}
			report.RecentIssues = append(report.RecentIssues, item)
			if issue.ClosedAt != nil {
				closed := issue.GetClosedAt().Time
				closedPairs = append(closedPairs, [2]*time.Time{&created, &closed})
			}
		}
		return nil
	})
	eg.Go(func() error {
		open, closed, err := c.countIssues(egCtx, repo)
		if err != nil {
			return err
		}
		report.Statistics.TotalOpen = open
		report.Statistics.TotalClosed = closed
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report.Statistics.AvgResponseTime = aggregator.AverageDays(aggregator.Elapsed(closedPairs))
	return report, nil
}

// GetPullRequests retrieves pull request totals and the most recent pull requests
func (c *githubCollector) GetPullRequests(ctx context.Context, repo domain.RepoID) (*domain.PullRequestReport, error) {
	report := &domain.PullRequestReport{RecentPRs: []domain.PullRequest{}}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		prs, err := c.recentPullRequests(egCtx, repo)
		if err != nil {
			return err
		}
		report.RecentPRs = prs
		return nil
	})
	eg.Go(func() error {
		open, closed, merged, err := c.countPullRequests(egCtx, repo)
		if err != nil {
			return err
		}
		report.Statistics.TotalOpen = open
		report.Statistics.TotalClosed = closed
		report.Statistics.TotalMerged = merged
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var mergedPairs [][2]*time.Time
	for _, pr := range report.RecentPRs {
		created, errC := time.Parse(time.RFC3339, pr.CreatedAt)
		merged, errM := time.Parse(time.RFC3339, pr.MergedAt)
		if errC != nil || errM != nil {
			continue
		}
		mergedPairs = append(mergedPairs, [2]*time.Time{&created, &merged})
	}
	report.Statistics.AvgMergeTime = aggregator.AverageDays(aggregator.Elapsed(mergedPairs))

	return report, nil
}

func (c *githubCollector) recentPullRequests(ctx context.Context, repo domain.RepoID) ([]domain.PullRequest, error) {
	if err := c.rateLimiter.Check(); err != nil {
		return nil, err
	}
	prs, resp, err := c.client.PullRequests.List(ctx, repo.Owner, repo.Name, &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: RecentPullRequests},
	})
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, classifyError(err, repo)
	}

	out := make([]domain.PullRequest, len(prs))
	for i, pr := range prs {
		out[i] = pullRequestFrom(pr)
	}

	// The list endpoint omits size and commit counts
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i := range out {
		eg.Go(func() error {
			if err := c.rateLimiter.Check(); err != nil {
				return nil
			}
			detail, resp, err := c.client.PullRequests.Get(egCtx, repo.Owner, repo.Name, out[i].Number)
			c.updateRateLimitFromResponse(resp)
			if err != nil {
				logging.From(ctx).Debug("Failed to fetch pull request detail", "repo", repo.String(), "number", out[i].Number, "error", detach(err))
				return nil
			}
			out[i] = pullRequestFrom(detail)
			return nil
		})
	}
	_ = eg.Wait()

	return out, nil
}

func pullRequestFrom(pr *github.PullRequest) domain.PullRequest {
	return domain.PullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		State:        pr.GetState(),
		CreatedAt:    formatTimestamp(pr.GetCreatedAt()),
		UpdatedAt:    formatTimestamp(pr.GetUpdatedAt()),
		MergedAt:     formatTimestamp(pr.GetMergedAt()),
		User:         pr.GetUser().GetLogin(),
		Labels:       labelNames(pr.Labels),
		Comments:     pr.GetComments(),
		Commits:      pr.GetCommits(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		Merged:       pr.GetMerged() || pr.MergedAt != nil,
	}
}

// GetReleases retrieves the latest releases
func (c *githubCollector) GetReleases(ctx context.Context, repo domain.RepoID) ([]domain.Release, error) {
	if err := c.rateLimiter.Check(); err != nil {
		return nil, err
	}

	releases, resp, err := c.client.Repositories.ListReleases(ctx, repo.Owner, repo.Name, &github.ListOptions{PerPage: ReleasesPerPage})
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, classifyError(err, repo)
	}

	out := make([]domain.Release, 0, len(releases))
	for _, rel := range releases {
		out = append(out, domain.Release{
			TagName:     rel.GetTagName(),
			Name:        rel.GetName(),
			Body:        rel.GetBody(),
			CreatedAt:   formatTimestamp(rel.GetCreatedAt()),
			PublishedAt: formatTimestamp(rel.GetPublishedAt()),
			Prerelease:  rel.GetPrerelease(),
			Draft:       rel.GetDraft(),
			Downloads:   len(rel.Assets),
		})
	}
	return out, nil
}

// GetDependencies retrieves known dependency manifests from the repository root
func (c *githubCollector) GetDependencies(ctx context.Context, repo domain.RepoID) (domain.Dependencies, error) {
	files, err := c.listRoot(ctx, repo)
	if err != nil {
		return nil, err
	}

	present := make(map[string]string)
	for _, f := range files {
		if f.GetType() == "file" {
			present[f.GetName()] = f.GetPath()
		}
	}

	contents := make([]*string, len(domain.DependencyFileNames))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, name := range domain.DependencyFileNames {
		p, ok := present[name]
		if !ok {
			continue
		}
		eg.Go(func() error {
			text, err := c.fileContent(egCtx, repo, p)
			if err != nil {
				logging.From(ctx).Warn("Failed to read dependency file", "repo", repo.String(), "file", name, "error", err)
				return nil
			}
			contents[i] = &text
			return nil
		})
	}
	_ = eg.Wait()

	deps := make(domain.Dependencies, len(domain.DependencyFileNames))
	for i, name := range domain.DependencyFileNames {
		deps[name] = contents[i]
	}
	return deps, nil
}

// GetTopics retrieves the repository topics
func (c *githubCollector) GetTopics(ctx context.Context, repo domain.RepoID) ([]string, error) {
	if err := c.rateLimiter.Check(); err != nil {
		return nil, err
	}

	topics, resp, err := c.client.Repositories.ListAllTopics(ctx, repo.Owner, repo.Name)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, classifyError(err, repo)
	}
	if topics == nil {
		topics = []string{}
	}
	return topics, nil
}

func (c *githubCollector) getRepository(ctx context.Context, repo domain.RepoID) (*github.Repository, error) {
	if err := c.rateLimiter.Check(); err != nil {
		return nil, err
	}
	r, resp, err := c.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, classifyError(err, repo)
	}
	return r, nil
}

func (c *githubCollector) listRoot(ctx context.Context, repo domain.RepoID) ([]*github.RepositoryContent, error) {
	if err := c.rateLimiter.Check(); err != nil {
		return nil, err
	}
	_, dir, resp, err := c.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, "", nil)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, classifyError(err, repo)
	}
	return dir, nil
}

func (c *githubCollector) fileContent(ctx context.Context, repo domain.RepoID, filePath string) (string, error) {
	if err := c.rateLimiter.Check(); err != nil {
		return "", err
	}
	file, _, resp, err := c.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, filePath, nil)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filePath, detach(err))
	}
	if file == nil {
		return "", fmt.Errorf("%s is not a file", filePath)
	}
	return file.GetContent()
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (c *githubCollector) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Limit > 0 {
		c.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}

func formatTimestamp(ts github.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
