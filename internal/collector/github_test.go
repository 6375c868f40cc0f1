package collector

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	apperrors "github.com/kurihiro0119/repo-analyzer/internal/errors"
)

var testRepo = domain.RepoID{Owner: "octo", Name: "demo"}

var fixedNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

// routes maps an exact request path to a handler; anything else is a GitHub style 404
type routes map[string]http.HandlerFunc

func (rt routes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rt[r.URL.Path]; ok {
		h(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, `{"message": "Not Found"}`)
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func fileBody(name, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"type":     "file",
			"name":     name,
			"path":     name,
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
	}
}

// setupTestCollector creates a collector that communicates with a mock HTTP server.
func setupTestCollector(t *testing.T, token string, handler http.Handler, opts ...Option) *githubCollector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewGitHubCollector(token, append([]Option{
		WithBaseURL(server.URL),
		WithGraphQLURL(server.URL+"/graphql"),
		WithHTTPClient(server.Client()),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)...)
	require.NoError(t, err)
	return c.(*githubCollector)
}

const repoJSON = `{
	"name": "demo",
	"full_name": "octo/demo",
	"description": "A demo repository",
	"stargazers_count": 1500,
	"forks_count": 12,
	"watchers_count": 1500,
	"open_issues_count": 3,
	"size": 2048,
	"default_branch": "main",
	"created_at": "2024-05-01T00:00:00Z",
	"updated_at": "2024-05-20T10:00:00Z",
	"pushed_at": "2024-05-21T10:00:00Z",
	"license": {"name": "MIT License"},
	"has_issues": true,
	"has_wiki": true
}`

func TestGitHubCollector_GetAnalysis(t *testing.T) {
	t.Run("happy path - metadata, languages and top contributors", func(t *testing.T) {
		var contributors []string
		for i := 0; i < 12; i++ {
			contributors = append(contributors, fmt.Sprintf(`{"login": "user%d", "contributions": %d}`, i, 100-i))
		}
		c := setupTestCollector(t, "", routes{
			"/repos/octo/demo":              jsonBody(repoJSON),
			"/repos/octo/demo/languages":    jsonBody(`{"Go": 3000, "Shell": 200}`),
			"/repos/octo/demo/contributors": jsonBody("[" + strings.Join(contributors, ",") + "]"),
		})

		got, err := c.GetAnalysis(context.Background(), testRepo)
		require.NoError(t, err)

		assert.Equal(t, "demo", got.Name)
		assert.Equal(t, "octo/demo", got.FullName)
		assert.Equal(t, "A demo repository", got.Description)
		assert.Equal(t, 1500, got.Stars)
		assert.Equal(t, 12, got.Forks)
		assert.Equal(t, 3, got.OpenIssues)
		assert.Equal(t, map[string]int{"Go": 3000, "Shell": 200}, got.Languages)
		require.Len(t, got.Contributors, TopContributors)
		assert.Equal(t, domain.Contributor{Login: "user0", Contributions: 100}, got.Contributors[0])
		assert.Equal(t, "2024-05-01T00:00:00Z", got.CreatedAt)
	})

	t.Run("contributor failure is tolerated", func(t *testing.T) {
		c := setupTestCollector(t, "", routes{
			"/repos/octo/demo":           jsonBody(repoJSON),
			"/repos/octo/demo/languages": jsonBody(`{}`),
			"/repos/octo/demo/contributors": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "boom"}`)
			},
		})

		got, err := c.GetAnalysis(context.Background(), testRepo)
		require.NoError(t, err)
		assert.Empty(t, got.Contributors)
		assert.Empty(t, got.Languages)
	})

	t.Run("language failure fails the analysis by default", func(t *testing.T) {
		handler := routes{
			"/repos/octo/demo":              jsonBody(repoJSON),
			"/repos/octo/demo/contributors": jsonBody(`[]`),
			"/repos/octo/demo/languages": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "boom"}`)
			},
		}

		_, err := setupTestCollector(t, "", handler).GetAnalysis(context.Background(), testRepo)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInternal, apperrors.CodeOf(err))

		tolerant := setupTestCollector(t, "", handler, WithOptionalLanguages())
		got, err := tolerant.GetAnalysis(context.Background(), testRepo)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{}, got.Languages)
		assert.Equal(t, "octo/demo", got.FullName)
	})

	t.Run("not found", func(t *testing.T) {
		c := setupTestCollector(t, "", routes{})

		_, err := c.GetAnalysis(context.Background(), testRepo)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, "Repository octo/demo not found", apperrors.MessageOf(err))
	})

	t.Run("rate limited then fails fast", func(t *testing.T) {
		calls := 0
		reset := fixedNow.Add(time.Hour).Unix()
		c := setupTestCollector(t, "", routes{
			"/repos/octo/demo": func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("X-RateLimit-Limit", "60")
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", fmt.Sprint(reset))
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message": "API rate limit exceeded for 127.0.0.1."}`)
			},
		})

		_, err := c.GetAnalysis(context.Background(), testRepo)
		require.Error(t, err)
		assert.True(t, apperrors.IsRateLimited(err))
		assert.Equal(t, apperrors.RateLimitMessage, apperrors.MessageOf(err))

		_, err = c.GetStats(context.Background(), testRepo)
		assert.True(t, apperrors.IsRateLimited(err))
		assert.Equal(t, 1, calls)
	})
}

func TestGitHubCollector_GetTree(t *testing.T) {
	c := setupTestCollector(t, "", routes{
		"/repos/octo/demo": jsonBody(repoJSON),
		"/repos/octo/demo/git/trees/main": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("recursive"))
			jsonBody(`{"sha": "abc", "truncated": false, "tree": [
				{"path": "README.md", "type": "blob"},
				{"path": "src", "type": "tree"},
				{"path": "src/a.js", "type": "blob"},
				{"path": "src/lib", "type": "tree"},
				{"path": "src/lib/b.js", "type": "blob"}
			]}`)(w, r)
		},
	})

	got, err := c.GetTree(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, []domain.DirectoryNode{
		{Name: "README.md", Type: "file"},
		{Name: "src", Type: "dir", Children: []domain.DirectoryNode{
			{Name: "a.js", Type: "file"},
			{Name: "lib", Type: "dir", Children: []domain.DirectoryNode{
				{Name: "b.js", Type: "file"},
			}},
		}},
	}, got)
}

func TestGitHubCollector_GetActivity(t *testing.T) {
	t.Run("buckets commits by week", func(t *testing.T) {
		c := setupTestCollector(t, "", routes{
			"/repos/octo/demo/commits": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "100", r.URL.Query().Get("per_page"))
				jsonBody(`[
					{"sha": "3", "commit": {"author": {"date": "2024-01-10T09:00:00Z"}}},
					{"sha": "2", "commit": {"author": {"date": "2024-01-03T09:00:00Z"}}},
					{"sha": "1", "commit": {"author": {"date": "2024-01-02T09:00:00Z"}}}
				]`)(w, r)
			},
		})

		got, err := c.GetActivity(context.Background(), testRepo)
		require.NoError(t, err)
		assert.Equal(t, []domain.ActivityPoint{
			{Week: "2024-01", Count: 2},
			{Week: "2024-02", Count: 1},
		}, got)
	})

	t.Run("empty repository", func(t *testing.T) {
		c := setupTestCollector(t, "", routes{
			"/repos/octo/demo/commits": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"message": "Git Repository is empty."}`)
			},
		})

		got, err := c.GetActivity(context.Background(), testRepo)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGitHubCollector_GetCoverage(t *testing.T) {
	testCases := []struct {
		name       string
		routes     routes
		wantValue  *int
		wantSource string
	}{
		{
			name: "badge in README",
			routes: routes{
				"/repos/octo/demo/readme": fileBody("README.md", "# Demo\n![badge](https://img.shields.io) 85% coverage\n"),
			},
			wantValue:  intPtr(85),
			wantSource: "badge",
		},
		{
			name: "url encoded badge",
			routes: routes{
				"/repos/octo/demo/readme": fileBody("README.md", "coverage-91%25 Coverage"),
			},
			wantValue:  intPtr(91),
			wantSource: "badge",
		},
		{
			name: "coverage file at the root",
			routes: routes{
				"/repos/octo/demo/readme": fileBody("README.md", "# Demo"),
				"/repos/octo/demo/contents/": jsonBody(`[
					{"type": "file", "name": "main.go", "path": "main.go"},
					{"type": "file", "name": "COVERAGE.txt", "path": "COVERAGE.txt"}
				]`),
				"/repos/octo/demo/contents/COVERAGE.txt": fileBody("COVERAGE.txt", "total: 72% of statements"),
			},
			wantValue:  intPtr(72),
			wantSource: "COVERAGE.txt",
		},
		{
			name: "nothing found",
			routes: routes{
				"/repos/octo/demo/contents/": jsonBody(`[{"type": "file", "name": "main.go", "path": "main.go"}]`),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := setupTestCollector(t, "", tc.routes)

			got, err := c.GetCoverage(context.Background(), testRepo)
			require.NoError(t, err)
			if tc.wantValue == nil {
				assert.Nil(t, got.Coverage)
				assert.Nil(t, got.Source)
				return
			}
			require.NotNil(t, got.Coverage)
			assert.Equal(t, *tc.wantValue, *got.Coverage)
			require.NotNil(t, got.Source)
			assert.Equal(t, tc.wantSource, *got.Source)
		})
	}
}

func TestGitHubCollector_GetStats(t *testing.T) {
	var serverURL string
	handler := routes{
		"/repos/octo/demo": jsonBody(repoJSON),
		"/repos/octo/demo/commits": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("per_page"))
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/demo/commits?per_page=1&page=2>; rel="next", <%s/repos/octo/demo/commits?per_page=1&page=342>; rel="last"`, serverURL, serverURL))
			jsonBody(`[{"sha": "abc"}]`)(w, r)
		},
	}
	server := httptest.NewServer(handler)
	defer server.Close()
	serverURL = server.URL

	c, err := NewGitHubCollector("", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	got, err := c.GetStats(context.Background(), testRepo)
	require.NoError(t, err)

	assert.Equal(t, 1500, got.Stars)
	assert.Equal(t, 2048, got.Size)
	assert.Equal(t, "main", got.DefaultBranch)
	require.NotNil(t, got.License)
	assert.Equal(t, "MIT License", *got.License)
	assert.True(t, got.HasIssues)
	assert.False(t, got.Archived)
	assert.Equal(t, 31, got.AgeDays)
	assert.Equal(t, 342, got.TotalCommits)
	assert.Equal(t, "2024-05-21T10:00:00Z", got.PushedAt)
}

// lastPage answers a per_page=1 list request whose last page is n
func lastPage(n int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<%s?page=%d&per_page=1>; rel="last"`, r.URL.Path, n))
		jsonBody(`[{"number": 1}]`)(w, r)
	}
}

// byState dispatches a list request on its state query parameter
func byState(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Query().Get("state")]
		if !ok {
			http.Error(w, "unexpected state", http.StatusBadRequest)
			return
		}
		h(w, r)
	}
}

func TestGitHubCollector_GetIssues(t *testing.T) {
	c := setupTestCollector(t, "", routes{
		"/repos/octo/demo/issues": byState(map[string]http.HandlerFunc{
			"all": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "desc", r.URL.Query().Get("direction"))
				jsonBody(`[
					{"number": 3, "title": "Open bug", "state": "open", "created_at": "2024-05-10T00:00:00Z", "updated_at": "2024-05-10T00:00:00Z", "user": {"login": "alice"}, "labels": [{"name": "bug"}], "comments": 2},
					{"number": 2, "title": "Fixed", "state": "closed", "created_at": "2024-05-01T00:00:00Z", "updated_at": "2024-05-03T00:00:00Z", "closed_at": "2024-05-03T00:00:00Z", "user": {"login": "bob"}, "labels": []},
					{"number": 1, "title": "A PR", "state": "closed", "created_at": "2024-04-01T00:00:00Z", "updated_at": "2024-04-02T00:00:00Z", "closed_at": "2024-04-02T00:00:00Z", "user": {"login": "carol"}, "pull_request": {"url": "x"}}
				]`)(w, r)
			},
			// issue lists include pull requests
			"open":   lastPage(9),
			"closed": lastPage(45),
		}),
		"/repos/octo/demo/pulls": byState(map[string]http.HandlerFunc{
			"open":   lastPage(2),
			"closed": lastPage(5),
		}),
		"/search/issues": func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("anonymous issue totals must not use the search API: %s", r.URL.Query().Get("q"))
			w.WriteHeader(http.StatusForbidden)
		},
	})

	got, err := c.GetIssues(context.Background(), testRepo)
	require.NoError(t, err)

	assert.Equal(t, 7, got.Statistics.TotalOpen)
	assert.Equal(t, 40, got.Statistics.TotalClosed)
	require.NotNil(t, got.Statistics.AvgResponseTime)
	assert.Equal(t, 1.5, *got.Statistics.AvgResponseTime)

	require.Len(t, got.RecentIssues, 3)
	assert.Equal(t, "alice", got.RecentIssues[0].User)
	assert.Equal(t, []string{"bug"}, got.RecentIssues[0].Labels)
	assert.Equal(t, 2, got.RecentIssues[0].Comments)
	assert.False(t, got.RecentIssues[0].IsPullRequest)
	assert.True(t, got.RecentIssues[2].IsPullRequest)
}

func TestGitHubCollector_GetPullRequests(t *testing.T) {
	c := setupTestCollector(t, "test-token", routes{
		"/repos/octo/demo/pulls": jsonBody(`[
			{"number": 2, "title": "Open PR", "state": "open", "created_at": "2024-05-10T00:00:00Z", "updated_at": "2024-05-10T00:00:00Z", "user": {"login": "alice"}},
			{"number": 1, "title": "Merged PR", "state": "closed", "created_at": "2024-05-01T00:00:00Z", "updated_at": "2024-05-03T00:00:00Z", "merged_at": "2024-05-03T00:00:00Z", "user": {"login": "bob"}}
		]`),
		"/repos/octo/demo/pulls/1": jsonBody(`{"number": 1, "title": "Merged PR", "state": "closed", "created_at": "2024-05-01T00:00:00Z", "updated_at": "2024-05-03T00:00:00Z", "merged_at": "2024-05-03T00:00:00Z", "merged": true, "user": {"login": "bob"}, "commits": 3, "additions": 120, "deletions": 4, "changed_files": 5, "comments": 1}`),
		"/graphql": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			jsonBody(`{"data": {"repository": {
				"openIssues": {"totalCount": 1},
				"closedIssues": {"totalCount": 2},
				"openPullRequests": {"totalCount": 4},
				"closedPullRequests": {"totalCount": 6},
				"mergedPullRequests": {"totalCount": 30}
			}}}`)(w, r)
		},
	})

	got, err := c.GetPullRequests(context.Background(), testRepo)
	require.NoError(t, err)

	assert.Equal(t, 4, got.Statistics.TotalOpen)
	assert.Equal(t, 36, got.Statistics.TotalClosed)
	assert.Equal(t, 30, got.Statistics.TotalMerged)
	require.NotNil(t, got.Statistics.AvgMergeTime)
	assert.Equal(t, 2.0, *got.Statistics.AvgMergeTime)

	require.Len(t, got.RecentPRs, 2)
	// Detail lookup for #2 fails and the list entry is kept
	assert.Equal(t, "Open PR", got.RecentPRs[0].Title)
	assert.False(t, got.RecentPRs[0].Merged)
	assert.Equal(t, 120, got.RecentPRs[1].Additions)
	assert.Equal(t, 5, got.RecentPRs[1].ChangedFiles)
	assert.True(t, got.RecentPRs[1].Merged)
}

func TestGitHubCollector_GetPullRequests_Anonymous(t *testing.T) {
	searches := 0
	c := setupTestCollector(t, "", routes{
		"/repos/octo/demo/pulls": byState(map[string]http.HandlerFunc{
			"all":    jsonBody(`[]`),
			"open":   lastPage(4),
			"closed": lastPage(36),
		}),
		"/search/issues": func(w http.ResponseWriter, r *http.Request) {
			searches++
			assert.Equal(t, "repo:octo/demo is:pr is:merged", r.URL.Query().Get("q"))
			jsonBody(`{"total_count": 30, "items": []}`)(w, r)
		},
	})

	got, err := c.GetPullRequests(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Statistics.TotalOpen)
	assert.Equal(t, 36, got.Statistics.TotalClosed)
	assert.Equal(t, 30, got.Statistics.TotalMerged)
	assert.Nil(t, got.Statistics.AvgMergeTime)
	assert.Equal(t, 1, searches)
}

func TestGitHubCollector_GetReleases(t *testing.T) {
	c := setupTestCollector(t, "", routes{
		"/repos/octo/demo/releases": jsonBody(`[
			{"tag_name": "v1.1.0", "name": "Second", "body": "notes", "created_at": "2024-05-01T00:00:00Z", "published_at": "2024-05-02T00:00:00Z", "prerelease": true, "assets": [{"id": 1}, {"id": 2}]},
			{"tag_name": "v1.0.0", "name": "First", "draft": true, "created_at": "2024-04-01T00:00:00Z"}
		]`),
	})

	got, err := c.GetReleases(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, []domain.Release{
		{TagName: "v1.1.0", Name: "Second", Body: "notes", CreatedAt: "2024-05-01T00:00:00Z", PublishedAt: "2024-05-02T00:00:00Z", Prerelease: true, Downloads: 2},
		{TagName: "v1.0.0", Name: "First", CreatedAt: "2024-04-01T00:00:00Z", Draft: true},
	}, got)
}

func TestGitHubCollector_GetDependencies(t *testing.T) {
	c := setupTestCollector(t, "", routes{
		"/repos/octo/demo/contents/": jsonBody(`[
			{"type": "file", "name": "go.mod", "path": "go.mod"},
			{"type": "file", "name": "package.json", "path": "package.json"},
			{"type": "dir", "name": "Gemfile", "path": "Gemfile"}
		]`),
		"/repos/octo/demo/contents/go.mod":       fileBody("go.mod", "module example.com/demo\n"),
		"/repos/octo/demo/contents/package.json": fileBody("package.json", `{"name": "demo"}`),
	})

	got, err := c.GetDependencies(context.Background(), testRepo)
	require.NoError(t, err)

	require.Len(t, got, len(domain.DependencyFileNames))
	require.NotNil(t, got["go.mod"])
	assert.Equal(t, "module example.com/demo\n", *got["go.mod"])
	require.NotNil(t, got["package.json"])
	assert.Nil(t, got["Gemfile"])
	assert.Nil(t, got["Cargo.toml"])
}

func TestGitHubCollector_GetTopics(t *testing.T) {
	c := setupTestCollector(t, "", routes{
		"/repos/octo/demo/topics": jsonBody(`{"names": ["go", "dashboard"]}`),
	})

	got, err := c.GetTopics(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "dashboard"}, got)
}

func TestClassifyError_DetachesResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusInternalServerError,
		Request:    httptest.NewRequest(http.MethodGet, "/repos/octo/demo", nil),
	}
	ghErr := &github.ErrorResponse{Response: resp, Message: "boom"}

	tests := []struct {
		name string
		err  error
	}{
		{"error response", ghErr},
		{"rate limit", &github.RateLimitError{Response: resp, Message: "API rate limit exceeded"}},
		{"wrapped", fmt.Errorf("listing: %w", ghErr)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyError(tc.err, testRepo)
			require.Error(t, got)

			var respErr *github.ErrorResponse
			var rateErr *github.RateLimitError
			assert.False(t, errors.As(got, &respErr))
			assert.False(t, errors.As(got, &rateErr))

			detached := detach(tc.err)
			assert.Equal(t, tc.err.Error(), detached.Error())
			assert.False(t, errors.As(detached, &respErr))
		})
	}

	plain := errors.New("plain")
	assert.Same(t, plain, detach(plain))
}

func TestGraphQLEndpoint(t *testing.T) {
	tests := map[string]string{
		"https://api.github.com/":           "https://api.github.com/graphql",
		"https://ghe.example.com/api/v3/":   "https://ghe.example.com/api/graphql",
		"http://127.0.0.1:8080/":            "http://127.0.0.1:8080/graphql",
	}
	for base, want := range tests {
		c, err := NewGitHubCollector("token", WithBaseURL(base))
		require.NoError(t, err)
		assert.Equal(t, want, graphqlEndpoint(c.(*githubCollector).client.BaseURL), base)
	}
}

func TestRateLimiter(t *testing.T) {
	now := fixedNow
	rl := NewRateLimiter(func() time.Time { return now })

	assert.NoError(t, rl.Check())

	rl.UpdateLimit(0, now.Add(time.Minute))
	assert.True(t, apperrors.IsRateLimited(rl.Check()))

	now = now.Add(2 * time.Minute)
	assert.NoError(t, rl.Check())

	remaining, _ := rl.CheckLimit()
	assert.Equal(t, 0, remaining)
}

func intPtr(v int) *int { return &v }
