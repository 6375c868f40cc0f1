package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

func TestFormatNumber(t *testing.T) {
	testCases := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{500, "500"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{999_999, "1000.0K"},
		{2_500_000, "2.5M"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, FormatNumber(tc.in), "FormatNumber(%d)", tc.in)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Jan 15, 2024", FormatDate("2024-01-15T10:00:00Z"))
	assert.Equal(t, "Mar 3, 2013", FormatDate("2013-03-03T12:30:00.123456"))
	assert.Equal(t, "Mar 3, 2013", FormatDate("2013-03-03T12:30:00"))
	assert.Equal(t, NotAvailable, FormatDate(""))
	assert.Equal(t, NotAvailable, FormatDate("yesterday"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "日本...", Truncate("日本語", 2))
}

func TestSizes(t *testing.T) {
	assert.Equal(t, 2, Kilobytes(2048))
	assert.Equal(t, 1, Kilobytes(600))
	assert.Equal(t, 0, Kilobytes(400))
	assert.Equal(t, 3, Megabytes(3000))
}

func TestNewOverview(t *testing.T) {
	t.Run("populated", func(t *testing.T) {
		o := NewOverview(&domain.Analysis{
			Name:      "react",
			FullName:  "facebook/react",
			Stars:     220_000,
			Forks:     45_000,
			Watchers:  6_600,
			CreatedAt: "2013-05-24T16:15:54Z",
		})
		assert.Equal(t, "react", o.Name)
		assert.Equal(t, NoDescriptionRepo, o.Description)
		assert.Equal(t, "220.0K", o.Stars)
		assert.Equal(t, "45.0K", o.Forks)
		assert.Equal(t, "6.6K", o.Watchers)
		assert.Equal(t, "0", o.OpenIssues)
		assert.Equal(t, "May 24, 2013", o.Created)
		assert.Equal(t, NotAvailable, o.Updated)
	})

	t.Run("nil", func(t *testing.T) {
		o := NewOverview(nil)
		assert.Equal(t, "0", o.Stars)
		assert.Equal(t, NoDescriptionRepo, o.Description)
	})
}

func TestLanguages(t *testing.T) {
	rows := Languages(map[string]int{"Go": 4096, "Shell": 1024, "Makefile": 1024})
	require.Len(t, rows, 3)
	assert.Equal(t, LanguageRow{Name: "Go", Bytes: 4096, KB: 4}, rows[0])
	assert.Equal(t, "Makefile", rows[1].Name)
	assert.Equal(t, "Shell", rows[2].Name)
}

func TestStatsCards(t *testing.T) {
	mit := "MIT"
	cards := StatsCards(&domain.RepositoryStats{
		Stars:        1500,
		TotalCommits: 342,
		AgeDays:      31,
		Size:         5120,
		License:      &mit,
	})
	require.Len(t, cards, 8)
	assert.Equal(t, StatCard{Value: "1.5K", Label: "Stars"}, cards[0])
	assert.Equal(t, StatCard{Value: "342", Label: "Total Commits"}, cards[4])
	assert.Equal(t, StatCard{Value: "31", Label: "Days Old"}, cards[5])
	assert.Equal(t, StatCard{Value: "5", Label: "Size (MB)"}, cards[6])
	assert.Equal(t, StatCard{Value: "MIT", Label: "License"}, cards[7])

	assert.Equal(t, NotAvailable, StatsCards(&domain.RepositoryStats{})[7].Value)
}

func TestIssues(t *testing.T) {
	avg := 2.5
	report := &domain.IssueReport{
		Statistics: domain.IssueStatistics{TotalOpen: 3, TotalClosed: 7, AvgResponseTime: &avg},
	}
	for i := 1; i <= 8; i++ {
		state := "closed"
		if i%2 == 0 {
			state = "open"
		}
		report.RecentIssues = append(report.RecentIssues, domain.Issue{Number: i, Title: "issue", State: state, User: "alice", CreatedAt: "2024-01-15T10:00:00Z"})
	}

	v := Issues(report)
	assert.Equal(t, 3, v.Open)
	assert.Equal(t, 7, v.Closed)
	assert.Equal(t, "2.5", v.AvgResponseDays)
	require.Len(t, v.Recent, MaxRecentItems)
	assert.Equal(t, "#1", v.Recent[0].Number)
	assert.Equal(t, StateClosed, v.Recent[0].StateClass)
	assert.Equal(t, StateOpen, v.Recent[1].StateClass)
	assert.Equal(t, "Jan 15, 2024", v.Recent[0].Created)

	assert.Equal(t, NotAvailable, Issues(&domain.IssueReport{}).AvgResponseDays)

	zero := 0.0
	assert.Equal(t, NotAvailable, Issues(&domain.IssueReport{
		Statistics: domain.IssueStatistics{AvgResponseTime: &zero},
	}).AvgResponseDays)
	assert.Equal(t, NotAvailable, PullRequests(&domain.PullRequestReport{
		Statistics: domain.PullRequestStatistics{AvgMergeTime: &zero},
	}).AvgMergeDays)
}

func TestNilPayloads(t *testing.T) {
	issues := Issues(nil)
	assert.Zero(t, issues.Open)
	assert.Equal(t, NotAvailable, issues.AvgResponseDays)
	assert.Empty(t, issues.Recent)

	prs := PullRequests(nil)
	assert.Zero(t, prs.Merged)
	assert.Equal(t, NotAvailable, prs.AvgMergeDays)

	assert.Len(t, StatsCards(nil), 8)
}

func TestPullRequests(t *testing.T) {
	v := PullRequests(&domain.PullRequestReport{
		Statistics: domain.PullRequestStatistics{TotalOpen: 1, TotalMerged: 4},
		RecentPRs: []domain.PullRequest{
			{Number: 10, State: "open"},
			{Number: 9, State: "closed", MergedAt: "2024-01-02T00:00:00Z"},
			{Number: 8, State: "closed"},
		},
	})
	assert.Equal(t, 1, v.Open)
	assert.Equal(t, 4, v.Merged)
	assert.Equal(t, NotAvailable, v.AvgMergeDays)
	require.Len(t, v.Recent, 3)
	assert.Equal(t, StateOpen, v.Recent[0].StateClass)
	assert.Equal(t, StateMerged, v.Recent[1].StateClass)
	assert.Equal(t, StateClosed, v.Recent[2].StateClass)
	assert.Equal(t, "closed", v.Recent[1].State)
}

func TestReleases(t *testing.T) {
	long := strings.Repeat("x", 150)
	var releases []domain.Release
	for i := 0; i < 8; i++ {
		releases = append(releases, domain.Release{TagName: "v1", Name: "one", Body: "fixes"})
	}
	releases[1].Body = long
	releases[2].Body = ""
	releases[3].Name = ""

	cards := Releases(releases)
	require.Len(t, cards, MaxReleases)
	assert.Equal(t, "fixes...", cards[0].Description)
	assert.Equal(t, strings.Repeat("x", 100)+"...", cards[1].Description)
	assert.Equal(t, NoDescriptionRelease, cards[2].Description)
	assert.Equal(t, "v1", cards[3].Name)
	assert.Equal(t, NotAvailable, cards[0].Published)

	assert.Empty(t, Releases(nil))
}

func TestDependencies(t *testing.T) {
	gomod := "module demo"
	pkg := strings.Repeat("a", 400)
	extra := "[deps]"

	cards := Dependencies(domain.Dependencies{
		"go.mod":       &gomod,
		"package.json": &pkg,
		"Gemfile":      nil,
		"deps.edn":     &extra,
	})
	require.Len(t, cards, 3)
	assert.Equal(t, "package.json", cards[0].Filename)
	assert.Len(t, cards[0].Excerpt, DependencyLimit+3)
	assert.Equal(t, DependencyCard{Filename: "go.mod", Excerpt: "module demo"}, cards[1])
	assert.Equal(t, "deps.edn", cards[2].Filename)

	assert.Empty(t, Dependencies(domain.Dependencies{"Gemfile": nil}))
}
