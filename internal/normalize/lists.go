package normalize

import (
	"sort"
	"strconv"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

// Item state classes
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateMerged = "merged"
)

// ListItem is one entry of the recent issues or pull requests list
type ListItem struct {
	Number     string
	Title      string
	State      string
	StateClass string
	Author     string
	Created    string
}

// IssuesView is the issues panel
type IssuesView struct {
	Open            int
	Closed          int
	AvgResponseDays string
	Recent          []ListItem
}

// Issues maps the issue report onto the issues panel
func Issues(r *domain.IssueReport) IssuesView {
	if r == nil {
		r = &domain.IssueReport{}
	}
	v := IssuesView{
		Open:            r.Statistics.TotalOpen,
		Closed:          r.Statistics.TotalClosed,
		AvgResponseDays: formatDays(r.Statistics.AvgResponseTime),
	}
	for _, issue := range r.RecentIssues {
		if len(v.Recent) == MaxRecentItems {
			break
		}
		class := StateClosed
		if issue.State == StateOpen {
			class = StateOpen
		}
		v.Recent = append(v.Recent, ListItem{
			Number:     "#" + strconv.Itoa(issue.Number),
			Title:      issue.Title,
			State:      issue.State,
			StateClass: class,
			Author:     issue.User,
			Created:    FormatDate(issue.CreatedAt),
		})
	}
	return v
}

// PullRequestsView is the pull requests panel
type PullRequestsView struct {
	Open         int
	Merged       int
	AvgMergeDays string
	Recent       []ListItem
}

// PullRequests maps the pull request report onto the pull requests panel
func PullRequests(r *domain.PullRequestReport) PullRequestsView {
	if r == nil {
		r = &domain.PullRequestReport{}
	}
	v := PullRequestsView{
		Open:         r.Statistics.TotalOpen,
		Merged:       r.Statistics.TotalMerged,
		AvgMergeDays: formatDays(r.Statistics.AvgMergeTime),
	}
	for _, pr := range r.RecentPRs {
		if len(v.Recent) == MaxRecentItems {
			break
		}
		class := StateClosed
		switch {
		case pr.State == StateOpen:
			class = StateOpen
		case pr.MergedAt != "" || pr.Merged:
			class = StateMerged
		}
		v.Recent = append(v.Recent, ListItem{
			Number:     "#" + strconv.Itoa(pr.Number),
			Title:      pr.Title,
			State:      pr.State,
			StateClass: class,
			Author:     pr.User,
			Created:    FormatDate(pr.CreatedAt),
		})
	}
	return v
}

// ReleaseCard is one release tile
type ReleaseCard struct {
	Tag         string
	Name        string
	Published   string
	Description string
	Prerelease  bool
	Draft       bool
	Assets      int
}

// Releases maps up to six releases onto cards
func Releases(releases []domain.Release) []ReleaseCard {
	cards := make([]ReleaseCard, 0, min(len(releases), MaxReleases))
	for _, rel := range releases {
		if len(cards) == MaxReleases {
			break
		}
		desc := NoDescriptionRelease
		if rel.Body != "" {
			// always rendered as an excerpt, even when short
			body := []rune(rel.Body)
			desc = string(body[:min(len(body), ReleaseBodyLimit)]) + truncationEllipsis
		}
		name := rel.Name
		if name == "" {
			name = rel.TagName
		}
		cards = append(cards, ReleaseCard{
			Tag:         rel.TagName,
			Name:        name,
			Published:   FormatDate(rel.PublishedAt),
			Description: desc,
			Prerelease:  rel.Prerelease,
			Draft:       rel.Draft,
			Assets:      rel.Downloads,
		})
	}
	return cards
}

// DependencyCard is one manifest with its excerpt
type DependencyCard struct {
	Filename string
	Excerpt  string
}

// Dependencies lists the manifests that were found, in the canonical order
// followed by any unknown names in sorted order
func Dependencies(deps domain.Dependencies) []DependencyCard {
	var cards []DependencyCard
	seen := make(map[string]bool, len(deps))
	for _, name := range domain.DependencyFileNames {
		seen[name] = true
		if content := deps[name]; content != nil {
			cards = append(cards, DependencyCard{Filename: name, Excerpt: Truncate(*content, DependencyLimit)})
		}
	}
	var extra []string
	for name, content := range deps {
		if !seen[name] && content != nil {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		cards = append(cards, DependencyCard{Filename: name, Excerpt: Truncate(*deps[name], DependencyLimit)})
	}
	return cards
}
