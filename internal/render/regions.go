// Package render turns repository data into HTML fragments and SVG charts.
package render

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	"github.com/kurihiro0119/repo-analyzer/internal/logging"
	"github.com/kurihiro0119/repo-analyzer/internal/normalize"
)

// Region identifies a results area of the dashboard page
type Region string

const (
	RegionOverview     Region = "repo-overview"
	RegionLanguages    Region = "language-breakdown"
	RegionContributors Region = "contribution-graph"
	RegionTree         Region = "directory-tree"
	RegionActivity     Region = "activity-timeline"
	RegionCoverage     Region = "test-coverage"
	RegionStats        Region = "stats-grid"
	RegionIssues       Region = "issues-stats"
	RegionPullRequests Region = "pr-stats"
	RegionReleases     Region = "releases-list"
	RegionDependencies Region = "dependencies-list"
	RegionTopics       Region = "topics-list"
)

// AuxiliaryRegions are filled by the secondary fetches, in page order
var AuxiliaryRegions = []Region{
	RegionTree,
	RegionActivity,
	RegionCoverage,
	RegionStats,
	RegionIssues,
	RegionPullRequests,
	RegionReleases,
	RegionDependencies,
	RegionTopics,
}

var regionErrors = map[Region]string{
	RegionTree:         "Error loading directory tree.",
	RegionActivity:     "Error loading activity data.",
	RegionCoverage:     "Error loading coverage data.",
	RegionStats:        "Error loading repository statistics.",
	RegionIssues:       "Error loading issues data.",
	RegionPullRequests: "Error loading pull requests data.",
	RegionReleases:     "Error loading releases data.",
	RegionDependencies: "Error loading dependencies data.",
	RegionTopics:       "Error loading topics data.",
}

// Placeholder messages for empty charts
const (
	NoLanguageData    = "No language data available."
	NoContributorData = "No contributor data available."
	NoDirectoryData   = "No directory data available."
	NoActivityData    = "No activity data available."
	NoCoverageData    = "No coverage data available."
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"item": func(kind string, it normalize.ListItem) listItem {
		return listItem{Kind: kind, Item: it}
	},
}).ParseFS(templateFS, "templates/*.html"))

type listItem struct {
	Kind string
	Item normalize.ListItem
}

type chart struct {
	Heading string
	SVG     template.HTML
	Empty   string
	Sizes   []normalize.LanguageRow
}

// Templates returns the parsed page and fragment templates
func Templates() *template.Template {
	return templates
}

func fragment(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logging.Default().Error("failed to render fragment", "template", name, "error", err)
		return errorParagraph("Error rendering " + name + ".")
	}
	return template.HTML(buf.String())
}

func errorParagraph(msg string) template.HTML {
	var buf bytes.Buffer
	_ = templates.ExecuteTemplate(&buf, "error", msg)
	return template.HTML(buf.String())
}

// RegionError is the inline failure message for an auxiliary region
func RegionError(r Region) template.HTML {
	msg, ok := regionErrors[r]
	if !ok {
		msg = "Error loading data."
	}
	return errorParagraph(msg)
}

// Overview renders the repository summary header
func Overview(a *domain.Analysis) template.HTML {
	return fragment("overview", normalize.NewOverview(a))
}

// Languages renders the language pie with a size list in kilobytes, or its placeholder
func Languages(languages map[string]int) template.HTML {
	c := chart{Heading: "Language Breakdown", Empty: NoLanguageData}
	if p := NewPieChart(languages); p != nil {
		c.SVG = p.SVG()
		c.Sizes = normalize.Languages(languages)
	}
	return fragment("chart", c)
}

// Contributors renders the contribution bar chart or its placeholder
func Contributors(contributors []domain.Contributor) template.HTML {
	c := chart{Heading: "Contribution Graph", Empty: NoContributorData}
	if b := NewBarChart(contributors); b != nil {
		c.SVG = b.SVG()
	}
	return fragment("chart", c)
}

// Tree renders the directory tree or its placeholder
func Tree(entries []domain.DirectoryNode) template.HTML {
	c := chart{Heading: "Directory Tree", Empty: NoDirectoryData}
	if t := NewTreeChart(entries); t != nil {
		c.SVG = t.SVG()
	}
	return fragment("chart", c)
}

// Activity renders the weekly commit timeline or its placeholder
func Activity(activity []domain.ActivityPoint) template.HTML {
	c := chart{Heading: "Activity Timeline", Empty: NoActivityData}
	if l := NewLineChart(activity); l != nil {
		c.SVG = l.SVG()
	}
	return fragment("chart", c)
}

// Coverage renders the coverage gauge or its placeholder
func Coverage(coverage *domain.Coverage) template.HTML {
	c := chart{Heading: "Test Coverage", Empty: NoCoverageData}
	if b := NewProgressBar(coverage); b != nil {
		c.SVG = b.SVG()
	}
	return fragment("chart", c)
}

// Stats renders the statistics cards. A nil payload renders zeroed cards.
func Stats(s *domain.RepositoryStats) template.HTML {
	return fragment("stats", normalize.StatsCards(s))
}

// Issues renders issue totals and the most recent issues
func Issues(r *domain.IssueReport) template.HTML {
	return fragment("issues", normalize.Issues(r))
}

// PullRequests renders pull request totals and the most recent pull requests
func PullRequests(r *domain.PullRequestReport) template.HTML {
	return fragment("pull-requests", normalize.PullRequests(r))
}

// Releases renders the release cards or "No releases found."
func Releases(releases []domain.Release) template.HTML {
	return fragment("releases", normalize.Releases(releases))
}

// Dependencies renders manifest excerpts or "No dependency files found."
func Dependencies(deps domain.Dependencies) template.HTML {
	return fragment("dependencies", normalize.Dependencies(deps))
}

// Topics renders topic tags or "No topics found."
func Topics(topics []string) template.HTML {
	return fragment("topics", topics)
}
