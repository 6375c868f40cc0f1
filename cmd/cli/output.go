package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/kurihiro0119/repo-analyzer/internal/dashboard"
	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	"github.com/kurihiro0119/repo-analyzer/internal/normalize"
)

// jsonPanel is a panel value or its error message
type jsonPanel struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func panelJSON[T any](p dashboard.Panel[T]) jsonPanel {
	if !p.OK() {
		return jsonPanel{Error: p.Err.Error()}
	}
	return jsonPanel{Data: p.Value}
}

type jsonReport struct {
	Repo         string           `json:"repo"`
	Analysis     *domain.Analysis `json:"analysis"`
	Tree         jsonPanel        `json:"tree"`
	Activity     jsonPanel        `json:"activity"`
	Coverage     jsonPanel        `json:"coverage"`
	Stats        jsonPanel        `json:"stats"`
	Issues       jsonPanel        `json:"issues"`
	PullRequests jsonPanel        `json:"pull_requests"`
	Releases     jsonPanel        `json:"releases"`
	Dependencies jsonPanel        `json:"dependencies"`
	Topics       jsonPanel        `json:"topics"`
}

func writeJSON(w io.Writer, r *dashboard.Report) error {
	out := jsonReport{
		Repo:         r.Repo,
		Analysis:     r.Analysis,
		Tree:         panelJSON(r.Tree),
		Activity:     panelJSON(r.Activity),
		Coverage:     panelJSON(r.Coverage),
		Stats:        panelJSON(r.Stats),
		Issues:       panelJSON(r.Issues),
		PullRequests: panelJSON(r.PullRequests),
		Releases:     panelJSON(r.Releases),
		Dependencies: panelJSON(r.Dependencies),
		Topics:       panelJSON(r.Topics),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint(title))
}

func failed(w io.Writer, err error) {
	fmt.Fprintln(w, color.RedString("unavailable: %v", err))
}

func writeTables(w io.Writer, r *dashboard.Report) {
	o := normalize.NewOverview(r.Analysis)
	heading(w, "Repository: "+o.FullName)
	fmt.Fprintln(w, o.Description)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Stars", o.Stars})
	table.Append([]string{"Forks", o.Forks})
	table.Append([]string{"Watchers", o.Watchers})
	table.Append([]string{"Open Issues", o.OpenIssues})
	table.Append([]string{"Created", o.Created})
	table.Append([]string{"Last Updated", o.Updated})
	table.Render()

	heading(w, "Languages")
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Language", "Size (KB)"})
	for _, l := range normalize.Languages(r.Analysis.Languages) {
		table.Append([]string{l.Name, strconv.Itoa(l.KB)})
	}
	table.Render()

	heading(w, "Top Contributors")
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Contributor", "Contributions"})
	for _, c := range r.Analysis.Contributors {
		table.Append([]string{c.Login, strconv.Itoa(c.Contributions)})
	}
	table.Render()

	writeStats(w, r.Stats)
	writeActivity(w, r.Activity)
	writeCoverage(w, r.Coverage)
	writeTree(w, r.Tree)
	writeIssues(w, r.Issues)
	writePullRequests(w, r.PullRequests)
	writeReleases(w, r.Releases)
	writeDependencies(w, r.Dependencies)
	writeTopics(w, r.Topics)
}

func writeStats(w io.Writer, p dashboard.Panel[*domain.RepositoryStats]) {
	heading(w, "Repository Statistics")
	if !p.OK() {
		failed(w, p.Err)
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	for _, card := range normalize.StatsCards(p.Value) {
		table.Append([]string{card.Label, card.Value})
	}
	table.Render()
}

func writeActivity(w io.Writer, p dashboard.Panel[[]domain.ActivityPoint]) {
	heading(w, "Activity (commits per week)")
	if !p.OK() {
		failed(w, p.Err)
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Week", "Commits"})
	for _, a := range p.Value {
		table.Append([]string{a.Week, strconv.Itoa(a.Count)})
	}
	table.Render()
}

func writeCoverage(w io.Writer, p dashboard.Panel[*domain.Coverage]) {
	heading(w, "Test Coverage")
	switch {
	case !p.OK():
		failed(w, p.Err)
	case p.Value == nil || p.Value.Coverage == nil:
		fmt.Fprintln(w, "No coverage data available.")
	default:
		line := strconv.Itoa(*p.Value.Coverage) + "%"
		if p.Value.Source != nil {
			line += " (source: " + *p.Value.Source + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func writeTree(w io.Writer, p dashboard.Panel[[]domain.DirectoryNode]) {
	heading(w, "Directory Tree")
	if !p.OK() {
		failed(w, p.Err)
		return
	}
	var walk func(nodes []domain.DirectoryNode, depth int)
	walk = func(nodes []domain.DirectoryNode, depth int) {
		for _, n := range nodes {
			name := n.Name
			if n.Type == domain.NodeTypeDir {
				name += "/"
			}
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), name)
			walk(n.Children, depth+1)
		}
	}
	walk(p.Value, 0)
}

func writeItems(w io.Writer, items []normalize.ListItem) {
	if len(items) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Number", "State", "Title", "Author", "Created"})
	for _, it := range items {
		table.Append([]string{it.Number, it.StateClass, it.Title, it.Author, it.Created})
	}
	table.Render()
}

func writeIssues(w io.Writer, p dashboard.Panel[*domain.IssueReport]) {
	heading(w, "Issues")
	if !p.OK() {
		failed(w, p.Err)
		return
	}
	v := normalize.Issues(p.Value)
	fmt.Fprintf(w, "Open: %d  Closed: %d  Avg Response (days): %s\n", v.Open, v.Closed, v.AvgResponseDays)
	writeItems(w, v.Recent)
}

func writePullRequests(w io.Writer, p dashboard.Panel[*domain.PullRequestReport]) {
	heading(w, "Pull Requests")
	if !p.OK() {
		failed(w, p.Err)
		return
	}
	v := normalize.PullRequests(p.Value)
	fmt.Fprintf(w, "Open: %d  Merged: %d  Avg Merge Time (days): %s\n", v.Open, v.Merged, v.AvgMergeDays)
	writeItems(w, v.Recent)
}

func writeReleases(w io.Writer, p dashboard.Panel[[]domain.Release]) {
	heading(w, "Releases")
	if !p.OK() {
		failed(w, p.Err)
		return
	}
	cards := normalize.Releases(p.Value)
	if len(cards) == 0 {
		fmt.Fprintln(w, "No releases found.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Tag", "Name", "Published", "Assets"})
	for _, c := range cards {
		table.Append([]string{c.Tag, c.Name, c.Published, strconv.Itoa(c.Assets)})
	}
	table.Render()
}

func writeDependencies(w io.Writer, p dashboard.Panel[domain.Dependencies]) {
	heading(w, "Dependencies")
	if !p.OK() {
		failed(w, p.Err)
		return
	}
	cards := normalize.Dependencies(p.Value)
	if len(cards) == 0 {
		fmt.Fprintln(w, "No dependency files found.")
		return
	}
	for _, c := range cards {
		fmt.Fprintf(w, "%s\n%s\n\n", color.CyanString(c.Filename), c.Excerpt)
	}
}

func writeTopics(w io.Writer, p dashboard.Panel[[]string]) {
	heading(w, "Topics")
	switch {
	case !p.OK():
		failed(w, p.Err)
	case len(p.Value) == 0:
		fmt.Fprintln(w, "No topics found.")
	default:
		fmt.Fprintln(w, strings.Join(p.Value, ", "))
	}
}
