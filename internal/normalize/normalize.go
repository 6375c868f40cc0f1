// Package normalize maps service payloads onto display-ready view models.
package normalize

import (
	"math"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

// Placeholders for absent values
const (
	NotAvailable         = "N/A"
	NoDescriptionRepo    = "No description available"
	NoDescriptionRelease = "No description"
)

// Display limits
const (
	MaxRecentItems     = 5
	MaxReleases        = 6
	ReleaseBodyLimit   = 100
	DependencyLimit    = 300
	truncationEllipsis = "..."
)

// FormatNumber abbreviates large counts: 1500 -> "1.5K", 2500000 -> "2.5M"
func FormatNumber(n int) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.Itoa(n)
	}
}

// Kilobytes converts bytes to whole kilobytes
func Kilobytes(bytes int) int {
	return int(math.Round(float64(bytes) / 1024))
}

// Megabytes converts kilobytes to whole megabytes
func Megabytes(kb int) int {
	return int(math.Round(float64(kb) / 1024))
}

// Truncate cuts s to at most n runes, appending "..." when it was cut
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + truncationEllipsis
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDate renders a timestamp as "Jan 2, 2006". Unparsable input yields "N/A".
func FormatDate(ts string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return NotAvailable
}

// Overview is the repository summary header
type Overview struct {
	Name        string
	FullName    string
	Description string
	Stars       string
	Forks       string
	Watchers    string
	OpenIssues  string
	Created     string
	Updated     string
}

// NewOverview maps the primary analysis onto the summary header
func NewOverview(a *domain.Analysis) Overview {
	if a == nil {
		return Overview{
			Description: NoDescriptionRepo,
			Stars:       "0",
			Forks:       "0",
			Watchers:    "0",
			OpenIssues:  "0",
			Created:     NotAvailable,
			Updated:     NotAvailable,
		}
	}
	desc := a.Description
	if desc == "" {
		desc = NoDescriptionRepo
	}
	return Overview{
		Name:        a.Name,
		FullName:    a.FullName,
		Description: desc,
		Stars:       FormatNumber(a.Stars),
		Forks:       FormatNumber(a.Forks),
		Watchers:    FormatNumber(a.Watchers),
		OpenIssues:  FormatNumber(a.OpenIssues),
		Created:     FormatDate(a.CreatedAt),
		Updated:     FormatDate(a.UpdatedAt),
	}
}

// LanguageRow is a language with its size in kilobytes
type LanguageRow struct {
	Name  string
	Bytes int
	KB    int
}

// Languages sorts the breakdown by size, largest first, ties by name
func Languages(langs map[string]int) []LanguageRow {
	rows := make([]LanguageRow, 0, len(langs))
	for name, bytes := range langs {
		rows = append(rows, LanguageRow{Name: name, Bytes: bytes, KB: Kilobytes(bytes)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Bytes != rows[j].Bytes {
			return rows[i].Bytes > rows[j].Bytes
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// StatCard is one tile of the statistics grid
type StatCard struct {
	Value string
	Label string
}

// StatsCards maps repository statistics onto the eight grid tiles
func StatsCards(s *domain.RepositoryStats) []StatCard {
	if s == nil {
		s = &domain.RepositoryStats{}
	}
	license := NotAvailable
	if s.License != nil && *s.License != "" {
		license = *s.License
	}
	return []StatCard{
		{Value: FormatNumber(s.Stars), Label: "Stars"},
		{Value: FormatNumber(s.Forks), Label: "Forks"},
		{Value: FormatNumber(s.Watchers), Label: "Watchers"},
		{Value: FormatNumber(s.OpenIssues), Label: "Open Issues"},
		{Value: FormatNumber(s.TotalCommits), Label: "Total Commits"},
		{Value: FormatNumber(s.AgeDays), Label: "Days Old"},
		{Value: strconv.Itoa(Megabytes(s.Size)), Label: "Size (MB)"},
		{Value: license, Label: "License"},
	}
}

// formatDays renders an average in days, or "N/A" when unknown or zero
func formatDays(v *float64) string {
	if v == nil || *v == 0 {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
