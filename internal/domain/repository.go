package domain

import (
	"fmt"
	"strings"
)

// RepoID identifies a repository as owner/name
type RepoID struct {
	Owner string
	Name  string
}

// ParseRepoID parses "owner/name". Surrounding whitespace is ignored.
func ParseRepoID(s string) (RepoID, error) {
	s = strings.TrimSpace(s)
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoID{}, fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return RepoID{Owner: owner, Name: name}, nil
}

func (r RepoID) String() string {
	return r.Owner + "/" + r.Name
}

// Contributor is a contributor login with its commit count
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// Analysis is the primary payload: repository metadata, languages and top contributors
type Analysis struct {
	Name         string         `json:"name"`
	FullName     string         `json:"full_name"`
	Description  string         `json:"description"`
	Stars        int            `json:"stars"`
	Forks        int            `json:"forks"`
	Watchers     int            `json:"watchers"`
	OpenIssues   int            `json:"open_issues"`
	Languages    map[string]int `json:"languages"`
	Contributors []Contributor  `json:"contributors"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
}

// RepositoryStats holds the extended repository statistics
type RepositoryStats struct {
	Stars         int     `json:"stars"`
	Forks         int     `json:"forks"`
	Watchers      int     `json:"watchers"`
	OpenIssues    int     `json:"open_issues"`
	Size          int     `json:"size"` // KB
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
	PushedAt      string  `json:"pushed_at"`
	License       *string `json:"license"`
	DefaultBranch string  `json:"default_branch"`
	Archived      bool    `json:"archived"`
	Fork          bool    `json:"fork"`
	Private       bool    `json:"private"`
	HasWiki       bool    `json:"has_wiki"`
	HasPages      bool    `json:"has_pages"`
	HasDownloads  bool    `json:"has_downloads"`
	HasIssues     bool    `json:"has_issues"`
	HasProjects   bool    `json:"has_projects"`
	AgeDays       int     `json:"age_days"`
	TotalCommits  int     `json:"total_commits"`
}

// Topics lists the repository topics
type Topics struct {
	Topics []string `json:"topics"`
}
