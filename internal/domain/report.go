package domain

// Node types of a DirectoryNode
const (
	NodeTypeDir  = "dir"
	NodeTypeFile = "file"
)

// DirectoryNode is one entry of the repository tree
type DirectoryNode struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Children []DirectoryNode `json:"children,omitempty"`
}

// Tree is the /tree payload
type Tree struct {
	Tree []DirectoryNode `json:"tree"`
}

// ActivityPoint is the commit count of one week, keyed "YYYY-WW" with Monday-first week numbers
type ActivityPoint struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// Activity is the /activity payload
type Activity struct {
	Activity []ActivityPoint `json:"activity"`
}

// Coverage is the detected test coverage. Both fields are null when nothing was found.
type Coverage struct {
	Coverage *int    `json:"coverage"`
	Source   *string `json:"source"`
}

// Issue is an entry of the recent issues list
type Issue struct {
	Number        int      `json:"number"`
	Title         string   `json:"title"`
	State         string   `json:"state"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	ClosedAt      string   `json:"closed_at,omitempty"`
	User          string   `json:"user"`
	Labels        []string `json:"labels"`
	Comments      int      `json:"comments"`
	IsPullRequest bool     `json:"is_pull_request"`
}

// IssueStatistics summarizes issues. AvgResponseTime is in days.
type IssueStatistics struct {
	TotalOpen       int      `json:"total_open"`
	TotalClosed     int      `json:"total_closed"`
	AvgResponseTime *float64 `json:"avg_response_time"`
}

// IssueReport is the /issues payload
type IssueReport struct {
	Statistics   IssueStatistics `json:"statistics"`
	RecentIssues []Issue         `json:"recent_issues"`
}

// PullRequest is an entry of the recent pull requests list
type PullRequest struct {
	Number       int      `json:"number"`
	Title        string   `json:"title"`
	State        string   `json:"state"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
	MergedAt     string   `json:"merged_at,omitempty"`
	User         string   `json:"user"`
	Labels       []string `json:"labels"`
	Comments     int      `json:"comments"`
	Commits      int      `json:"commits"`
	Additions    int      `json:"additions"`
	Deletions    int      `json:"deletions"`
	ChangedFiles int      `json:"changed_files"`
	Merged       bool     `json:"merged"`
}

// PullRequestStatistics summarizes pull requests. AvgMergeTime is in days.
type PullRequestStatistics struct {
	TotalOpen    int      `json:"total_open"`
	TotalClosed  int      `json:"total_closed"`
	TotalMerged  int      `json:"total_merged"`
	AvgMergeTime *float64 `json:"avg_merge_time"`
}

// PullRequestReport is the /pull-requests payload
type PullRequestReport struct {
	Statistics PullRequestStatistics `json:"statistics"`
	RecentPRs  []PullRequest         `json:"recent_prs"`
}

// Release is a published or draft release
type Release struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	CreatedAt   string `json:"created_at"`
	PublishedAt string `json:"published_at,omitempty"`
	Prerelease  bool   `json:"prerelease"`
	Draft       bool   `json:"draft"`
	Downloads   int    `json:"downloads"` // asset count
}

// Releases is the /releases payload
type Releases struct {
	Releases []Release `json:"releases"`
}

// DependencyFileNames are the manifests looked up at the repository root, in display order
var DependencyFileNames = []string{
	"package.json",
	"requirements.txt",
	"pom.xml",
	"build.gradle",
	"Gemfile",
	"Cargo.toml",
	"go.mod",
}

// Dependencies maps a manifest name to its content, nil when the file is absent
type Dependencies map[string]*string
