package render

import (
	"html/template"
	"io"
)

// Step is one progress marker shown while loading
type Step struct {
	Label  string
	Active bool
}

// PageView is everything the dashboard page displays
type PageView struct {
	Input       string
	Loading     bool
	Steps       []Step
	Error       string
	ShowResults bool
	Examples    []string
	Regions     map[Region]template.HTML
}

// Region returns the fragment for a region id, empty when not rendered
func (v PageView) Region(id string) template.HTML {
	return v.Regions[Region(id)]
}

// Page writes the full dashboard document
func Page(w io.Writer, v PageView) error {
	return templates.ExecuteTemplate(w, "page", v)
}
