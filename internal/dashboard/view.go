package dashboard

import (
	"html/template"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	"github.com/kurihiro0119/repo-analyzer/internal/render"
)

// Examples are the preset repositories offered on the form
var Examples = []string{
	"facebook/react",
	"golang/go",
	"torvalds/linux",
	"microsoft/vscode",
}

// View derives the page model from a state
func View(s State) render.PageView {
	v := render.PageView{
		Input:       s.Input,
		Loading:     s.Loading(),
		Error:       s.Error,
		ShowResults: s.ShowResults(),
		Examples:    Examples,
	}
	for _, step := range s.Steps {
		v.Steps = append(v.Steps, render.Step{Label: step.Label, Active: step.Active})
	}
	if v.ShowResults {
		v.Regions = make(map[render.Region]template.HTML)
		for _, r := range allRegions {
			v.Regions[r] = Fragment(r, s.Report)
		}
	}
	return v
}

var allRegions = append([]render.Region{
	render.RegionOverview,
	render.RegionLanguages,
	render.RegionContributors,
}, render.AuxiliaryRegions...)

// Fragment renders one region from the data backing it in rep
func Fragment(r render.Region, rep *Report) template.HTML {
	switch r {
	case render.RegionOverview:
		return render.Overview(rep.Analysis)
	case render.RegionLanguages:
		var langs map[string]int
		if rep.Analysis != nil {
			langs = rep.Analysis.Languages
		}
		return render.Languages(langs)
	case render.RegionContributors:
		var contributors []domain.Contributor
		if rep.Analysis != nil {
			contributors = rep.Analysis.Contributors
		}
		return render.Contributors(contributors)
	case render.RegionTree:
		return panelFragment(r, rep.Tree, render.Tree)
	case render.RegionActivity:
		return panelFragment(r, rep.Activity, render.Activity)
	case render.RegionCoverage:
		return panelFragment(r, rep.Coverage, render.Coverage)
	case render.RegionStats:
		return panelFragment(r, rep.Stats, render.Stats)
	case render.RegionIssues:
		return panelFragment(r, rep.Issues, render.Issues)
	case render.RegionPullRequests:
		return panelFragment(r, rep.PullRequests, render.PullRequests)
	case render.RegionReleases:
		return panelFragment(r, rep.Releases, render.Releases)
	case render.RegionDependencies:
		return panelFragment(r, rep.Dependencies, render.Dependencies)
	case render.RegionTopics:
		return panelFragment(r, rep.Topics, render.Topics)
	default:
		return render.RegionError(r)
	}
}

func panelFragment[T any](r render.Region, p Panel[T], draw func(T) template.HTML) template.HTML {
	if !p.OK() {
		return render.RegionError(r)
	}
	return draw(p.Value)
}
