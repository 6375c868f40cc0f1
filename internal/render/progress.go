package render

import (
	"html/template"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

const trackWidth = 260

// ProgressBar is the test coverage gauge
type ProgressBar struct {
	Percent   int
	FillWidth float64
	Color     string
	Label     string
	Source    string
}

// NewProgressBar sizes the gauge for a coverage percentage. Returns nil when
// coverage is unknown.
func NewProgressBar(c *domain.Coverage) *ProgressBar {
	if c == nil || c.Coverage == nil {
		return nil
	}
	pct := *c.Coverage
	b := &ProgressBar{
		Percent:   pct,
		FillWidth: float64(trackWidth*pct) / 100,
		Color:     coverageColor(pct),
		Label:     strconv.Itoa(pct) + "%",
	}
	if c.Source != nil && *c.Source != "" {
		b.Source = "Source: " + *c.Source
	}
	return b
}

func coverageColor(pct int) string {
	switch {
	case pct >= 80:
		return ColorGood
	case pct >= 50:
		return ColorWarn
	default:
		return ColorBad
	}
}

// SVG renders the gauge
func (b *ProgressBar) SVG() template.HTML {
	return writeSVG(300, 80, func(canvas *svg.SVG) {
		canvas.Rect(20, 30, trackWidth, 20, attr("fill", ColorTrack))
		canvas.Rect(20, 30, px(b.FillWidth), 20, attr("fill", b.Color))
		canvas.Text(150, 25, b.Label, `text-anchor="middle"`, `font-size="18px"`)
		canvas.Text(150, 65, b.Source, `text-anchor="middle"`, `font-size="12px"`)
	})
}
