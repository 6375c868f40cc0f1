package render

import (
	"html/template"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

// Bar is one contributor column
type Bar struct {
	Label  string
	Value  int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// BarChart is the contribution graph
type BarChart struct {
	Width  int
	Height int
	Margin Margin
	Title  string
	Fill   string
	Bars   []Bar
	XTicks []Tick
	YTicks []Tick
}

// NewBarChart lays out one bar per contributor in the given order.
// Returns nil for an empty list.
func NewBarChart(contributors []domain.Contributor) *BarChart {
	if len(contributors) == 0 {
		return nil
	}

	c := &BarChart{
		Width:  500,
		Height: 300,
		Margin: Margin{Top: 30, Right: 20, Bottom: 60, Left: 60},
		Title:  "Commits per Contributor",
		Fill:   ColorPrimary,
	}
	bottom := float64(c.Height) - c.Margin.Bottom

	peak := 0
	for _, ct := range contributors {
		if ct.Contributions > peak {
			peak = ct.Contributions
		}
	}
	x := newBandScale(len(contributors), c.Margin.Left, float64(c.Width)-c.Margin.Right, 0.2)
	y := newNiceLinear(float64(peak), bottom, c.Margin.Top)

	for i, ct := range contributors {
		top := y.at(float64(ct.Contributions))
		c.Bars = append(c.Bars, Bar{
			Label:  ct.Login,
			Value:  ct.Contributions,
			X:      x.at(i),
			Y:      top,
			Width:  x.bandwidth,
			Height: y.at(0) - top,
		})
		c.XTicks = append(c.XTicks, Tick{Label: ct.Login, Pos: x.at(i) + x.bandwidth/2})
	}
	for _, v := range y.ticks(10) {
		c.YTicks = append(c.YTicks, Tick{Label: formatTick(v), Pos: y.at(v)})
	}
	return c
}

// SVG renders the chart
func (c *BarChart) SVG() template.HTML {
	bottom := float64(c.Height) - c.Margin.Bottom
	return writeSVG(c.Width, c.Height, func(canvas *svg.SVG) {
		drawBottomAxis(canvas, bottom, c.Margin.Left, float64(c.Width)-c.Margin.Right, c.XTicks)
		drawLeftAxis(canvas, c.Margin.Left, c.Margin.Top, bottom, c.YTicks)
		for _, b := range c.Bars {
			canvas.Rect(px(b.X), px(b.Y), px(b.Width), px(b.Height),
				`class="bar"`, attr("fill", c.Fill), attr("data-value", strconv.Itoa(b.Value)))
		}
		canvas.Text(c.Width/2, px(c.Margin.Top)-10, c.Title, `text-anchor="middle"`, `font-size="16px"`)
	})
}
