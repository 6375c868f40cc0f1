package render

import (
	"html/template"
	"strings"
	"time"

	svg "github.com/ajstarks/svgo"

	"github.com/kurihiro0119/repo-analyzer/internal/aggregator"
	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

const maxTimeTicks = 8

// LinePoint is one plotted week
type LinePoint struct {
	Week  string
	Time  time.Time
	Count int
	X     float64
	Y     float64
}

// LineChart is the activity timeline
type LineChart struct {
	Width  int
	Height int
	Margin Margin
	Title  string
	Stroke string
	Points []LinePoint
	Path   string
	XTicks []Tick
	YTicks []Tick
}

// NewLineChart plots weekly commit counts in the given order. Weeks that do
// not parse as "%Y-%W" are dropped; nil is returned when none remain.
func NewLineChart(activity []domain.ActivityPoint) *LineChart {
	var points []LinePoint
	for _, a := range activity {
		t, ok := aggregator.ParseWeek(a.Week)
		if !ok {
			continue
		}
		points = append(points, LinePoint{Week: a.Week, Time: t, Count: a.Count})
	}
	if len(points) == 0 {
		return nil
	}

	c := &LineChart{
		Width:  600,
		Height: 300,
		Margin: Margin{Top: 30, Right: 30, Bottom: 50, Left: 60},
		Title:  "Commits per Week",
		Stroke: ColorPrimary,
	}
	left, right := c.Margin.Left, float64(c.Width)-c.Margin.Right
	bottom := float64(c.Height) - c.Margin.Bottom

	first, last := points[0].Time, points[0].Time
	peak := 0
	for _, p := range points {
		if p.Time.Before(first) {
			first = p.Time
		}
		if p.Time.After(last) {
			last = p.Time
		}
		if p.Count > peak {
			peak = p.Count
		}
	}
	x := linearScale{d0: float64(first.Unix()), d1: float64(last.Unix()), r0: left, r1: right}
	y := newNiceLinear(float64(peak), bottom, c.Margin.Top)

	var d strings.Builder
	for i := range points {
		points[i].X = x.at(float64(points[i].Time.Unix()))
		points[i].Y = y.at(float64(points[i].Count))
		if i == 0 {
			d.WriteString("M")
		} else {
			d.WriteString("L")
		}
		d.WriteString(num(points[i].X) + "," + num(points[i].Y))
	}
	c.Points = points
	c.Path = d.String()

	stride := (len(points) + maxTimeTicks - 1) / maxTimeTicks
	for i := 0; i < len(points); i += stride {
		c.XTicks = append(c.XTicks, Tick{Label: aggregator.WeekKey(points[i].Time), Pos: points[i].X})
	}
	for _, v := range y.ticks(10) {
		c.YTicks = append(c.YTicks, Tick{Label: formatTick(v), Pos: y.at(v)})
	}
	return c
}

// SVG renders the chart
func (c *LineChart) SVG() template.HTML {
	bottom := float64(c.Height) - c.Margin.Bottom
	return writeSVG(c.Width, c.Height, func(canvas *svg.SVG) {
		drawBottomAxis(canvas, bottom, c.Margin.Left, float64(c.Width)-c.Margin.Right, c.XTicks)
		drawLeftAxis(canvas, c.Margin.Left, c.Margin.Top, bottom, c.YTicks)
		canvas.Path(c.Path, `fill="none"`, attr("stroke", c.Stroke), `stroke-width="2"`)
		canvas.Text(c.Width/2, px(c.Margin.Top)-10, c.Title, `text-anchor="middle"`, `font-size="16px"`)
	})
}
