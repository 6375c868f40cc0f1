package render

import (
	"html/template"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/kurihiro0119/repo-analyzer/internal/normalize"
)

// Arc is one slice of the language pie
type Arc struct {
	Label      string
	Value      int
	StartAngle float64
	EndAngle   float64
	Color      string
	Centroid   Point
	Path       string
}

// PieChart is the language breakdown
type PieChart struct {
	Width  int
	Height int
	Radius float64
	Arcs   []Arc
}

// NewPieChart lays out one arc per language, largest first, clockwise from
// twelve o'clock. Returns nil when there is nothing to draw.
func NewPieChart(languages map[string]int) *PieChart {
	rows := normalize.Languages(languages)
	total := 0
	for _, r := range rows {
		total += r.Bytes
	}
	if total <= 0 {
		return nil
	}

	p := &PieChart{Width: 400, Height: 300}
	p.Radius = math.Min(float64(p.Width), float64(p.Height)) / 2

	angle := 0.0
	for i, r := range rows {
		sweep := 2 * math.Pi * float64(r.Bytes) / float64(total)
		a := Arc{
			Label:      r.Name,
			Value:      r.Bytes,
			StartAngle: angle,
			EndAngle:   angle + sweep,
			Color:      category10[i%len(category10)],
		}
		mid := (a.StartAngle + a.EndAngle) / 2
		a.Centroid = Point{X: p.Radius / 2 * math.Sin(mid), Y: -p.Radius / 2 * math.Cos(mid)}
		a.Path = arcPath(p.Radius, a.StartAngle, a.EndAngle)
		p.Arcs = append(p.Arcs, a)
		angle += sweep
	}
	return p
}

// arcPath draws a sector from the center
func arcPath(r, a0, a1 float64) string {
	const epsilon = 1e-6
	rs := num(r)
	if a1-a0 >= 2*math.Pi-epsilon {
		return "M0," + num(-r) + "A" + rs + "," + rs + ",0,1,1,0," + rs + "A" + rs + "," + rs + ",0,1,1,0," + num(-r) + "Z"
	}
	large := "0"
	if a1-a0 > math.Pi {
		large = "1"
	}
	x0, y0 := r*math.Sin(a0), -r*math.Cos(a0)
	x1, y1 := r*math.Sin(a1), -r*math.Cos(a1)
	return "M" + num(x0) + "," + num(y0) +
		"A" + rs + "," + rs + ",0," + large + ",1," + num(x1) + "," + num(y1) +
		"L0,0Z"
}

// SVG renders the chart
func (p *PieChart) SVG() template.HTML {
	return writeSVG(p.Width, p.Height, func(canvas *svg.SVG) {
		canvas.Translate(p.Width/2, p.Height/2)
		for _, a := range p.Arcs {
			canvas.Group()
			canvas.Path(a.Path, attr("fill", a.Color))
			canvas.Text(0, 0, a.Label,
				`transform="translate(`+num(a.Centroid.X)+`,`+num(a.Centroid.Y)+`)"`,
				`text-anchor="middle"`, `font-size="12px"`)
			canvas.Gend()
		}
		canvas.Gend()
	})
}
