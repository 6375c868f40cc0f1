package render

import (
	"bytes"
	"html/template"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

// Chart colors
const (
	ColorPrimary = "#007bff"
	ColorFile    = "#aaa"
	ColorLink    = "#555"
	ColorTrack   = "#eee"
	ColorGood    = "#28a745"
	ColorWarn    = "#ffc107"
	ColorBad     = "#dc3545"
)

// category10 is the categorical palette used for language slices
var category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Point is a position in chart coordinates
type Point struct {
	X, Y float64
}

// Margin is the space reserved around a plot area
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Tick is one labeled axis position
type Tick struct {
	Label string
	Pos   float64
}

// num formats a coordinate for path data
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
}

func px(f float64) int {
	return int(math.Round(f))
}

func attr(name, value string) string {
	return name + `="` + value + `"`
}

// writeSVG draws an inline svg element. Text passed to the canvas is XML-escaped.
func writeSVG(width, height int, draw func(canvas *svg.SVG)) template.HTML {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height)
	draw(canvas)
	canvas.End()

	// inline svg in HTML needs no XML declaration
	out := buf.Bytes()
	if i := bytes.Index(out, []byte("<svg")); i > 0 {
		out = out[i:]
	}
	return template.HTML(out)
}

func drawLeftAxis(canvas *svg.SVG, x, top, bottom float64, ticks []Tick) {
	canvas.Gtransform("translate(" + num(x) + ",0)")
	canvas.Path("M-6,"+num(bottom)+"H0V"+num(top)+"H-6", `fill="none"`, `stroke="currentColor"`)
	for _, t := range ticks {
		canvas.Gtransform("translate(0," + num(t.Pos) + ")")
		canvas.Line(-6, 0, 0, 0, `stroke="currentColor"`)
		canvas.Text(-9, 0, t.Label, `dy="0.32em"`, `text-anchor="end"`, `font-size="10"`, `fill="currentColor"`)
		canvas.Gend()
	}
	canvas.Gend()
}

func drawBottomAxis(canvas *svg.SVG, y, left, right float64, ticks []Tick) {
	canvas.Gtransform("translate(0," + num(y) + ")")
	canvas.Path("M"+num(left)+",6V0H"+num(right)+"V6", `fill="none"`, `stroke="currentColor"`)
	for _, t := range ticks {
		canvas.Gtransform("translate(" + num(t.Pos) + ",0)")
		canvas.Line(0, 0, 0, 6, `stroke="currentColor"`)
		canvas.Text(0, 9, t.Label, `dy="0.71em"`, `transform="rotate(-40)"`, `text-anchor="end"`, `font-size="10"`, `fill="currentColor"`)
		canvas.Gend()
	}
	canvas.Gend()
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
