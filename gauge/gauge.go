package gauge

import (
	_ "embed"
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Slot identifies one of the three score gauges on the page.
type Slot string

const (
	SlotUX          Slot = "ux"
	SlotSEO         Slot = "seo"
	SlotPerformance Slot = "performance"
)

// Slots lists the gauges in page order.
func Slots() []Slot {
	return []Slot{SlotUX, SlotSEO, SlotPerformance}
}

// Label is the human readable name of the slot.
func (s Slot) Label() string {
	switch s {
	case SlotUX:
		return "UX"
	case SlotSEO:
		return "SEO"
	case SlotPerformance:
		return "Performance"
	default:
		return string(s)
	}
}

const (
	size          = 120.0
	outerRadius   = size / 2
	cutout        = 0.75
	strokeWidth   = outerRadius * (1 - cutout)
	ringRadius    = outerRadius - strokeWidth/2
	circumference = 2 * math.Pi * ringRadius
)

//go:embed gauge.tmpl
var gaugeTemplate string

var tmpl = template.Must(template.New("gauge").Parse(gaugeTemplate))

// View is what the gauge template needs to draw one doughnut.
type View struct {
	Slot          Slot
	Label         string
	ChartID       string
	TextID        string
	Score         int
	Color         string
	Level         Level
	Animate       bool
	Error         string
	Size          float64
	Center        float64
	Radius        float64
	StrokeWidth   float64
	Dash          float64
	Circumference float64
	TrackColor    string
}

// Gauge is a circular score indicator. It is updated in place across
// submissions and only animates the first time it is rendered.
// A Gauge is not safe for concurrent use.
type Gauge struct {
	slot    Slot
	score   int
	errText string
	painted bool
}

// New returns a gauge for slot showing a score of 0.
func New(slot Slot) *Gauge {
	return &Gauge{slot: slot}
}

// Update sets the score (clamped to 0-100) and the section error, if any.
func (g *Gauge) Update(score int, errText string) {
	g.score = min(max(score, 0), 100)
	g.errText = errText
}

func (g *Gauge) Slot() Slot { return g.slot }
func (g *Gauge) Score() int { return g.score }
func (g *Gauge) Error() string { return g.errText }
func (g *Gauge) Painted() bool { return g.painted }
func (g *Gauge) Color() string { return Color(g.score) }
func (g *Gauge) Fraction() float64 {
	return float64(g.score) / 100
}

// View returns the current drawing state without marking the gauge painted.
func (g *Gauge) View() View {
	return View{
		Slot:          g.slot,
		Label:         g.slot.Label(),
		ChartID:       string(g.slot) + "ScoreChart",
		TextID:        string(g.slot) + "ScoreText",
		Score:         g.score,
		Color:         g.Color(),
		Level:         LevelFor(g.score),
		Animate:       !g.painted,
		Error:         g.errText,
		Size:          size,
		Center:        outerRadius,
		Radius:        ringRadius,
		StrokeWidth:   strokeWidth,
		Dash:          g.Fraction() * circumference,
		Circumference: circumference,
		TrackColor:    TrackColor,
	}
}

// Render draws the gauge as inline SVG plus its score text.
func (g *Gauge) Render() (template.HTML, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, g.View()); err != nil {
		return "", fmt.Errorf("failed to render %s gauge: %w", g.slot, err)
	}
	g.painted = true
	return template.HTML(buf.String()), nil
}
