package term

import (
	"fmt"
	"strings"

	"github.com/seo-optimizer/reportview/analysis"
	"github.com/seo-optimizer/reportview/gauge"
	"github.com/seo-optimizer/reportview/report"
)

const defaultBarWidth = 30

// Renderer draws analysis results for a terminal.
type Renderer struct {
	styles   Styles
	barWidth int
}

func NewRenderer(styles Styles, barWidth int) *Renderer {
	if barWidth <= 0 {
		barWidth = defaultBarWidth
	}
	return &Renderer{styles: styles, barWidth: barWidth}
}

// Bar draws one gauge as a horizontal bar followed by the percentage.
func (r *Renderer) Bar(label string, score int, errText string) string {
	score = min(max(score, 0), 100)
	filled := score * r.barWidth / 100

	var b strings.Builder
	b.WriteString(r.styles.Label.Render(label))
	b.WriteString(r.styles.Score(score).Render(strings.Repeat("█", filled)))
	b.WriteString(r.styles.Track.Render(strings.Repeat("░", r.barWidth-filled)))
	b.WriteString(" ")
	b.WriteString(r.styles.Score(score).Render(fmt.Sprintf("%d%%", score)))
	if errText != "" {
		b.WriteString("  ")
		b.WriteString(r.styles.Error.Render(errText))
	}
	return b.String()
}

// Gauges draws the three score bars of res.
func (r *Renderer) Gauges(res *analysis.Result) string {
	rows := []struct {
		slot  gauge.Slot
		score int
		err   string
	}{
		{gauge.SlotUX, res.UX.Score, res.UX.Error},
		{gauge.SlotSEO, res.SEO.Score, res.SEO.Error},
		{gauge.SlotPerformance, res.Performance.Score, res.Performance.Error},
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, r.Bar(row.slot.Label(), row.score, row.err))
	}
	return strings.Join(lines, "\n")
}

// Section draws one report tab.
func (r *Renderer) Section(sec report.Section) string {
	var b strings.Builder
	if sec.Failed() {
		b.WriteString(r.styles.Error.Render(sec.Title+" Error"))
		b.WriteString("\n")
		b.WriteString(r.styles.Normal.Render(sec.Error))
		return r.styles.Card.Render(b.String())
	}

	fmt.Fprintf(&b, "%s %s\n", r.styles.Header.Render(sec.Title+" Score:"), r.styles.Score(sec.Score).Render(fmt.Sprintf("%d / 100", sec.Score)))
	b.WriteString(r.styles.Normal.Render(sec.Summary))
	b.WriteString("\n\n")

	for _, item := range sec.Items {
		parts := make([]string, 0, len(item.Signals))
		for _, s := range item.Signals {
			if g := s.Status.Glyph(); g != "" {
				parts = append(parts, g+" "+s.Text)
			} else {
				parts = append(parts, s.Text)
			}
		}
		line := "• " + item.Label + ": " + strings.Join(parts, ", ")
		if item.Detail != "" {
			line += " " + r.styles.Muted.Render(item.Detail)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(sec.Suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(r.styles.Header.Render(sec.SuggestionsHeading))
		for _, s := range sec.Suggestions {
			b.WriteString("\n  - ")
			b.WriteString(s)
		}
	}
	return r.styles.Card.Render(b.String())
}

// Result draws the gauges and all three report sections. A result carrying a
// top-level error only shows that error.
func (r *Renderer) Result(res *analysis.Result) string {
	if res.Failed() {
		return r.Banner(res.Error)
	}

	parts := []string{r.styles.Title.Render("Analysis for " + res.URL), r.Gauges(res), ""}
	for _, sec := range report.Sections(res) {
		parts = append(parts, r.Section(sec))
	}
	return strings.Join(parts, "\n")
}

func (r *Renderer) Banner(message string) string {
	return r.styles.Banner.Render(message)
}
