package report

import "github.com/seo-optimizer/reportview/analysis"

// Status is the outcome of one checklist signal.
type Status int

const (
	StatusInfo Status = iota
	StatusSuccess
	StatusFailure
	StatusWarning
)

const (
	GlyphSuccess = "✅"
	GlyphFailure = "❌"
	GlyphWarning = "⚠️"
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusWarning:
		return "warning"
	default:
		return "info"
	}
}

// Glyph is the icon shown in front of a signal. Info signals have none.
func (s Status) Glyph() string {
	switch s {
	case StatusSuccess:
		return GlyphSuccess
	case StatusFailure:
		return GlyphFailure
	case StatusWarning:
		return GlyphWarning
	default:
		return ""
	}
}

// StatusOf maps a tri-state: true is success, false is failure, anything else a warning.
func StatusOf(t analysis.TriState) Status {
	switch t {
	case analysis.True:
		return StatusSuccess
	case analysis.False:
		return StatusFailure
	default:
		return StatusWarning
	}
}


// Signal is one marked fact inside a checklist item.
type Signal struct {
	Status Status
	Text   string
}

// Item is one checklist line, e.g. "Layout: ✅ Header, ❌ Footer, ⚠️ Main section".
type Item struct {
	Label   string
	Signals []Signal
	Detail  string
}

// Section is the view model of one report tab.
type Section struct {
	Kind               string
	Title              string
	Score              int
	Error              string
	Summary            string
	Items              []Item
	SuggestionsHeading string
	Suggestions        []string
}

func (s Section) Failed() bool {
	return s.Error != ""
}

// Tiers holds the three summary lines of a section, best first.
type Tiers [3]string

// Summary picks the line for score: >= 80, >= 50, else.
func Summary(score int, tiers Tiers) string {
	switch {
	case score >= 80:
		return tiers[0]
	case score >= 50:
		return tiers[1]
	default:
		return tiers[2]
	}
}

// Aggregate concatenates suggestion lists in order, keeping duplicates.
func Aggregate(lists ...[]string) []string {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]string, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Glyphs returns every glyph the section will display, in order.
func (s Section) Glyphs() []string {
	var out []string
	for _, item := range s.Items {
		for _, sig := range item.Signals {
			if g := sig.Status.Glyph(); g != "" {
				out = append(out, g)
			}
		}
	}
	return out
}
