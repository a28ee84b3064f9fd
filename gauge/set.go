package gauge

import "html/template"

// Set owns the three gauges of one report view. It is created once per view
// and reused for every submission.
type Set struct {
	gauges map[Slot]*Gauge
}

func NewSet() *Set {
	s := &Set{gauges: make(map[Slot]*Gauge, 3)}
	for _, slot := range Slots() {
		s.gauges[slot] = New(slot)
	}
	return s
}

// Get returns the gauge for slot, or nil for an unknown slot.
func (s *Set) Get(slot Slot) *Gauge {
	return s.gauges[slot]
}

// Update sets the score of one gauge in place.
func (s *Set) Update(slot Slot, score int, errText string) {
	if g, ok := s.gauges[slot]; ok {
		g.Update(score, errText)
	}
}

// Rendered is one drawn gauge together with its state.
type Rendered struct {
	View
	HTML template.HTML
}

// RenderAll draws every gauge in page order.
func (s *Set) RenderAll() ([]Rendered, error) {
	out := make([]Rendered, 0, len(s.gauges))
	for _, slot := range Slots() {
		g := s.gauges[slot]
		view := g.View()
		html, err := g.Render()
		if err != nil {
			return nil, err
		}
		out = append(out, Rendered{View: view, HTML: html})
	}
	return out, nil
}
