package view

// Tab is one tab button and the content panel it controls.
type Tab struct {
	ID     string
	Label  string
	Active bool
}

// Tabs keeps exactly one tab active at a time.
type Tabs struct {
	tabs   []Tab
	active string
}

// NewTabs builds a tab bar. The first tab marked Active is the initial
// state; if none is marked, the first tab is.
func NewTabs(tabs ...Tab) *Tabs {
	t := &Tabs{tabs: make([]Tab, len(tabs))}
	copy(t.tabs, tabs)
	for _, tab := range tabs {
		if tab.Active {
			t.active = tab.ID
			break
		}
	}
	if t.active == "" && len(tabs) > 0 {
		t.active = tabs[0].ID
	}
	return t
}

// DefaultTabs is the report tab bar with the UX tab active.
func DefaultTabs() *Tabs {
	return NewTabs(
		Tab{ID: "ux", Label: "UX Analysis", Active: true},
		Tab{ID: "seo", Label: "SEO Analysis"},
		Tab{ID: "performance", Label: "Performance"},
	)
}

// Activate makes id the only active tab. Unknown ids leave the state unchanged.
func (t *Tabs) Activate(id string) bool {
	if !t.Has(id) {
		return false
	}
	t.active = id
	return true
}

func (t *Tabs) Has(id string) bool {
	for _, tab := range t.tabs {
		if tab.ID == id {
			return true
		}
	}
	return false
}

func (t *Tabs) Active() string {
	return t.active
}

func (t *Tabs) IsActive(id string) bool {
	return t.active == id
}

// List returns the tabs in order with the active marker set.
func (t *Tabs) List() []Tab {
	out := make([]Tab, len(t.tabs))
	for i, tab := range t.tabs {
		tab.Active = tab.ID == t.active
		out[i] = tab
	}
	return out
}

// Label returns the label of tab id.
func (t *Tabs) Label(id string) string {
	for _, tab := range t.tabs {
		if tab.ID == id {
			return tab.Label
		}
	}
	return id
}
