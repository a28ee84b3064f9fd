package view

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/seo-optimizer/reportview/analysis"
	"github.com/seo-optimizer/reportview/gauge"
	"github.com/seo-optimizer/reportview/report"
)

// ReportView is the state of one user's report page: the tab bar, the three
// gauges, transient banners and the last successful analysis.
type ReportView struct {
	mu sync.Mutex
	// submitting pairs each tracker token with the begin that installs it
	submitting sync.Mutex

	id      string
	tabs    *Tabs
	gauges  *gauge.Set
	banners *Banners

	url         string
	useAI       bool
	loading     bool
	showResults bool
	result      *analysis.Result

	token    string
	cancel   context.CancelFunc
	lastSeen time.Time
}

// NewReportView creates the view for session id.
func NewReportView(id string, bannerTTL time.Duration) *ReportView {
	return &ReportView{
		id:       id,
		tabs:     DefaultTabs(),
		gauges:   gauge.NewSet(),
		banners:  NewBanners(bannerTTL),
		useAI:    true,
		lastSeen: time.Now(),
	}
}

func (v *ReportView) ID() string {
	return v.id
}

// ActivateTab switches the visible report tab.
func (v *ReportView) ActivateTab(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tabs.Activate(id)
}

// ActiveTab returns the currently active tab id.
func (v *ReportView) ActiveTab() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tabs.Active()
}

// Loading reports whether a submission is in flight.
func (v *ReportView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Result returns the analysis currently on screen, or nil.
func (v *ReportView) Result() *analysis.Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

// Banners returns the banners that have not expired yet.
func (v *ReportView) Banners(now time.Time) []Banner {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.banners.Active(now)
}

// Notify shows a transient banner.
func (v *ReportView) Notify(message string, now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.banners.Push(message, now)
}

// begin starts a submission identified by token. A submission still in
// flight is cancelled; its response will be discarded.
func (v *ReportView) begin(token, target string, useAI bool, cancel context.CancelFunc) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
	}
	v.token = token
	v.cancel = cancel
	v.url = target
	v.useAI = useAI
	v.loading = true
	v.showResults = false
	v.result = nil
}

// apply runs fn under the view lock if token is still the current submission.
func (v *ReportView) apply(token string, fn func()) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.token != token {
		return false
	}
	v.cancel = nil
	v.loading = false
	fn()
	return true
}

// present shows res. The caller holds v.mu.
func (v *ReportView) present(res *analysis.Result, now time.Time) {
	v.showResults = true
	if res.Failed() {
		v.banners.Push(res.Error, now)
		return
	}
	v.result = res
	v.gauges.Update(gauge.SlotUX, res.UX.Score, res.UX.Error)
	v.gauges.Update(gauge.SlotSEO, res.SEO.Score, res.SEO.Error)
	v.gauges.Update(gauge.SlotPerformance, res.Performance.Score, res.Performance.Error)
}

// Load shows a previously saved result without contacting the analyzer.
// Any submission in flight is abandoned.
func (v *ReportView) Load(res *analysis.Result, now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.token = ""
	v.loading = false
	v.result = nil
	v.url = res.URL
	v.present(res, now)
}

func (v *ReportView) isCurrent(token string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.token == token
}

func (v *ReportView) touch(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastSeen = now
}

func (v *ReportView) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

func (v *ReportView) abort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// BannerView is a banner prepared for rendering.
type BannerView struct {
	Message     string
	RemainingMS int64
}

// Panel is one tab content panel.
type Panel struct {
	ID        string
	ContentID string
	Label     string
	Active    bool
	Error     string
	HTML      template.HTML
}

// Page is everything the page template needs.
type Page struct {
	URL         string
	UseAI       bool
	Loading     bool
	ShowResults bool
	HasReport   bool
	Banners     []BannerView
	Tabs        []Tab
	Gauges      []gauge.Rendered
	Panels      []Panel
}

// Page renders the view. Gauges are only drawn once a report is on screen,
// so their first paint is the one that animates.
func (v *ReportView) Page(f *report.Formatter, now time.Time) (*Page, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	page := &Page{
		URL:         v.url,
		UseAI:       v.useAI,
		Loading:     v.loading,
		ShowResults: v.showResults,
		HasReport:   v.result != nil,
		Tabs:        v.tabs.List(),
	}
	for _, b := range v.banners.Active(now) {
		page.Banners = append(page.Banners, BannerView{
			Message:     b.Message,
			RemainingMS: b.Remaining(now).Milliseconds(),
		})
	}
	if v.result == nil {
		return page, nil
	}

	gauges, err := v.gauges.RenderAll()
	if err != nil {
		return nil, err
	}
	page.Gauges = gauges

	fragments, err := f.FormatAll(v.result)
	if err != nil {
		return nil, err
	}
	for _, frag := range fragments {
		page.Panels = append(page.Panels, Panel{
			ID:        frag.Kind,
			ContentID: frag.Kind + "Content",
			Label:     v.tabs.Label(frag.Kind),
			Active:    v.tabs.IsActive(frag.Kind),
			Error:     frag.Error,
			HTML:      frag.HTML,
		})
	}
	return page, nil
}
