package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/reportview/analysis"
	"github.com/seo-optimizer/reportview/gauge"
	"github.com/seo-optimizer/reportview/report"
	"github.com/seo-optimizer/reportview/storage"
)

const fullResponse = `{
	"url": "https://example.com",
	"ux_analysis": {"score": 91, "navigation": {"broken_links": [], "total_links": 12, "suggestions": ["nav"]}},
	"seo_analysis": {"score": 64, "meta_tags": {"has_title": true}},
	"performance_analysis": {"error": "timed out"}
}`

type analyzeFunc func(ctx context.Context, target string, useAI bool) (*analysis.Result, error)

type fakeAnalyzer struct {
	mu      sync.Mutex
	targets []string
	useAI   []bool
	fn      analyzeFunc
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, target string, useAI bool) (*analysis.Result, error) {
	f.mu.Lock()
	f.targets = append(f.targets, target)
	f.useAI = append(f.useAI, useAI)
	f.mu.Unlock()
	return f.fn(ctx, target, useAI)
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.targets)
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes []string
	sections []string
}

func (r *countingRecorder) RecordOutcome(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *countingRecorder) RecordSectionError(section string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = append(r.sections, section)
}

func decoded(t *testing.T, body string) *analysis.Result {
	t.Helper()
	res, err := analysis.Decode([]byte(body))
	require.NoError(t, err)
	return res
}

func respond(res *analysis.Result, err error) analyzeFunc {
	return func(context.Context, string, bool) (*analysis.Result, error) {
		return res, err
	}
}

func messages(banners []Banner) []string {
	out := make([]string, 0, len(banners))
	for _, b := range banners {
		out = append(out, b.Message)
	}
	return out
}

func TestTabs(t *testing.T) {
	tabs := DefaultTabs()
	assert.Equal(t, "ux", tabs.Active())

	assert.True(t, tabs.Activate("seo"))
	assert.Equal(t, "seo", tabs.Active())

	active := 0
	for _, tab := range tabs.List() {
		if tab.Active {
			active++
			assert.Equal(t, "seo", tab.ID)
		}
	}
	assert.Equal(t, 1, active)

	assert.False(t, tabs.Activate("nope"))
	assert.Equal(t, "seo", tabs.Active(), "unknown tab leaves state unchanged")

	assert.Equal(t, "Performance", tabs.Label("performance"))
	assert.Equal(t, "other", tabs.Label("other"))

	first := NewTabs(Tab{ID: "a"}, Tab{ID: "b"})
	assert.Equal(t, "a", first.Active())
}

func TestBannersExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewBanners(0)
	assert.Equal(t, DefaultBannerTTL, b.TTL())

	b.Push("first", now)
	b.Push("second", now.Add(3*time.Second))

	assert.Equal(t, []string{"first", "second"}, messages(b.Active(now.Add(4*time.Second))))
	assert.Equal(t, []string{"second"}, messages(b.Active(now.Add(5*time.Second))))
	assert.Empty(t, b.Active(now.Add(10*time.Second)))

	banner := Banner{ExpiresAt: now.Add(time.Second)}
	assert.Equal(t, time.Second, banner.Remaining(now))
	assert.Equal(t, time.Duration(0), banner.Remaining(now.Add(time.Minute)))
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"example.com", "https://example.com"},
		{" http://example.com ", "http://example.com"},
		{"HTTPS://Example.com/a", "HTTPS://Example.com/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURL(tt.in), tt.in)
	}
}

func TestSubmitSuccess(t *testing.T) {
	fa := &fakeAnalyzer{fn: respond(decoded(t, fullResponse), nil)}
	rec := &countingRecorder{}
	o := NewOrchestrator(fa, storage.NewMemoryTracker(), rec, nil)
	v := NewReportView("s1", 0)

	outcome := o.Submit(context.Background(), v, Submission{URL: "example.com", UseAI: false})

	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, []string{"https://example.com"}, fa.targets)
	assert.Equal(t, []bool{false}, fa.useAI)
	assert.False(t, v.Loading())
	require.NotNil(t, v.Result())
	assert.Empty(t, v.Banners(time.Now()))

	assert.Equal(t, 91, v.gauges.Get(gauge.SlotUX).Score())
	assert.Equal(t, 64, v.gauges.Get(gauge.SlotSEO).Score())
	assert.Equal(t, "timed out", v.gauges.Get(gauge.SlotPerformance).Error())

	assert.Equal(t, []string{"success"}, rec.outcomes)
	assert.Equal(t, []string{"performance"}, rec.sections)
}

func TestSubmitAppError(t *testing.T) {
	fa := &fakeAnalyzer{fn: respond(decoded(t, `{"error": "bad url"}`), nil)}
	o := NewOrchestrator(fa, nil, nil, nil)
	v := NewReportView("s1", 0)

	outcome := o.Submit(context.Background(), v, Submission{URL: "https://bad", UseAI: true})
	assert.Equal(t, OutcomeAppError, outcome)

	page, err := v.Page(report.NewFormatter(), time.Now())
	require.NoError(t, err)
	assert.True(t, page.ShowResults)
	assert.False(t, page.HasReport)
	assert.Empty(t, page.Gauges)
	assert.Empty(t, page.Panels)
	require.Len(t, page.Banners, 1)
	assert.Equal(t, "bad url", page.Banners[0].Message)
	assert.Positive(t, page.Banners[0].RemainingMS)
}

func TestSubmitFailuresShareBanner(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"status", &analysis.RequestError{Kind: analysis.KindStatus, StatusCode: 500}, OutcomeStatusError},
		{"transport", &analysis.RequestError{Kind: analysis.KindTransport, Err: errors.New("connection refused")}, OutcomeTransportError},
		{"decode", &analysis.RequestError{Kind: analysis.KindDecode, Err: analysis.ErrInvalidPayload}, OutcomeDecodeError},
		{"unclassified", errors.New("boom"), OutcomeTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrchestrator(&fakeAnalyzer{fn: respond(nil, tt.err)}, nil, nil, nil)
			v := NewReportView("s1", 0)

			assert.Equal(t, tt.want, o.Submit(context.Background(), v, Submission{URL: "example.com"}))
			assert.Equal(t, []string{MsgAnalysisFailed}, messages(v.Banners(time.Now())))
			assert.False(t, v.Loading())
			assert.Nil(t, v.Result())
		})
	}
}

func TestSubmitEmptyURL(t *testing.T) {
	fa := &fakeAnalyzer{fn: respond(nil, nil)}
	o := NewOrchestrator(fa, nil, nil, nil)
	v := NewReportView("s1", 0)

	assert.Equal(t, OutcomeInvalidInput, o.Submit(context.Background(), v, Submission{URL: "  "}))
	assert.Zero(t, fa.calls())
	assert.Equal(t, []string{MsgEmptyURL}, messages(v.Banners(time.Now())))
}

func TestSubmitCancelled(t *testing.T) {
	fa := &fakeAnalyzer{fn: func(ctx context.Context, _ string, _ bool) (*analysis.Result, error) {
		return nil, &analysis.RequestError{Kind: analysis.KindTransport, Err: context.Canceled}
	}}
	o := NewOrchestrator(fa, nil, nil, nil)
	v := NewReportView("s1", 0)

	assert.Equal(t, OutcomeCancelled, o.Submit(context.Background(), v, Submission{URL: "example.com"}))
	assert.Empty(t, v.Banners(time.Now()))
	assert.False(t, v.Loading())
}

func TestSubmitSupersededLeavesStateUntouched(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slow := decoded(t, `{"ux_analysis": {"score": 10}, "seo_analysis": {"score": 10}, "performance_analysis": {"score": 10}}`)
	fast := decoded(t, `{"ux_analysis": {"score": 90}, "seo_analysis": {"score": 90}, "performance_analysis": {"score": 90}}`)

	fa := &fakeAnalyzer{fn: func(ctx context.Context, target string, _ bool) (*analysis.Result, error) {
		if strings.Contains(target, "slow") {
			close(started)
			<-release
			return slow, nil
		}
		return fast, nil
	}}
	rec := &countingRecorder{}
	o := NewOrchestrator(fa, storage.NewMemoryTracker(), rec, nil)
	v := NewReportView("s1", 0)

	done := make(chan Outcome, 1)
	go func() {
		done <- o.Submit(context.Background(), v, Submission{URL: "slow.example"})
	}()
	<-started
	assert.True(t, v.Loading())

	assert.Equal(t, OutcomeSuccess, o.Submit(context.Background(), v, Submission{URL: "fast.example"}))
	before := v.Result()

	close(release)
	assert.Equal(t, OutcomeSuperseded, <-done)

	assert.Same(t, before, v.Result())
	assert.Equal(t, 90, v.gauges.Get(gauge.SlotUX).Score())
	assert.False(t, v.Loading())
	assert.Empty(t, v.Banners(time.Now()))
	assert.ElementsMatch(t, []string{"success", "superseded"}, rec.outcomes)
}

// gatedTracker holds the first Begin until release is closed.
type gatedTracker struct {
	*storage.MemoryTracker
	calls   atomic.Int32
	waiting chan struct{}
	release chan struct{}
}

func (g *gatedTracker) Begin(ctx context.Context, session string) (string, error) {
	if g.calls.Add(1) == 1 {
		close(g.waiting)
		<-g.release
	}
	return g.MemoryTracker.Begin(ctx, session)
}

func TestSubmitOverlappingBeginNewestWins(t *testing.T) {
	tr := &gatedTracker{
		MemoryTracker: storage.NewMemoryTracker(),
		waiting:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	secondAnalyzing := make(chan struct{}, 1)
	finishSecond := make(chan struct{})
	first := decoded(t, `{"ux_analysis": {"score": 10}, "seo_analysis": {"score": 10}, "performance_analysis": {"score": 10}}`)
	second := decoded(t, `{"ux_analysis": {"score": 90}, "seo_analysis": {"score": 90}, "performance_analysis": {"score": 90}}`)

	fa := &fakeAnalyzer{fn: func(ctx context.Context, target string, _ bool) (*analysis.Result, error) {
		if strings.Contains(target, "first") {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-finishSecond:
				return first, nil
			}
		}
		secondAnalyzing <- struct{}{}
		<-finishSecond
		return second, nil
	}}
	o := NewOrchestrator(fa, tr, nil, nil)
	v := NewReportView("s1", 0)

	firstDone := make(chan Outcome, 1)
	go func() {
		firstDone <- o.Submit(context.Background(), v, Submission{URL: "first.example"})
	}()
	<-tr.waiting

	secondDone := make(chan Outcome, 1)
	go func() {
		secondDone <- o.Submit(context.Background(), v, Submission{URL: "second.example"})
	}()

	// the second submission must not get ahead of the first one's begin
	select {
	case <-secondAnalyzing:
		t.Error("second submission started while the first was still taking its token")
	case <-time.After(50 * time.Millisecond):
	}
	close(tr.release)

	select {
	case <-secondAnalyzing:
	case <-time.After(time.Second):
		t.Fatal("second submission never reached the analyzer")
	}
	close(finishSecond)

	assert.Equal(t, OutcomeSuperseded, <-firstDone)
	assert.Equal(t, OutcomeSuccess, <-secondDone)
	require.NotNil(t, v.Result())
	assert.Equal(t, 90, v.Result().UX.Score)
	assert.False(t, v.Loading())
}

type revokingTracker struct {
	*storage.MemoryTracker
}

func (r revokingTracker) IsCurrent(context.Context, string, string) (bool, error) {
	return false, nil
}

func TestSubmitSupersededByAnotherReplica(t *testing.T) {
	fa := &fakeAnalyzer{fn: respond(decoded(t, fullResponse), nil)}
	o := NewOrchestrator(fa, revokingTracker{storage.NewMemoryTracker()}, nil, nil)
	v := NewReportView("s1", 0)

	assert.Equal(t, OutcomeSuperseded, o.Submit(context.Background(), v, Submission{URL: "example.com"}))
	assert.Nil(t, v.Result())
	assert.False(t, v.Loading())
}

func TestPageRendersReport(t *testing.T) {
	fa := &fakeAnalyzer{fn: respond(decoded(t, fullResponse), nil)}
	o := NewOrchestrator(fa, nil, nil, nil)
	v := NewReportView("s1", 0)
	f := report.NewFormatter()

	page, err := v.Page(f, time.Now())
	require.NoError(t, err)
	assert.False(t, page.HasReport)
	assert.True(t, page.UseAI)
	assert.Empty(t, page.Gauges)

	require.Equal(t, OutcomeSuccess, o.Submit(context.Background(), v, Submission{URL: "example.com"}))
	require.True(t, v.ActivateTab("seo"))

	page, err = v.Page(f, time.Now())
	require.NoError(t, err)
	assert.True(t, page.HasReport)
	assert.Equal(t, "https://example.com", page.URL)
	require.Len(t, page.Gauges, 3)
	assert.True(t, page.Gauges[0].Animate)
	require.Len(t, page.Panels, 3)

	ids := []string{page.Panels[0].ContentID, page.Panels[1].ContentID, page.Panels[2].ContentID}
	assert.Equal(t, []string{"uxContent", "seoContent", "performanceContent"}, ids)
	assert.True(t, page.Panels[1].Active)
	assert.Equal(t, "SEO Analysis", page.Panels[1].Label)
	assert.Equal(t, "timed out", page.Panels[2].Error)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page.Panels[2].HTML)))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(".analysis-card.error").Length())

	again, err := v.Page(f, time.Now())
	require.NoError(t, err)
	assert.False(t, again.Gauges[0].Animate, "gauges animate on first paint only")
}

func TestRegistry(t *testing.T) {
	tracker := storage.NewMemoryTracker()
	r := NewRegistry(RegistryConfig{SessionTTL: time.Minute, MaxSessions: 2}, tracker, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	a, created := r.Get("")
	assert.True(t, created)
	_, err := tracker.Begin(context.Background(), a.ID())
	require.NoError(t, err)

	same, created := r.Get(a.ID())
	assert.False(t, created)
	assert.Same(t, a, same)

	now = now.Add(5 * time.Second)
	unknown, created := r.Get("forged")
	assert.True(t, created)
	assert.NotEqual(t, "forged", unknown.ID())

	now = now.Add(5 * time.Second)
	c, _ := r.Get("")
	assert.Equal(t, 2, r.Len(), "oldest session evicted over the limit")
	_, created = r.Get(a.ID())
	assert.True(t, created)
	assert.Zero(t, tracker.Len())

	now = now.Add(2 * time.Minute)
	r.Cleanup()
	assert.Zero(t, r.Len())
	_, created = r.Get(c.ID())
	assert.True(t, created)
}

func TestLoad(t *testing.T) {
	v := NewReportView("cli", 0)
	now := time.Now()

	v.Load(decoded(t, fullResponse), now)
	assert.Equal(t, "https://example.com", v.Result().URL)
	assert.Equal(t, 91, v.gauges.Get(gauge.SlotUX).Score())
	assert.Empty(t, v.Banners(now))

	v.Load(decoded(t, `{"error": "bad url"}`), now)
	assert.Nil(t, v.Result())
	assert.Equal(t, []string{"bad url"}, messages(v.Banners(now)))
}
