package report

import (
	"fmt"
	"strconv"

	"github.com/seo-optimizer/reportview/analysis"
)

var (
	uxTiers = Tiers{
		"The website performs well in overall usability.",
		"The website has some usability issues that should be addressed.",
		"The website has significant usability problems.",
	}
	seoTiers = Tiers{
		"The website is well-optimized for search engines.",
		"Some SEO improvements are recommended.",
		"The website has major SEO issues.",
	}
	performanceTiers = Tiers{
		"The website loads quickly and is well-optimized.",
		"Some performance optimizations are recommended.",
		"The website has major performance issues.",
	}
)

const (
	headingSummary     = "Summary & Suggestions"
	headingSuggestions = "Suggestions"
)

// UX builds the usability tab.
func UX(ux analysis.UXAnalysis) Section {
	sec := Section{Kind: "ux", Title: "UX", Score: ux.Score, Error: ux.Error}
	if sec.Failed() {
		return sec
	}

	nav := ux.Navigation
	navSignal := Signal{Status: StatusSuccess, Text: "Clear and intuitive"}
	if len(nav.BrokenLinks) > 0 {
		navSignal = Signal{Status: StatusWarning, Text: "Some broken links detected"}
	}

	read := ux.Readability
	readSignal := Signal{Status: StatusSuccess, Text: "Good paragraph structure"}
	if read.AverageParagraphLength <= 0 {
		readSignal = Signal{Status: StatusWarning, Text: "Needs more readable content"}
	}

	layout := ux.Layout
	access := ux.Accessibility

	sec.Summary = Summary(ux.Score, uxTiers)
	sec.Items = []Item{
		{Label: "Navigation", Signals: []Signal{navSignal}, Detail: fmt.Sprintf("(%d links)", nav.TotalLinks)},
		{
			Label:   "Readability",
			Signals: []Signal{readSignal},
			Detail:  fmt.Sprintf("(Avg. paragraph: %s words)", strconv.FormatFloat(read.AverageParagraphLength, 'f', -1, 64)),
		},
		{Label: "Layout", Signals: []Signal{
			{Status: StatusOf(layout.HasHeader), Text: "Header"},
			{Status: StatusOf(layout.HasFooter), Text: "Footer"},
			{Status: StatusOf(layout.HasMain), Text: "Main section"},
		}},
		{Label: "Accessibility", Signals: []Signal{
			{Status: StatusOf(access.HasARIALabels), Text: "ARIA labels"},
			{Status: StatusOf(access.HasAltText), Text: "Alt text"},
			{Status: StatusOf(access.HasSkipLinks), Text: "Skip links"},
		}},
	}
	sec.SuggestionsHeading = headingSummary
	sec.Suggestions = Aggregate(nav.Suggestions, read.Suggestions, layout.Suggestions, access.Suggestions)
	return sec
}

func presence(t analysis.TriState) Signal {
	switch t {
	case analysis.True:
		return Signal{Status: StatusSuccess, Text: "Present"}
	case analysis.False:
		return Signal{Status: StatusFailure, Text: "Missing"}
	default:
		return Signal{Status: StatusWarning, Text: "Incomplete"}
	}
}

// SEO builds the search engine tab.
func SEO(seo analysis.SEOAnalysis) Section {
	sec := Section{Kind: "seo", Title: "SEO", Score: seo.Score, Error: seo.Error}
	if sec.Failed() {
		return sec
	}

	meta := seo.MetaTags
	alt := seo.AltTags
	headings := seo.Headings
	mobile := seo.MobileFriendliness
	content := seo.Content

	var altSignal Signal
	switch {
	case alt.TotalImages == 0:
		altSignal = Signal{Status: StatusWarning, Text: "No images"}
	case alt.ImagesWithoutAlt == 0:
		altSignal = Signal{Status: StatusSuccess, Text: "All images have alt"}
	default:
		altSignal = Signal{Status: StatusFailure, Text: "Missing alt text"}
	}

	headingSignal := Signal{Status: StatusFailure, Text: "Missing"}
	if headings.TotalHeadings > 0 {
		headingSignal = Signal{Status: StatusSuccess, Text: "Present"}
	}

	contentSignal := Signal{Status: StatusFailure, Text: "Insufficient"}
	if content.TotalWords > 0 {
		contentSignal = Signal{Status: StatusSuccess, Text: "Sufficient"}
	}

	sec.Summary = Summary(seo.Score, seoTiers)
	sec.Items = []Item{
		{Label: "Meta Title", Signals: []Signal{presence(meta.HasTitle)}},
		{Label: "Meta Description", Signals: []Signal{presence(meta.HasDescription)}},
		{Label: "Meta Keywords", Signals: []Signal{presence(meta.HasKeywords)}},
		{Label: "Alt Tags", Signals: []Signal{altSignal}},
		{Label: "Headings", Signals: []Signal{headingSignal}, Detail: fmt.Sprintf("(H1: %d)", headings.H1Count)},
		{Label: "Mobile Friendly", Signals: []Signal{presence(mobile.HasViewport)}},
		{Label: "Content", Signals: []Signal{contentSignal}, Detail: fmt.Sprintf("(%d words)", content.TotalWords)},
	}
	sec.SuggestionsHeading = headingSummary
	sec.Suggestions = Aggregate(meta.Suggestions, alt.Suggestions, headings.Suggestions, mobile.Suggestions, content.Suggestions)
	return sec
}

func enabled(b bool) Signal {
	if b {
		return Signal{Status: StatusSuccess, Text: "Enabled"}
	}
	return Signal{Status: StatusFailure, Text: "Not enabled"}
}

// Performance builds the page speed tab.
func Performance(perf analysis.PerformanceAnalysis) Section {
	sec := Section{Kind: "performance", Title: "Performance", Score: perf.Score, Error: perf.Error}
	if sec.Failed() {
		return sec
	}

	res := perf.Resources
	features := perf.OptimizationFeatures

	sec.Summary = Summary(perf.Score, performanceTiers)
	sec.Items = []Item{
		{Label: "Load Time", Signals: []Signal{{Text: perf.LoadTime}}},
		{Label: "Page Size", Signals: []Signal{{Text: perf.PageSize}}},
		{Label: "Resources", Signals: []Signal{{
			Text: fmt.Sprintf("%d scripts, %d stylesheets, %d images", res.Scripts, res.Stylesheets, res.Images),
		}}},
		{Label: "Compression", Signals: []Signal{enabled(features.CompressionEnabled)}},
		{Label: "Caching", Signals: []Signal{enabled(features.CachingEnabled)}},
	}
	sec.SuggestionsHeading = headingSuggestions
	sec.Suggestions = Aggregate(perf.Suggestions)
	return sec
}

// Sections builds all three tabs in page order.
func Sections(res *analysis.Result) []Section {
	return []Section{UX(res.UX), SEO(res.SEO), Performance(res.Performance)}
}
