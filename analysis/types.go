package analysis

// TriState is a yes/no signal that the analyzer may leave undetermined.
type TriState int

const (
	Unknown TriState = iota
	True
	False
)

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Result represents the complete analysis of a webpage as returned by the analyzer
type Result struct {
	URL         string
	Error       string
	UX          UXAnalysis
	SEO         SEOAnalysis
	Performance PerformanceAnalysis
}

// Failed reports whether the analyzer rejected the whole request.
func (r *Result) Failed() bool {
	return r.Error != ""
}

type UXAnalysis struct {
	Score         int
	Error         string
	Navigation    Navigation
	Readability   Readability
	Layout        Layout
	Accessibility Accessibility
}

type Navigation struct {
	BrokenLinks []string
	TotalLinks  int
	Suggestions []string
}

type Readability struct {
	AverageParagraphLength float64
	Suggestions            []string
}

type Layout struct {
	HasHeader   TriState
	HasFooter   TriState
	HasMain     TriState
	Suggestions []string
}

type Accessibility struct {
	HasARIALabels TriState
	HasAltText    TriState
	HasSkipLinks  TriState
	Suggestions   []string
}

type SEOAnalysis struct {
	Score              int
	Error              string
	MetaTags           MetaTags
	AltTags            AltTags
	Headings           Headings
	MobileFriendliness MobileFriendliness
	Content            ContentAnalysis
}

type MetaTags struct {
	HasTitle       TriState
	HasDescription TriState
	HasKeywords    TriState
	Suggestions    []string
}

type AltTags struct {
	TotalImages      int
	ImagesWithoutAlt int
	Suggestions      []string
}

type Headings struct {
	TotalHeadings int
	H1Count       int
	Suggestions   []string
}

type MobileFriendliness struct {
	HasViewport TriState
	Suggestions []string
}

type ContentAnalysis struct {
	TotalWords  int
	Suggestions []string
}

type PerformanceAnalysis struct {
	Score                int
	Error                string
	LoadTime             string
	PageSize             string
	Resources            ResourceCount
	OptimizationFeatures OptimizationFeatures
	Suggestions          []string
}

type ResourceCount struct {
	Scripts     int
	Stylesheets int
	Images      int
}

type OptimizationFeatures struct {
	CompressionEnabled bool
	CachingEnabled     bool
}
