package analysis

import (
	"errors"
	"math"

	"github.com/tidwall/gjson"
)

// IncompleteSection is reported for a section the analyzer left out of its response.
const IncompleteSection = "Analysis failed or incomplete."

// ErrInvalidPayload is returned when the analyzer response is not a JSON object.
var ErrInvalidPayload = errors.New("analyzer response is not a JSON object")

var emptyObject = gjson.Parse("{}")

// Decode turns an analyzer response body into a fully populated Result.
// Missing or mistyped fields fall back to zero values, empty slices and Unknown,
// so nothing downstream has to check for absence.
func Decode(data []byte) (*Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidPayload
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrInvalidPayload
	}

	return &Result{
		URL:         text(root.Get("url")),
		Error:       message(root.Get("error")),
		UX:          decodeUX(root.Get("ux_analysis")),
		SEO:         decodeSEO(root.Get("seo_analysis")),
		Performance: decodePerformance(root.Get("performance_analysis")),
	}, nil
}

func section(r gjson.Result) (gjson.Result, string) {
	if !r.IsObject() {
		return emptyObject, IncompleteSection
	}
	return r, message(r.Get("error"))
}

func decodeUX(r gjson.Result) UXAnalysis {
	r, errText := section(r)
	nav := r.Get("navigation")
	read := r.Get("readability")
	layout := r.Get("layout")
	access := r.Get("accessibility")

	return UXAnalysis{
		Score: score(r.Get("score")),
		Error: errText,
		Navigation: Navigation{
			BrokenLinks: strs(nav.Get("broken_links")),
			TotalLinks:  integer(nav.Get("total_links")),
			Suggestions: strs(nav.Get("suggestions")),
		},
		Readability: Readability{
			AverageParagraphLength: number(read.Get("average_paragraph_length")),
			Suggestions:            strs(read.Get("suggestions")),
		},
		Layout: Layout{
			HasHeader:   tri(layout.Get("has_header")),
			HasFooter:   tri(layout.Get("has_footer")),
			HasMain:     tri(layout.Get("has_main")),
			Suggestions: strs(layout.Get("suggestions")),
		},
		Accessibility: Accessibility{
			HasARIALabels: tri(access.Get("has_aria_labels")),
			HasAltText:    tri(access.Get("has_alt_text")),
			HasSkipLinks:  tri(access.Get("has_skip_links")),
			Suggestions:   strs(access.Get("suggestions")),
		},
	}
}

func decodeSEO(r gjson.Result) SEOAnalysis {
	r, errText := section(r)
	meta := r.Get("meta_tags")
	alt := r.Get("alt_tags")
	headings := r.Get("headings")
	mobile := r.Get("mobile_friendliness")
	content := r.Get("content_analysis")

	return SEOAnalysis{
		Score: score(r.Get("score")),
		Error: errText,
		MetaTags: MetaTags{
			HasTitle:       tri(meta.Get("has_title")),
			HasDescription: tri(meta.Get("has_description")),
			HasKeywords:    tri(meta.Get("has_keywords")),
			Suggestions:    strs(meta.Get("suggestions")),
		},
		AltTags: AltTags{
			TotalImages:      integer(alt.Get("total_images")),
			ImagesWithoutAlt: integer(alt.Get("images_without_alt")),
			Suggestions:      strs(alt.Get("suggestions")),
		},
		Headings: Headings{
			TotalHeadings: integer(headings.Get("total_headings")),
			H1Count:       integer(headings.Get("h1_count")),
			Suggestions:   strs(headings.Get("suggestions")),
		},
		MobileFriendliness: MobileFriendliness{
			HasViewport: tri(mobile.Get("has_viewport")),
			Suggestions: strs(mobile.Get("suggestions")),
		},
		Content: ContentAnalysis{
			TotalWords:  integer(content.Get("total_words")),
			Suggestions: strs(content.Get("suggestions")),
		},
	}
}

func decodePerformance(r gjson.Result) PerformanceAnalysis {
	r, errText := section(r)
	resources := r.Get("resource_count")
	features := r.Get("optimization_features")

	return PerformanceAnalysis{
		Score:    score(r.Get("score")),
		Error:    errText,
		LoadTime: text(r.Get("load_time")),
		PageSize: text(r.Get("page_size")),
		Resources: ResourceCount{
			Scripts:     integer(resources.Get("scripts")),
			Stylesheets: integer(resources.Get("stylesheets")),
			Images:      integer(resources.Get("images")),
		},
		OptimizationFeatures: OptimizationFeatures{
			CompressionEnabled: features.Get("compression_enabled").Type == gjson.True,
			CachingEnabled:     features.Get("caching_enabled").Type == gjson.True,
		},
		Suggestions: strs(r.Get("suggestions")),
	}
}

// message only accepts strings; an error field of any other type is ignored.
func message(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.Str
	}
	return ""
}

func text(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	default:
		return ""
	}
}

func number(r gjson.Result) float64 {
	if r.Type != gjson.Number {
		return 0
	}
	return r.Num
}

func integer(r gjson.Result) int {
	return int(math.Round(number(r)))
}

func score(r gjson.Result) int {
	s := integer(r)
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func tri(r gjson.Result) TriState {
	switch r.Type {
	case gjson.True:
		return True
	case gjson.False:
		return False
	default:
		return Unknown
	}
}

func strs(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		return out
	}
	// empty strings are kept; only entries that are not text are skipped
	r.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String || v.Type == gjson.Number {
			out = append(out, text(v))
		}
		return true
	})
	return out
}
