package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/seo-optimizer/reportview/analysis"
)

//go:embed report.tmpl
var reportTemplate string

// Formatter renders section view models as HTML fragments.
// Analyzer supplied text is escaped by html/template.
type Formatter struct {
	tmpl *template.Template
}

// NewFormatter creates a new report formatter
func NewFormatter() *Formatter {
	return &Formatter{
		tmpl: template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// Format renders one section.
func (f *Formatter) Format(sec Section) (template.HTML, error) {
	var buf strings.Builder
	if err := f.tmpl.ExecuteTemplate(&buf, "section", sec); err != nil {
		return "", fmt.Errorf("failed to render %s report: %w", sec.Kind, err)
	}
	return template.HTML(buf.String()), nil
}

func (f *Formatter) FormatUX(ux analysis.UXAnalysis) (template.HTML, error) {
	return f.Format(UX(ux))
}

func (f *Formatter) FormatSEO(seo analysis.SEOAnalysis) (template.HTML, error) {
	return f.Format(SEO(seo))
}

func (f *Formatter) FormatPerformance(perf analysis.PerformanceAnalysis) (template.HTML, error) {
	return f.Format(Performance(perf))
}

// Fragment is a rendered section keyed by its tab.
type Fragment struct {
	Section
	HTML template.HTML
}

// FormatAll renders the three report tabs of res in page order.
func (f *Formatter) FormatAll(res *analysis.Result) ([]Fragment, error) {
	sections := Sections(res)
	out := make([]Fragment, 0, len(sections))
	for _, sec := range sections {
		html, err := f.Format(sec)
		if err != nil {
			return nil, err
		}
		out = append(out, Fragment{Section: sec, HTML: html})
	}
	return out, nil
}
