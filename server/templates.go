package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/seo-optimizer/reportview/view"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.tmpl"))

type standalonePage struct {
	*view.Page
	CSS template.CSS
}

// RenderStandalone writes page as a single HTML document with the
// stylesheet inlined, for opening without the server.
func RenderStandalone(w io.Writer, page *view.Page) error {
	css, err := staticFS.ReadFile("static/reportview.css")
	if err != nil {
		return fmt.Errorf("failed to read stylesheet: %w", err)
	}
	data := standalonePage{Page: page, CSS: template.CSS(css)}
	if err := pageTemplates.ExecuteTemplate(w, "standalone", data); err != nil {
		return fmt.Errorf("failed to render standalone report: %w", err)
	}
	return nil
}
