package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var documentTemplate = template.Must(
	template.New("document.html").Funcs(template.FuncMap{
		"formatDate": func(t time.Time, layout string) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format(layout)
		},
	}).ParseFS(templateFS, "templates/document.html"),
)

// TemplateData holds data for document template rendering
type TemplateData struct {
	Title       string
	Revision    string
	RenderedAt  time.Time
	ContentHTML template.HTML
}

// RenderDocumentHTML renders the document template with provided data
func RenderDocumentHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Page wraps a rendered contract in the standalone document template.
func Page(r Rendered) (string, error) {
	return RenderDocumentHTML(TemplateData{
		Title:       r.Title,
		Revision:    r.Revision,
		RenderedAt:  r.RenderedAt,
		ContentHTML: template.HTML(HTML(r.Tree)),
	})
}
