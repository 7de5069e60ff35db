package page

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed default_layout.html
var defaultLayout string

// LayoutData is what a page layout template sees.
type LayoutData struct {
	Title string
	CSS   template.CSS
	Body  template.HTML
}

// executeLayout renders src, or the built-in layout when src is empty.
func executeLayout(w io.Writer, src string, data LayoutData) error {
	if src == "" {
		src = defaultLayout
	}
	tmpl, err := template.New("layout").Parse(src)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute layout: %w", err)
	}
	return nil
}
