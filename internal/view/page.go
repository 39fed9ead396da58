package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/page.html", "templates/preco.html"))

// ErrorPage is the static page single-code lookups redirect to on failure.
//
//go:embed templates/erro.html
var ErrorPage []byte

func RenderPage(w io.Writer, p Page) error {
	if err := templates.ExecuteTemplate(w, "page.html", p); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

func RenderPrice(w io.Writer, r *Result) error {
	if err := templates.ExecuteTemplate(w, "preco.html", r); err != nil {
		return fmt.Errorf("failed to render price: %w", err)
	}
	return nil
}
