// Package webui renders the single control page served at "/".
package webui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/index.html
var templateFS embed.FS

// Social is a labelled profile link.
type Social struct {
	Label string
	URL   string
}

// Admin is the operator profile block.
type Admin struct {
	Name    string
	Bio     string
	Socials []Social
}

// PageData is everything the page template reads. APIToken, when set, is
// attached as a bearer token to the page's own requests.
type PageData struct {
	AIStatus  bool
	Model     string
	Path      string
	FreeSpace string
	Admin     Admin
	Qualities []string
	Status    string
	APIToken  string
}

// Renderer executes the page template.
type Renderer struct {
	tpl *template.Template
}

// NewRenderer parses the embedded template.
func NewRenderer() (*Renderer, error) {
	tpl, err := template.New("index.html").Funcs(template.FuncMap{
		"qualityLabel": qualityLabel,
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render writes the page for data to w.
func (r *Renderer) Render(w io.Writer, data PageData) error {
	if err := r.tpl.ExecuteTemplate(w, "index.html", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func qualityLabel(q string) string {
	switch q {
	case "best":
		return "Best available"
	case "lowest":
		return "Lowest"
	case "audio":
		return "Audio only"
	case "audio_320":
		return "Audio 320 kbps"
	case "audio_128":
		return "Audio 128 kbps"
	case "manual":
		return "Manual format"
	}
	return strings.ToUpper(q)
}
