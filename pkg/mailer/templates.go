package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"
)

//go:embed templates
var embedded embed.FS

const registrationTemplate = "email/registration.html"

// Renderer renders HTML bodies from embedded templates, or from a directory
// with the same layout when one is configured.
type Renderer struct {
	templates *template.Template
}

func NewRenderer(dir string) (*Renderer, error) {
	var source fs.FS
	if strings.TrimSpace(dir) != "" {
		source = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		source = sub
	}

	tmpl, err := template.New("mail").ParseFS(source, registrationTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render executes the named template, keyed by its base file name.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
