package template

import (
	"bytes"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/ghaggin/part11/internal/config"
)

const baseTemplate = "base.html"

type Renderer struct {
	dir string
}

func New(cfg *config.Config) *Renderer {
	return &Renderer{dir: cfg.Console.TemplateDir}
}

// Render executes tmpl together with the base layout and writes the result
// only once it rendered completely.
func (rd *Renderer) Render(w http.ResponseWriter, tmpl string, td any) error {
	t, err := template.ParseFiles(
		filepath.Join(rd.dir, tmpl),
		filepath.Join(rd.dir, baseTemplate),
	)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}

	err = t.Execute(buf, td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
