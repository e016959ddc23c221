package template

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ghaggin/part11/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	dir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dir, "base.html"),
		[]byte(`{{define "base"}}<title>{{.PageTitle}}</title>{{template "content" .}}{{end}}`), 0o644))
	require.NoError(os.WriteFile(filepath.Join(dir, "page.html"),
		[]byte(`{{template "base" .}}{{define "content"}}<p>{{.Severity}} {{.Message}}</p>{{end}}`), 0o644))

	cfg := config.Default()
	cfg.Console.TemplateDir = dir
	rd := New(cfg)

	rr := httptest.NewRecorder()
	err := rd.Render(rr, "page.html", map[string]string{
		"PageTitle": "console",
		"Severity":  "error",
		"Message":   "<b>bad</b>",
	})
	require.NoError(err)
	assert.Equal("<title>console</title><p>error &lt;b&gt;bad&lt;/b&gt;</p>", rr.Body.String())
	assert.Equal("text/html; charset=utf-8", rr.Header().Get("Content-Type"))
}

func TestRender_missingTemplate(t *testing.T) {
	cfg := config.Default()
	cfg.Console.TemplateDir = t.TempDir()

	rr := httptest.NewRecorder()
	err := New(cfg).Render(rr, "page.html", nil)
	assert.Error(t, err)
	assert.Equal(t, 0, rr.Body.Len())
}
