package staticgen

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/sv", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/sv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<h1>Hem</h1>"))
	})
	mux.HandleFunc("/sv/pricing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<h1>Priser</h1>"))
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<urlset/>"))
	})

	dir := t.TempDir()
	ex := &Exporter{Handler: mux, Dir: dir, Logger: quiet()}
	res, err := ex.Export(context.Background(), []string{"/", "/sv", "/sv/pricing", "/sitemap.xml", "/missing"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing: status 404")
	assert.Equal(t, Result{Written: 3, Redirects: 1, Failed: 1}, res)

	read := func(rel string) string {
		b, err := os.ReadFile(filepath.Join(dir, rel))
		require.NoError(t, err, rel)
		return string(b)
	}
	assert.Equal(t, "<h1>Hem</h1>", read("sv/index.html"))
	assert.Equal(t, "<h1>Priser</h1>", read("sv/pricing/index.html"))
	assert.Equal(t, "<urlset/>", read("sitemap.xml"))
	assert.Contains(t, read("index.html"), `url=/sv`)
}

func TestExporterStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := &Exporter{Handler: http.NotFoundHandler(), Dir: t.TempDir()}
	_, err := ex.Export(ctx, []string{"/sv"})
	assert.ErrorIs(t, err, context.Canceled)
}
