package staticgen

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Exporter renders paths through an http.Handler and writes the responses
// under Dir. Page paths become DIR/path/index.html; paths with a file
// extension are written as they are.
type Exporter struct {
	Handler http.Handler
	Dir     string
	Logger  *slog.Logger
}

// Result counts what an export wrote.
type Result struct {
	Written   int
	Redirects int
	Failed    int
}

// Export renders every path. A failing path is logged and counted, and the
// export continues; the returned error joins every failure.
func (e *Exporter) Export(ctx context.Context, paths []string) (Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var res Result
	var errs []error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		redirect, err := e.exportOne(ctx, p)
		switch {
		case err != nil:
			res.Failed++
			errs = append(errs, err)
			logger.ErrorContext(ctx, "export failed", slog.String("path", p), slog.Any("error", err))
		case redirect:
			res.Redirects++
		default:
			res.Written++
		}
	}
	return res, errors.Join(errs...)
}

func (e *Exporter) exportOne(ctx context.Context, p string) (redirect bool, err error) {
	req := httptest.NewRequest(http.MethodGet, p, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	e.Handler.ServeHTTP(rec, req)

	body := rec.Body.Bytes()
	switch {
	case rec.Code >= 300 && rec.Code < 400:
		target := rec.Header().Get("Location")
		if target == "" {
			return false, fmt.Errorf("%s: redirect without location", p)
		}
		body = redirectPage(target)
		redirect = true
	case rec.Code != http.StatusOK:
		return false, fmt.Errorf("%s: status %d", p, rec.Code)
	}

	dst := e.target(p)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(dst, body, 0o644); err != nil {
		return false, err
	}
	return redirect, nil
}

// target maps a URL path to a file under Dir.
func (e *Exporter) target(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	clean := path.Clean("/" + p)
	rel := filepath.FromSlash(strings.TrimPrefix(clean, "/"))
	if path.Ext(clean) != "" {
		return filepath.Join(e.Dir, rel)
	}
	return filepath.Join(e.Dir, rel, "index.html")
}

func redirectPage(target string) []byte {
	t := html.EscapeString(target)
	return []byte(`<!DOCTYPE html><html><head><meta charset="utf-8"><meta http-equiv="refresh" content="0; url=` + t +
		`"><link rel="canonical" href="` + t + `"></head><body><a href="` + t + `">` + t + `</a></body></html>`)
}
