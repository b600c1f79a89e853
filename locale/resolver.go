package locale

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// DefaultExcludedPrefixes are never locale-redirected: embedded assets, the
// email endpoint and well-known files.
var DefaultExcludedPrefixes = []string{
	"/assets/",
	"/api/",
	"/.well-known/",
}

// DefaultExcludedPaths are exact paths served without a locale prefix.
var DefaultExcludedPaths = []string{
	"/favicon.ico",
	"/favicon.svg",
	"/icon.png",
	"/apple-icon.png",
	"/robots.txt",
	"/sitemap.xml",
	"/manifest.webmanifest",
	"/site.webmanifest",
}

// Resolver redirects paths without a locale segment to the fallback locale.
type Resolver struct {
	reg      *Registry
	prefixes []string
	exact    map[string]struct{}
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithExcludedPaths adds exact paths that pass through untouched.
func WithExcludedPaths(paths ...string) ResolverOption {
	return func(r *Resolver) {
		for _, p := range paths {
			if p = strings.TrimSpace(p); p != "" {
				r.exact[p] = struct{}{}
			}
		}
	}
}

// WithExcludedPrefixes adds path prefixes that pass through untouched.
func WithExcludedPrefixes(prefixes ...string) ResolverOption {
	return func(r *Resolver) {
		r.prefixes = append(r.prefixes, prefixes...)
	}
}

// NewResolver builds a Resolver with the default exclusion list plus opts.
func NewResolver(reg *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		reg:      reg,
		prefixes: append([]string(nil), DefaultExcludedPrefixes...),
		exact:    make(map[string]struct{}, len(DefaultExcludedPaths)),
	}
	for _, p := range DefaultExcludedPaths {
		r.exact[p] = struct{}{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Excluded reports whether p bypasses locale resolution.
func (r *Resolver) Excluded(p string) bool {
	if _, ok := r.exact[p]; ok {
		return true
	}
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Redirect returns the fallback-prefixed target for u, or false when u is
// already localized or excluded. The query string is carried over verbatim.
func (r *Resolver) Redirect(u *url.URL) (string, bool) {
	p := u.Path
	if p == "" {
		p = "/"
	}
	if r.Excluded(p) {
		return "", false
	}
	if _, ok := r.reg.FromPath(p); ok {
		return "", false
	}
	rest := u.EscapedPath()
	if rest == "" || rest == "/" {
		rest = ""
	}
	target := "/" + string(r.reg.Fallback()) + rest
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target, true
}

// Middleware runs Redirect ahead of routing. Register it with Echo.Pre so no
// page handler ever sees an unlocalized path.
func (r *Resolver) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if target, ok := r.Redirect(c.Request().URL); ok {
				return c.Redirect(http.StatusTemporaryRedirect, target)
			}
			return next(c)
		}
	}
}
