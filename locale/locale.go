// Package locale holds the fixed set of languages the site is served in and
// resolves which of them a request path belongs to.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Code is a locale code as it appears in the first URL path segment, e.g. "sv".
type Code string

func (c Code) String() string { return string(c) }

// Tag returns the BCP 47 tag for c. Codes are validated by NewRegistry, so
// the result is never language.Und for a registered code.
func (c Code) Tag() language.Tag {
	return language.Make(string(c))
}

// Registry is the ordered, closed set of supported locales plus the fallback
// used for unprefixed paths. It is built once at startup and never mutated.
type Registry struct {
	codes    []Code
	fallback Code
}

// NewRegistry validates codes and fallback. The first configuration mistake
// wins: empty set, malformed or duplicate code, or a fallback outside the set.
func NewRegistry(fallback string, codes ...string) (*Registry, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("locale: no locales configured")
	}
	r := &Registry{codes: make([]Code, 0, len(codes))}
	seen := make(map[Code]struct{}, len(codes))
	for _, raw := range codes {
		c := Code(strings.ToLower(strings.TrimSpace(raw)))
		if c == "" || strings.ContainsAny(string(c), "/?#") {
			return nil, fmt.Errorf("locale: invalid code %q", raw)
		}
		if _, err := language.Parse(string(c)); err != nil {
			return nil, fmt.Errorf("locale: invalid code %q: %w", raw, err)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("locale: duplicate code %q", c)
		}
		seen[c] = struct{}{}
		r.codes = append(r.codes, c)
	}
	fb := Code(strings.ToLower(strings.TrimSpace(fallback)))
	if _, ok := seen[fb]; !ok {
		return nil, fmt.Errorf("locale: fallback %q is not one of %v", fallback, r.codes)
	}
	r.fallback = fb
	return r, nil
}

// MustRegistry is NewRegistry for static configuration; it panics on error.
func MustRegistry(fallback string, codes ...string) *Registry {
	r, err := NewRegistry(fallback, codes...)
	if err != nil {
		panic(err)
	}
	return r
}

// Codes returns the supported locales in configuration order.
func (r *Registry) Codes() []Code {
	out := make([]Code, len(r.codes))
	copy(out, r.codes)
	return out
}

// Fallback returns the locale used when a request names none.
func (r *Registry) Fallback() Code { return r.fallback }

// Lookup reports whether s is exactly a registered code.
func (r *Registry) Lookup(s string) (Code, bool) {
	for _, c := range r.codes {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// FromPath returns the locale named by the first segment of p. Only a whole
// segment matches: "/en" and "/en/pricing" do, "/environment" does not.
func (r *Registry) FromPath(p string) (Code, bool) {
	seg := strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	return r.Lookup(seg)
}

// Strip removes a leading locale segment from p. The result always starts
// with "/" unless it is empty (the locale root).
func (r *Registry) Strip(p string) string {
	c, ok := r.FromPath(p)
	if !ok {
		return p
	}
	return strings.TrimPrefix(p, "/"+string(c))
}

// Path prefixes rest with c. rest is "" for the locale root or starts with "/".
func Path(c Code, rest string) string {
	if rest == "/" {
		rest = ""
	}
	return "/" + string(c) + rest
}

// Name is the language's name in its own language, e.g. "svenska".
func (r *Registry) Name(c Code) string {
	name := display.Self.Name(c.Tag())
	if name == "" {
		return strings.ToUpper(string(c))
	}
	return name
}
