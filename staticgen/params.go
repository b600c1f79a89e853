// Package staticgen enumerates every concrete page path of the site, one
// per locale and per published post, and can pre-render them to disk.
package staticgen

import (
	"context"
	"log/slog"
	"strings"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/locale"
)

// Params is one set of route parameters.
type Params struct {
	Lang string `json:"lang"`
	Slug string `json:"slug,omitempty"`
}

// SlugLister yields the published post slugs.
type SlugLister interface {
	ListSlugsForSitemap(ctx context.Context) ([]content.SlugEntry, error)
}

// LocaleParams returns exactly one {lang} per registered locale, in registry
// order.
func LocaleParams(reg *locale.Registry) []Params {
	codes := reg.Codes()
	out := make([]Params, 0, len(codes))
	for _, c := range codes {
		out = append(out, Params{Lang: c.String()})
	}
	return out
}

// PostParams returns {lang, slug} for every locale and published post. When
// the content store cannot be read the failure is logged and the result is
// empty; generation of the other pages goes on.
func PostParams(ctx context.Context, reg *locale.Registry, src SlugLister, logger *slog.Logger) []Params {
	entries, err := src.ListSlugsForSitemap(ctx)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(ctx, "static params: list post slugs", slog.Any("error", err))
		return []Params{}
	}
	codes := reg.Codes()
	out := make([]Params, 0, len(codes)*len(entries))
	for _, c := range codes {
		for _, e := range entries {
			out = append(out, Params{Lang: c.String(), Slug: e.Slug})
		}
	}
	return out
}

// Template is a route pattern using {lang} and, for post pages, {slug}.
type Template string

// HasSlug reports whether t needs a post slug.
func (t Template) HasSlug() bool {
	return strings.Contains(string(t), "{slug}")
}

// Expand substitutes p into t.
func (t Template) Expand(p Params) string {
	return strings.NewReplacer("{lang}", p.Lang, "{slug}", p.Slug).Replace(string(t))
}

// Generate expands every template: those without {slug} once per locale,
// those with {slug} once per locale and post. Posts are fetched once, and
// only when some template needs them.
func Generate(ctx context.Context, reg *locale.Registry, src SlugLister, logger *slog.Logger, templates ...Template) []string {
	simple := LocaleParams(reg)
	var posts []Params
	fetched := false

	var paths []string
	for _, t := range templates {
		params := simple
		if t.HasSlug() {
			if !fetched {
				posts = PostParams(ctx, reg, src, logger)
				fetched = true
			}
			params = posts
		}
		for _, p := range params {
			paths = append(paths, t.Expand(p))
		}
	}
	return paths
}
