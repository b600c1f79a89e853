// Package content reads published blog posts from the hosted content store and
// projects their bilingual fields onto a single locale.
package content

import (
	"context"
	"time"

	"github.com/eringen/pubsite/locale"
)

// Text is a translatable field keyed by locale. A locale without an entry
// reads as the empty string; there is no fallback to another locale.
type Text map[locale.Code]string

// In returns the value stored for c.
func (t Text) In(c locale.Code) string {
	return t[c]
}

// Post is one row of the blog table with every locale's fields.
type Post struct {
	Slug        string
	Title       Text
	Excerpt     Text
	Content     Text
	CoverImage  string // empty when the row has no cover
	Author      string
	PublishedAt time.Time
	UpdatedAt   time.Time // zero when the row has no update timestamp
	Published   bool
}

// Visible reports whether readers may see p at now.
func (p Post) Visible(now time.Time) bool {
	return p.Published && !p.PublishedAt.After(now)
}

// LocalizedPost is a single-language view of a Post, built per request.
type LocalizedPost struct {
	Slug        string
	Locale      locale.Code
	Title       string
	Excerpt     string
	Content     string
	CoverImage  string
	Author      string
	PublishedAt time.Time
	UpdatedAt   time.Time
	Link        string
}

// Localize picks c's value for every translatable field and leaves the
// locale-neutral fields as they are.
func (p Post) Localize(c locale.Code) LocalizedPost {
	return LocalizedPost{
		Slug:        p.Slug,
		Locale:      c,
		Title:       p.Title.In(c),
		Excerpt:     p.Excerpt.In(c),
		Content:     p.Content.In(c),
		CoverImage:  p.CoverImage,
		Author:      p.Author,
		PublishedAt: p.PublishedAt,
		UpdatedAt:   p.UpdatedAt,
		Link:        locale.Path(c, "/blog/"+p.Slug),
	}
}

// LocalizeAll maps Localize over posts, keeping order.
func LocalizeAll(posts []Post, c locale.Code) []LocalizedPost {
	out := make([]LocalizedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Localize(c))
	}
	return out
}

// SlugEntry is the sitemap view of a published post.
type SlugEntry struct {
	Slug      string
	UpdatedAt time.Time
}

// LastModified returns UpdatedAt, or fallback when the row has none.
func (e SlugEntry) LastModified(fallback time.Time) time.Time {
	if e.UpdatedAt.IsZero() {
		return fallback
	}
	return e.UpdatedAt
}

// Reader is the read surface pages and the sitemap depend on. Store and the
// caching layer in front of it both satisfy it.
type Reader interface {
	ListPublished(ctx context.Context, c locale.Code) ([]LocalizedPost, error)
	GetBySlug(ctx context.Context, slug string, c locale.Code) (LocalizedPost, bool, error)
	ListSlugsForSitemap(ctx context.Context) ([]SlugEntry, error)
}

// Source yields every currently visible post with all locales filled in.
type Source interface {
	PublishedPosts(ctx context.Context) ([]Post, error)
}
