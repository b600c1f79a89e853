package pubsite

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/locale"
)

// PostCache is an in-memory cache of visible posts with a TTL. It holds every
// locale's fields and localizes per call, so one load serves all locales.
type PostCache struct {
	mu      sync.RWMutex
	posts   []content.Post
	fetched time.Time
	ttl     time.Duration
	source  content.Source
	now     func() time.Time
}

// NewPostCache creates a PostCache backed by src.
func NewPostCache(src content.Source, ttl time.Duration) *PostCache {
	return &PostCache{source: src, ttl: ttl, now: time.Now}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// ensureLoaded returns the cached posts after making sure they are fresh.
// It tries a read lock first and only takes the write lock to reload.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]content.Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	posts, err := c.source.PublishedPosts(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []content.Post{}
	}
	c.posts = posts
	c.fetched = c.now()
	return posts, nil
}

// visible drops posts whose publication time has not come yet. A post that
// was scheduled when the cache loaded stays hidden until the next reload.
func (c *PostCache) visible(ctx context.Context) ([]content.Post, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	now := c.now()
	out := make([]content.Post, 0, len(posts))
	for _, p := range posts {
		if p.Visible(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListPublished returns visible posts localized to lang, newest first.
func (c *PostCache) ListPublished(ctx context.Context, lang locale.Code) ([]content.LocalizedPost, error) {
	posts, err := c.visible(ctx)
	if err != nil {
		return nil, err
	}
	return content.LocalizeAll(posts, lang), nil
}

// GetBySlug returns the visible post with slug localized to lang.
func (c *PostCache) GetBySlug(ctx context.Context, slug string, lang locale.Code) (content.LocalizedPost, bool, error) {
	posts, err := c.visible(ctx)
	if err != nil {
		return content.LocalizedPost{}, false, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p.Localize(lang), true, nil
		}
	}
	return content.LocalizedPost{}, false, nil
}

// ListSlugsForSitemap returns the slug and update time of every visible post.
func (c *PostCache) ListSlugsForSitemap(ctx context.Context) ([]content.SlugEntry, error) {
	posts, err := c.visible(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]content.SlugEntry, 0, len(posts))
	for _, p := range posts {
		out = append(out, content.SlugEntry{Slug: p.Slug, UpdatedAt: p.UpdatedAt})
	}
	return out, nil
}
