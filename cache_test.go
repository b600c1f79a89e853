package pubsite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eringen/pubsite/content"
)

type countingSource struct {
	posts []content.Post
	err   error
	calls int
}

func (s *countingSource) PublishedPosts(context.Context) ([]content.Post, error) {
	s.calls++
	return s.posts, s.err
}

func TestPostCacheReloadsAfterTTL(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &countingSource{posts: []content.Post{{
		Slug:        "hello",
		Title:       content.Text{"en": "Hello", "sv": "Hej"},
		PublishedAt: now.Add(-time.Hour),
		Published:   true,
	}}}
	c := NewPostCache(src, time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		posts, err := c.ListPublished(ctx, "en")
		if err != nil {
			t.Fatalf("ListPublished: %v", err)
		}
		if len(posts) != 1 || posts[0].Title != "Hello" {
			t.Fatalf("posts = %+v", posts)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source calls = %d, want 1", src.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.ListPublished(ctx, "sv"); err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("source calls after TTL = %d, want 2", src.calls)
	}

	c.Invalidate()
	if _, err := c.ListSlugsForSitemap(ctx); err != nil {
		t.Fatalf("ListSlugsForSitemap: %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("source calls after Invalidate = %d, want 3", src.calls)
	}
}

func TestPostCacheHidesFuturePosts(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &countingSource{posts: []content.Post{
		{Slug: "now", Title: content.Text{"en": "Now"}, PublishedAt: now, Published: true},
		{Slug: "soon", Title: content.Text{"en": "Soon"}, PublishedAt: now.Add(time.Minute), Published: true},
		{Slug: "draft", Title: content.Text{"en": "Draft"}, PublishedAt: now.Add(-time.Hour)},
	}}
	c := NewPostCache(src, time.Hour)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	posts, err := c.ListPublished(ctx, "en")
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "now" {
		t.Fatalf("posts = %+v, want only the post published at now", posts)
	}
	if _, ok, _ := c.GetBySlug(ctx, "soon", "en"); ok {
		t.Fatal("scheduled post should be hidden")
	}
	if _, ok, _ := c.GetBySlug(ctx, "draft", "en"); ok {
		t.Fatal("unpublished post should be hidden")
	}

	// The scheduled post appears once its time passes, without a reload.
	now = now.Add(2 * time.Minute)
	post, ok, err := c.GetBySlug(ctx, "soon", "en")
	if err != nil || !ok {
		t.Fatalf("GetBySlug(soon) = %v, %v", ok, err)
	}
	if post.Link != "/en/blog/soon" {
		t.Errorf("Link = %q", post.Link)
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
}

func TestPostCacheDoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("down")}
	c := NewPostCache(src, time.Hour)
	ctx := context.Background()

	if _, err := c.ListPublished(ctx, "sv"); err == nil {
		t.Fatal("expected error")
	}
	src.err = nil
	posts, err := c.ListPublished(ctx, "sv")
	if err != nil {
		t.Fatalf("ListPublished after recovery: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Fatalf("posts = %#v, want empty non-nil", posts)
	}
	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2", src.calls)
	}
}
