package pubsite

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/locale"
)

// BuildURL joins a base URL with path segments. Unlike a file server path it
// never adds a trailing slash, matching the site's canonical form.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if u.Path == "" || u.Path == "." {
		u.Path = "/"
	}
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}

func marshalJSONLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// OrganizationJSONLD returns a Schema.org Organization block.
func OrganizationJSONLD(cfg SiteConfig) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
		"logo":     BuildURL(cfg.URL, "favicon.svg"),
	}
	if cfg.ContactEmail != "" {
		data["email"] = cfg.ContactEmail
	}
	return marshalJSONLD(data)
}

// WebSiteJSONLD returns a Schema.org WebSite block for one locale.
func WebSiteJSONLD(cfg SiteConfig, lang locale.Code) string {
	data := map[string]any{
		"@context":   "https://schema.org",
		"@type":      "WebSite",
		"name":       cfg.Name,
		"url":        BuildURL(cfg.URL, locale.Path(lang, "")),
		"inLanguage": lang.Tag().String(),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	return marshalJSONLD(data)
}

// BlogPostingJSONLD returns a Schema.org BlogPosting block for a post.
func BlogPostingJSONLD(cfg SiteConfig, post content.LocalizedPost) string {
	postURL := BuildURL(cfg.URL, post.Link)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Excerpt,
		"datePublished": post.PublishedAt.UTC().Format(time.RFC3339),
		"url":           postURL,
		"inLanguage":    post.Locale.Tag().String(),
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
	}
	if !post.UpdatedAt.IsZero() {
		data["dateModified"] = post.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if post.CoverImage != "" {
		data["image"] = post.CoverImage
	}
	return marshalJSONLD(data)
}
