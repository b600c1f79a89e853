package pubsite

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/locale"
	"github.com/eringen/pubsite/markdown"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	Description string      `xml:"description"`
	Language    string      `xml:"language"`
	Self        rssAtomLink `xml:"atom:link"`
	Items       []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// renderRSS writes the feed for one locale. Posts without a title in that
// locale are left out of the feed.
func (a *App) renderRSS(c echo.Context, lang locale.Code, posts []content.LocalizedPost) error {
	base := a.Config.URL
	blog := a.Copy.For(lang).Blog
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		if p.Title == "" {
			continue
		}
		summary := p.Excerpt
		if summary == "" {
			summary = markdown.PlainText(p.Content, 280)
		}
		postURL := BuildURL(base, p.Link)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: summary,
			PubDate:     p.PublishedAt.UTC().Format(time.RFC1123Z),
			GUID:        rssGUID{Value: postURL, IsPermaLink: true},
		})
	}
	feed := rssXML{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:       pageTitle(blog.Title, a.Config.Name),
			Link:        BuildURL(base, locale.Path(lang, "/blog")),
			Description: blog.Description,
			Language:    lang.Tag().String(),
			Self: rssAtomLink{
				Href: BuildURL(base, locale.Path(lang, "/feed.xml")),
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
