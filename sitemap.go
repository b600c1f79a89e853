package pubsite

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubsite/locale"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string           `xml:"loc"`
	LastMod    string           `xml:"lastmod,omitempty"`
	ChangeFreq string           `xml:"changefreq,omitempty"`
	Priority   string           `xml:"priority,omitempty"`
	Alternates []sitemapAltLink `xml:"xhtml:link"`
}

type sitemapAltLink struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// sitemapEntries lists every route in every locale followed by every visible
// post in every locale. A content store failure is logged and leaves the
// posts out.
func (a *App) sitemapEntries(ctx context.Context) []sitemapURL {
	codes := a.Locales.Codes()
	built := a.builtAt

	var urls []sitemapURL
	add := func(route string, lastmod time.Time, freq string, priority float64) {
		alts := a.sitemapAlternates(route)
		for _, code := range codes {
			urls = append(urls, sitemapURL{
				Loc:        BuildURL(a.Config.URL, locale.Path(code, route)),
				LastMod:    lastmod.UTC().Format("2006-01-02"),
				ChangeFreq: freq,
				Priority:   strconv.FormatFloat(priority, 'f', 1, 64),
				Alternates: alts,
			})
		}
	}

	for _, r := range Routes {
		add(r.Path, built, r.ChangeFreq, r.Priority)
	}

	slugs, err := a.Cache.ListSlugsForSitemap(ctx)
	if err != nil {
		a.Logger.ErrorContext(ctx, "sitemap: list posts", slog.Any("error", err))
		return urls
	}
	for _, s := range slugs {
		add("/blog/"+s.Slug, s.LastModified(built), postChangeFreq, postPriority)
	}
	return urls
}

func (a *App) sitemapAlternates(route string) []sitemapAltLink {
	codes := a.Locales.Codes()
	alts := make([]sitemapAltLink, 0, len(codes)+1)
	for _, code := range codes {
		alts = append(alts, sitemapAltLink{
			Rel:      "alternate",
			HrefLang: code.Tag().String(),
			Href:     BuildURL(a.Config.URL, locale.Path(code, route)),
		})
	}
	return append(alts, sitemapAltLink{
		Rel:      "alternate",
		HrefLang: "x-default",
		Href:     BuildURL(a.Config.URL, locale.Path(a.Locales.Fallback(), route)),
	})
}

func (a *App) renderSitemap(c echo.Context) error {
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
		URLs:  a.sitemapEntries(c.Request().Context()),
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
