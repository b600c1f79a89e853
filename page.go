package pubsite

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubsite/locale"
)

// newPage builds the data every view shares. c may be nil when rendering
// outside a request, as the static exporter does.
func (a *App) newPage(c echo.Context, lang locale.Code, route, title, description string) Page {
	t := a.Messages.For(lang)
	if description == "" {
		description = a.Config.Description
	}
	p := Page{
		SiteName:     a.Config.Name,
		SiteURL:      a.Config.URL,
		ContactEmail: a.Config.ContactEmail,
		Year:         a.now().Year(),
		Locale:       lang,
		Route:        route,
		Meta: PageMeta{
			Title:       pageTitle(title, a.Config.Name),
			Description: description,
			Canonical:   BuildURL(a.Config.URL, locale.Path(lang, route)),
			OGType:      "website",
		},
		Alternates: a.alternates(lang, route),
		Nav:        a.nav(lang, route),
		Footer:     a.footer(lang, route),
		FeedURL:    locale.Path(lang, "/feed.xml"),
		JSONLD: []string{
			OrganizationJSONLD(a.Config),
			WebSiteJSONLD(a.Config, lang),
		},
		T:    t,
		Copy: a.Copy.For(lang),
	}
	if c != nil {
		p.CSRF = CsrfToken(c)
	}
	return p
}

func pageTitle(title, site string) string {
	if title == "" || title == site {
		return site
	}
	return title + " | " + site
}

// alternates links route in every locale, in registry order.
func (a *App) alternates(current locale.Code, route string) []LocaleLink {
	codes := a.Locales.Codes()
	links := make([]LocaleLink, 0, len(codes))
	for _, code := range codes {
		href := locale.Path(code, route)
		links = append(links, LocaleLink{
			Code:     code,
			Name:     a.Locales.Name(code),
			Href:     href,
			URL:      BuildURL(a.Config.URL, href),
			Active:   code == current,
			HrefLang: code.Tag().String(),
		})
	}
	return links
}

func (a *App) nav(lang locale.Code, route string) []NavLink {
	t := a.Messages.For(lang)
	var links []NavLink
	for _, r := range Routes {
		if !r.Nav {
			continue
		}
		active := route == r.Path
		if r.Path != "" && strings.HasPrefix(route, r.Path+"/") {
			active = true
		}
		links = append(links, NavLink{
			Label:  t.Text("nav." + r.Name),
			Href:   locale.Path(lang, r.Path),
			Active: active,
		})
	}
	return links
}

func (a *App) footer(lang locale.Code, route string) []NavLink {
	t := a.Messages.For(lang)
	var links []NavLink
	for _, r := range Routes {
		if r.Nav {
			continue
		}
		links = append(links, NavLink{
			Label:  t.Text("footer." + r.Name),
			Href:   locale.Path(lang, r.Path),
			Active: route == r.Path,
		})
	}
	return links
}
