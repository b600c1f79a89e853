package pubsite

import (
	"github.com/eringen/pubsite/contact"
	"github.com/eringen/pubsite/copydeck"
	"github.com/eringen/pubsite/locale"
	"github.com/eringen/pubsite/messages"
)

// PageMeta carries per-page SEO metadata into the <head> template.
type PageMeta struct {
	Title       string // full document title
	Description string
	Canonical   string // absolute URL
	OGType      string // "website" or "article"
	Image       string
	NoIndex     bool
}

// LocaleLink points at the current page in one locale. It feeds both the
// language switcher and the hreflang alternates.
type LocaleLink struct {
	Code     locale.Code
	Name     string // language name in its own language
	Href     string // site-relative path
	URL      string // absolute URL
	Active   bool
	HrefLang string // BCP 47 tag
}

// NavLink is one entry of the header or footer navigation.
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// Page is what every view receives. Locale is resolved from the request path
// before the view runs, including on error pages.
type Page struct {
	SiteName     string
	SiteURL      string
	ContactEmail string
	Year         int

	Locale     locale.Code
	Route      string // path without the locale prefix; "" for the home page
	Meta       PageMeta
	Alternates []LocaleLink
	Nav        []NavLink
	Footer     []NavLink
	FeedURL    string
	JSONLD     []string
	CSRF       string

	T    *messages.Printer
	Copy *copydeck.Deck
}

// Href returns rest prefixed with the page's locale.
func (p Page) Href(rest string) string {
	return locale.Path(p.Locale, rest)
}

// Notice kinds on the contact page.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// ContactView is the contact form as the view renders it.
type ContactView struct {
	Values         contact.Submission
	Errors         contact.FieldErrors
	Subjects       []string
	RequireSubject bool
	Notice         string
	NoticeKind     string
}
