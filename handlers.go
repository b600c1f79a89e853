package pubsite

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubsite/contact"
	"github.com/eringen/pubsite/copydeck"
	"github.com/eringen/pubsite/locale"
	"github.com/eringen/pubsite/markdown"
)

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(Assets, "assets")
	e.StaticFS("/assets", assets)
	e.GET("/favicon.svg", handleFavicon)
	e.GET("/favicon.ico", handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/site.webmanifest", a.handleManifest)

	e.POST("/api/send-email", a.relay.Handle)

	for _, p := range a.gonePaths() {
		e.Any(p, handleGone)
		e.Any(p+"/*", handleGone)
	}

	for _, lang := range a.Locales.Codes() {
		g := e.Group("/" + lang.String())
		g.GET("", a.handleHome(lang))
		g.GET("/features", a.handleFeatures(lang))
		g.GET("/pricing", a.handlePricing(lang))
		g.GET("/about", a.handleAbout(lang))
		g.GET("/contact", a.handleContact(lang))
		g.POST("/contact", a.handleContactSubmit(lang))
		g.GET("/blog", a.handleBlog(lang))
		g.GET("/blog/:slug", a.handlePost(lang))
		g.GET("/feed.xml", a.handleFeed(lang))
		for _, kind := range copydeck.LegalKinds {
			g.GET("/"+kind, a.handleLegal(lang, kind))
		}
	}
}

// gonePaths returns the configured retired prefixes in "/name" form.
func (a *App) gonePaths() []string {
	paths := make([]string, 0, len(a.Config.GonePaths))
	for _, p := range a.Config.GonePaths {
		paths = append(paths, "/"+strings.Trim(p, "/"))
	}
	return paths
}

// isGone reports whether path is a retired prefix or lies beneath one.
func (a *App) isGone(path string) bool {
	for _, p := range a.gonePaths() {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (a *App) goneExclusions() []locale.ResolverOption {
	var exact, prefixes []string
	for _, p := range a.gonePaths() {
		exact = append(exact, p)
		prefixes = append(prefixes, p+"/")
	}
	return []locale.ResolverOption{
		locale.WithExcludedPaths(exact...),
		locale.WithExcludedPrefixes(prefixes...),
	}
}

func (a *App) handleHome(lang locale.Code) echo.HandlerFunc {
	return func(c echo.Context) error {
		d := a.Copy.For(lang).Home
		return Render(c, a.Views.Home(a.newPage(c, lang, "", d.Title, d.Description)))
	}
}

func (a *App) handleFeatures(lang locale.Code) echo.HandlerFunc {
	return func(c echo.Context) error {
		d := a.Copy.For(lang).Features
		return Render(c, a.Views.Features(a.newPage(c, lang, "/features", d.Title, d.Description)))
	}
}

func (a *App) handlePricing(lang locale.Code) echo.HandlerFunc {
	return func(c echo.Context) error {
		d := a.Copy.For(lang).Pricing
		return Render(c, a.Views.Pricing(a.newPage(c, lang, "/pricing", d.Title, d.Description)))
	}
}

func (a *App) handleAbout(lang locale.Code) echo.HandlerFunc {
	return func(c echo.Context) error {
		d := a.Copy.For(lang).About
		return Render(c, a.Views.About(a.newPage(c, lang, "/about", d.Title, d.Description)))
	}
}

func (a *App) handleLegal(lang locale.Code, kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc := a.Copy.For(lang).Legal[kind]
		return Render(c, a.Views.Legal(a.newPage(c, lang, "/"+kind, doc.Title, doc.Description), doc))
	}
}

func (a *App) handleBlog(lang locale.Code) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		d := a.Copy.For(lang).Blog
		posts, err := a.Cache.ListPublished(ctx, lang)
		if err != nil {
			a.Logger.ErrorContext(ctx, "list posts", slog.String("locale", lang.String()), slog.Any("error", err))
			c.Response().Header().Set("Cache-Control", "no-store")
			posts = nil
		}
		return Render(c, a.Views.Blog(a.newPage(c, lang, "/blog", d.Title, d.Description), posts))
	}
}

func (a *App) handlePost(lang locale.Code) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		slug := c.Param("slug")
		post, ok, err := a.Cache.GetBySlug(ctx, slug, lang)
		if err != nil {
			return fmt.Errorf("get post %q: %w", slug, err)
		}
		if !ok {
			return echo.ErrNotFound
		}
		description := post.Excerpt
		if description == "" {
			description = markdown.PlainText(post.Content, 160)
		}
		p := a.newPage(c, lang, "/blog/"+post.Slug, post.Title, description)
		p.Meta.OGType = "article"
		p.Meta.Image = post.CoverImage
		p.JSONLD = append(p.JSONLD, BlogPostingJSONLD(a.Config, post))
		return Render(c, a.Views.Post(p, post))
	}
}

func (a *App) contactView() ContactView {
	rules := a.Config.contactRules()
	return ContactView{
		Subjects:       contact.DefaultSubjects,
		RequireSubject: len(rules.Subjects) > 0,
	}
}

func (a *App) contactPage(c echo.Context, lang locale.Code) Page {
	d := a.Copy.For(lang).Contact
	return a.newPage(c, lang, "/contact", d.Title, d.Description)
}

func (a *App) handleContact(lang locale.Code) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := a.contactPage(c, lang)
		view := a.contactView()
		if popFlash(c, contactFlash) == contact.StatusSent.String() {
			view.Notice = p.T.Text("contact.success")
			view.NoticeKind = NoticeSuccess
		}
		return Render(c, a.Views.Contact(p, view))
	}
}

func (a *App) handleContactSubmit(lang locale.Code) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		p := a.contactPage(c, lang)
		view := a.contactView()
		sub := contact.Submission{
			Name:    c.FormValue("name"),
			Email:   c.FormValue("email"),
			Company: c.FormValue("company"),
			Subject: c.FormValue("subject"),
			Message: c.FormValue("message"),
		}
		mailto := map[string]any{"Email": a.Config.ContactEmail}
		ip := c.RealIP()

		release, ok := a.guard.Acquire(ip)
		if !ok {
			view.Values = sub
			view.Notice = p.T.Text("contact.busy")
			view.NoticeKind = NoticeError
			return RenderStatus(c, http.StatusConflict, a.Views.Contact(p, view))
		}
		defer release()

		form := contact.NewForm(a.Config.contactRules())
		form.Set(sub)
		status := form.Submit(ctx, contact.RateLimited(a.sender, a.limiter, "contact:"+ip))
		st := form.State()
		view.Values = st.Values

		switch status {
		case contact.StatusSent:
			if err := addFlash(c, contactFlash, contact.StatusSent.String()); err != nil {
				a.Logger.WarnContext(ctx, "save contact flash", slog.Any("error", err))
			}
			return c.Redirect(http.StatusSeeOther, locale.Path(lang, "/contact"))
		case contact.StatusInvalid:
			view.Errors = st.Errors
			return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Contact(p, view))
		case contact.StatusFailed:
			var ve *contact.ValidationError
			switch {
			case errors.Is(st.Err, contact.ErrRateLimited):
				view.Notice = p.T.Format("contact.rate_limited", mailto)
				view.NoticeKind = NoticeError
				return RenderStatus(c, http.StatusTooManyRequests, a.Views.Contact(p, view))
			case errors.As(st.Err, &ve) && isFormField(ve.Field):
				view.Errors = contact.FieldErrors{ve.Field: "contact.error." + ve.Field}
				return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Contact(p, view))
			}
			a.Logger.ErrorContext(ctx, "contact submission failed", slog.Any("error", st.Err))
			view.Notice = p.T.Format("contact.failed", mailto)
			view.NoticeKind = NoticeError
			return RenderStatus(c, http.StatusBadGateway, a.Views.Contact(p, view))
		default:
			view.Notice = p.T.Text("contact.busy")
			view.NoticeKind = NoticeError
			return RenderStatus(c, http.StatusConflict, a.Views.Contact(p, view))
		}
	}
}

func isFormField(f string) bool {
	switch f {
	case contact.FieldName, contact.FieldEmail, contact.FieldSubject, contact.FieldMessage:
		return true
	}
	return false
}

func (a *App) handleFeed(lang locale.Code) echo.HandlerFunc {
	return func(c echo.Context) error {
		posts, err := a.Cache.ListPublished(c.Request().Context(), lang)
		if err != nil {
			return fmt.Errorf("feed %s: %w", lang, err)
		}
		return a.renderRSS(c, lang, posts)
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c)
}

func handleGone(c echo.Context) error {
	h := c.Response().Header()
	h.Set("X-Robots-Tag", "noindex, nofollow")
	h.Set("Cache-Control", "no-store, max-age=0")
	return c.String(http.StatusGone, "Gone")
}

func handleFavicon(c echo.Context) error {
	data, err := Assets.ReadFile("assets/favicon.svg")
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/svg+xml", data)
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\nDisallow: /api/\n")
	for _, p := range a.gonePaths() {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + BuildURL(a.Config.URL, "sitemap.xml") + "\n")
	return c.String(http.StatusOK, b.String())
}

type manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description,omitempty"`
	StartURL        string         `json:"start_url"`
	Lang            string         `json:"lang"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

func (a *App) handleManifest(c echo.Context) error {
	fallback := a.Locales.Fallback()
	data, err := json.Marshal(manifest{
		Name:            a.Config.Name,
		ShortName:       a.Config.Name,
		Description:     a.Config.Description,
		StartURL:        locale.Path(fallback, ""),
		Lang:            fallback.String(),
		Display:         "browser",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#1f4dd8",
		Icons:           []manifestIcon{{Src: "/favicon.svg", Sizes: "any", Type: "image/svg+xml"}},
	})
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/manifest+json", data)
}

// requestLocale resolves the locale of an arbitrary request path, falling
// back to the default locale for paths outside every locale.
func (a *App) requestLocale(c echo.Context) locale.Code {
	if lang, ok := a.Locales.FromPath(c.Request().URL.Path); ok {
		return lang
	}
	return a.Locales.Fallback()
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	lang := a.requestLocale(c)
	route := a.Locales.Strip(c.Request().URL.Path)
	// Error pages must not outlive the error in shared caches.
	c.Response().Header().Set("Cache-Control", "no-store")

	if ok && he.Code == http.StatusNotFound {
		t := a.Messages.For(lang)
		p := a.newPage(c, lang, route, t.Text("notfound.title"), t.Text("notfound.body"))
		p.Meta.NoIndex = true
		if rerr := RenderStatus(c, http.StatusNotFound, a.Views.NotFound(p)); rerr != nil {
			a.Logger.Error("render not found page", slog.Any("error", rerr))
			_ = c.String(http.StatusNotFound, "Not Found")
		}
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.ErrorContext(c.Request().Context(), "server error",
			slog.String("uri", c.Request().RequestURI), slog.Any("error", err))
		t := a.Messages.For(lang)
		p := a.newPage(c, lang, route, t.Text("error.title"), t.Text("error.body"))
		p.Meta.NoIndex = true
		if rerr := RenderStatus(c, code, a.Views.ServerError(p)); rerr != nil {
			_ = c.String(code, http.StatusText(code))
		}
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
