package pubsite

import (
	"context"

	"github.com/eringen/pubsite/staticgen"
)

// StaticPaths lists every path a static export must render: each route and
// feed in each locale, each visible post in each locale, and the
// locale-neutral files. Call after Init.
func (a *App) StaticPaths(ctx context.Context) []string {
	templates := make([]staticgen.Template, 0, len(Routes)+2)
	for _, r := range Routes {
		templates = append(templates, staticgen.Template("/{lang}"+r.Path))
	}
	templates = append(templates,
		"/{lang}/blog/{slug}",
		"/{lang}/feed.xml",
	)
	paths := []string{"/"}
	paths = append(paths, staticgen.Generate(ctx, a.Locales, a.Cache, a.Logger, templates...)...)
	return append(paths,
		"/sitemap.xml",
		"/robots.txt",
		"/site.webmanifest",
		"/favicon.svg",
		"/assets/site.css",
	)
}

// Export pre-renders the whole site into dir.
func (a *App) Export(ctx context.Context, dir string) (staticgen.Result, error) {
	if err := a.Init(ctx); err != nil {
		return staticgen.Result{}, err
	}
	ex := &staticgen.Exporter{Handler: a.Echo, Dir: dir, Logger: a.Logger}
	return ex.Export(ctx, a.StaticPaths(ctx))
}
