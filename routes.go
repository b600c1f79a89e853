package pubsite

import "github.com/eringen/pubsite/copydeck"

// Route is one marketing page that exists once per locale.
type Route struct {
	Name       string  // message ID suffix and view key
	Path       string  // path after the locale prefix; "" for the home page
	ChangeFreq string  // sitemap change frequency
	Priority   float64 // sitemap priority
	Nav        bool    // shown in the header navigation
}

// Routes lists every simple page in navigation order. Blog posts are added
// per slug on top of these.
var Routes = []Route{
	{Name: "home", Path: "", ChangeFreq: "weekly", Priority: 1.0, Nav: true},
	{Name: "features", Path: "/features", ChangeFreq: "monthly", Priority: 0.8, Nav: true},
	{Name: "pricing", Path: "/pricing", ChangeFreq: "weekly", Priority: 0.9, Nav: true},
	{Name: "about", Path: "/about", ChangeFreq: "monthly", Priority: 0.7, Nav: true},
	{Name: "blog", Path: "/blog", ChangeFreq: "daily", Priority: 0.8, Nav: true},
	{Name: "contact", Path: "/contact", ChangeFreq: "monthly", Priority: 0.7, Nav: true},
	{Name: copydeck.Privacy, Path: "/" + copydeck.Privacy, ChangeFreq: "monthly", Priority: 0.3},
	{Name: copydeck.Terms, Path: "/" + copydeck.Terms, ChangeFreq: "monthly", Priority: 0.3},
	{Name: copydeck.Cookies, Path: "/" + copydeck.Cookies, ChangeFreq: "monthly", Priority: 0.3},
}

// Post routes share these sitemap settings.
const (
	postChangeFreq = "weekly"
	postPriority   = 0.6
)
