// Package views renders the site's pages. Each page is an html/template file
// executed inside the shared layout and exposed as a templ.Component.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/copydeck"
	"github.com/eringen/pubsite/markdown"
)

//go:embed templates/*.html
var files embed.FS

var pageNames = []string{
	"home", "features", "pricing", "about", "contact",
	"blog", "post", "legal", "notfound", "error",
}

var funcs = template.FuncMap{
	"markdown": func(md string) template.HTML {
		return template.HTML(markdown.Render(md))
	},
	// jsonld trusts its input: it must come from json.Marshal, which escapes
	// <, > and &.
	"jsonld": func(s string) template.JS {
		return template.JS(s)
	},
	"iso": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
	"day": func(s string) time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return t
	},
	"dict": func(kv ...any) map[string]any {
		m := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			key, _ := kv[i].(string)
			m[key] = kv[i+1]
		}
		return m
	},
}

// data is what the templates execute against. Page fields are promoted so
// templates read {{.T.Text "..."}} and {{.Meta.Title}} directly.
type data struct {
	pubsite.Page
	Form  pubsite.ContactView
	Posts []content.LocalizedPost
	Post  content.LocalizedPost
	Doc   copydeck.Legal
}

// Views holds one parsed template set per page.
type Views struct {
	pages map[string]*template.Template
}

// New parses the embedded templates.
func New() (*Views, error) {
	v := &Views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Must is New for use at program start.
func Must() *Views {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Views) component(name string, d data) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return v.pages[name].ExecuteTemplate(w, "layout", d)
	})
}

// Funcs returns the views wired for pubsite.New.
func (v *Views) Funcs() pubsite.ViewFuncs {
	page := func(name string) func(pubsite.Page) templ.Component {
		return func(p pubsite.Page) templ.Component {
			return v.component(name, data{Page: p})
		}
	}
	return pubsite.ViewFuncs{
		Home:     page("home"),
		Features: page("features"),
		Pricing:  page("pricing"),
		About:    page("about"),
		Contact: func(p pubsite.Page, form pubsite.ContactView) templ.Component {
			return v.component("contact", data{Page: p, Form: form})
		},
		Blog: func(p pubsite.Page, posts []content.LocalizedPost) templ.Component {
			return v.component("blog", data{Page: p, Posts: posts})
		},
		Post: func(p pubsite.Page, post content.LocalizedPost) templ.Component {
			return v.component("post", data{Page: p, Post: post})
		},
		Legal: func(p pubsite.Page, doc copydeck.Legal) templ.Component {
			return v.component("legal", data{Page: p, Doc: doc})
		},
		NotFound:    page("notfound"),
		ServerError: page("error"),
	}
}
