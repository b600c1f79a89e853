package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/contact"
	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/copydeck"
	"github.com/eringen/pubsite/locale"
	"github.com/eringen/pubsite/messages"
)

func testPage(t *testing.T, lang locale.Code) pubsite.Page {
	t.Helper()
	reg := locale.MustRegistry("sv", "sv", "en")
	msgs, err := messages.Load(reg)
	if err != nil {
		t.Fatalf("messages.Load: %v", err)
	}
	decks, err := copydeck.Load(reg)
	if err != nil {
		t.Fatalf("copydeck.Load: %v", err)
	}
	return pubsite.Page{
		SiteName: "Pubsite",
		SiteURL:  "https://example.com",
		Year:     2026,
		Locale:   lang,
		Meta:     pubsite.PageMeta{Title: "Test | Pubsite", Canonical: "https://example.com/" + lang.String()},
		JSONLD:   []string{`{"name":"A < B"}`},
		CSRF:     "tok",
		T:        msgs.For(lang),
		Copy:     decks.For(lang),
	}
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestEveryPageParses(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, name := range pageNames {
		if v.pages[name] == nil {
			t.Errorf("page %q not parsed", name)
		}
	}
}

func TestLayoutRendersSharedChrome(t *testing.T) {
	f := Must().Funcs()
	html := render(t, f.Home(testPage(t, "en")))

	for _, want := range []string{
		`<html lang="en">`,
		`<title>Test | Pubsite</title>`,
		`<script type="application/ld+json">{"name":"A < B"}</script>`,
		`&copy; 2026 Pubsite.`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestPostEscapesTitleAndRendersMarkdown(t *testing.T) {
	f := Must().Funcs()
	post := content.LocalizedPost{
		Slug:        "launch",
		Locale:      "sv",
		Title:       `<script>alert("x")</script>`,
		Content:     "# Rubrik\n\nText med **fetstil**.",
		Author:      "Team",
		PublishedAt: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
		Link:        "/sv/blog/launch",
	}
	html := render(t, f.Post(testPage(t, "sv"), post))

	if strings.Contains(html, `<script>alert`) {
		t.Error("post title was not escaped")
	}
	if !strings.Contains(html, `&lt;script&gt;`) {
		t.Error("escaped title missing")
	}
	if !strings.Contains(html, `<h2 id="rubrik">Rubrik</h2>`) {
		t.Error("markdown heading missing")
	}
	if !strings.Contains(html, "<strong>fetstil</strong>") {
		t.Error("markdown emphasis missing")
	}
	if !strings.Contains(html, "17 oktober 2026") {
		t.Error("localized date missing")
	}
}

func TestContactRendersFieldErrors(t *testing.T) {
	f := Must().Funcs()
	view := pubsite.ContactView{
		Values:   contact.Submission{Name: "", Email: "anna@example", Message: `"quoted"`},
		Errors:   contact.FieldErrors{contact.FieldName: "contact.error.name", contact.FieldEmail: "contact.error.email"},
		Subjects: contact.DefaultSubjects,
	}
	html := render(t, f.Contact(testPage(t, "en"), view))

	for _, want := range []string{
		`name="_csrf" value="tok"`,
		`id="name-error"`,
		`id="email-error"`,
		"Please enter your name.",
		`value="anna@example"`,
		`&#34;quoted&#34;`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("contact page missing %q", want)
		}
	}
	if strings.Contains(html, `id="message-error"`) {
		t.Error("message has no error and should not show one")
	}
}

func TestLegalAndListPages(t *testing.T) {
	f := Must().Funcs()
	p := testPage(t, "en")

	doc := p.Copy.Legal[copydeck.Privacy]
	html := render(t, f.Legal(p, doc))
	if !strings.Contains(html, doc.Sections[0].Heading) {
		t.Errorf("legal page missing first section %q", doc.Sections[0].Heading)
	}

	html = render(t, f.Blog(p, nil))
	if !strings.Contains(html, p.T.Text("blog.empty")) {
		t.Error("empty blog should say so")
	}

	html = render(t, f.Pricing(p))
	for _, tier := range p.Copy.Pricing.Tiers {
		if !strings.Contains(html, tier.Name) {
			t.Errorf("pricing page missing tier %q", tier.Name)
		}
	}
}
