package messages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubsite/locale"
)

func TestCatalog(t *testing.T) {
	reg := locale.MustRegistry("sv", "sv", "en")
	cat, err := Load(reg)
	require.NoError(t, err)

	sv := cat.For("sv")
	en := cat.For("en")
	assert.Equal(t, "Hem", sv.Text("nav.home"))
	assert.Equal(t, "Home", en.Text("nav.home"))
	assert.Equal(t, "nope.missing", en.Text("nope.missing"))
	assert.Equal(t, locale.Code("sv"), cat.For("de").Locale())
}

func TestFormat(t *testing.T) {
	cat, err := Load(locale.MustRegistry("sv", "sv", "en"))
	require.NoError(t, err)

	got := cat.For("en").Format("contact.failed", map[string]any{"Email": "hello@example.com"})
	assert.Contains(t, got, "hello@example.com")
	got = cat.For("sv").Format("contact.failed", map[string]any{"Email": "hej@example.se"})
	assert.Contains(t, got, "hej@example.se")
}

func TestDate(t *testing.T) {
	cat, err := Load(locale.MustRegistry("sv", "sv", "en"))
	require.NoError(t, err)

	d := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "17 oktober 2026", cat.For("sv").Date(d))
	assert.Equal(t, "October 17, 2026", cat.For("en").Date(d))
	assert.Empty(t, cat.For("en").Date(time.Time{}))
}

func TestLoadMissingLocale(t *testing.T) {
	_, err := Load(locale.MustRegistry("sv", "sv", "fi"))
	assert.Error(t, err)
}

func TestEveryIDTranslated(t *testing.T) {
	cat, err := Load(locale.MustRegistry("sv", "sv", "en"))
	require.NoError(t, err)
	for _, id := range []string{
		"nav.home", "nav.features", "nav.pricing", "nav.about", "nav.blog", "nav.contact",
		"contact.submit", "contact.success", "contact.busy",
		"blog.empty", "notfound.title", "error.title",
	} {
		assert.NotEqual(t, id, cat.For("sv").Text(id), id)
		assert.NotEqual(t, id, cat.For("en").Text(id), id)
	}
}
