package copydeck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubsite/locale"
)

func TestLoad(t *testing.T) {
	decks, err := Load(locale.MustRegistry("sv", "sv", "en"))
	require.NoError(t, err)

	for _, code := range []locale.Code{"sv", "en"} {
		d := decks.For(code)
		require.NotNil(t, d, code)

		var names []string
		for _, tier := range d.Pricing.Tiers {
			names = append(names, tier.Name)
		}
		assert.Equal(t, []string{"Starter", "Essential", "Enterprise"}, names, code)

		for _, kind := range LegalKinds {
			assert.NotEmpty(t, d.Legal[kind].Sections, "%s %s", code, kind)
		}
		assert.NotEmpty(t, d.Features.Items, code)
		assert.NotEmpty(t, d.Contact.Heading, code)
	}

	assert.Equal(t, "Priser", decks.For("sv").Pricing.Title)
	assert.Equal(t, "Pricing", decks.For("en").Pricing.Title)
	assert.Equal(t, "2026-01-15", decks.For("en").Legal[Privacy].Updated)
}

func TestLoadMissingDeck(t *testing.T) {
	_, err := Load(locale.MustRegistry("en", "en", "de"))
	assert.Error(t, err)
}

func TestParseRejectsIncompleteDeck(t *testing.T) {
	_, err := Parse([]byte("home:\n  title: Hi\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing.tiers")
	assert.Contains(t, err.Error(), "legal.privacy")

	_, err = Parse([]byte("home: [oops"))
	assert.Error(t, err)
}
