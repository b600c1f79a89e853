// Package copydeck loads the marketing copy for every page, one YAML deck
// per locale. Decks are embedded at build time and read once at startup.
package copydeck

import (
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/eringen/pubsite/locale"
)

//go:embed decks/*.yaml
var files embed.FS

// Legal page kinds.
const (
	Privacy = "privacy"
	Terms   = "terms"
	Cookies = "cookies"
)

// LegalKinds lists the legal pages every deck must carry, in footer order.
var LegalKinds = []string{Privacy, Terms, Cookies}

// Page is the copy every page has: document title, meta description and the
// visible heading and lead paragraph.
type Page struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Heading     string `yaml:"heading"`
	Lead        string `yaml:"lead"`
}

type Item struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

type Section struct {
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
}

type Banner struct {
	Title  string `yaml:"title"`
	Body   string `yaml:"body"`
	Button string `yaml:"button"`
}

type Home struct {
	Page         `yaml:",inline"`
	PrimaryCTA   string `yaml:"primary_cta"`
	SecondaryCTA string `yaml:"secondary_cta"`
	Highlights   []Item `yaml:"highlights"`
	Banner       Banner `yaml:"banner"`
}

type Features struct {
	Page  `yaml:",inline"`
	Items []Item `yaml:"items"`
}

// Tier is one pricing plan.
type Tier struct {
	Name        string   `yaml:"name"`
	Price       string   `yaml:"price"`
	Period      string   `yaml:"period"`
	Summary     string   `yaml:"summary"`
	Features    []string `yaml:"features"`
	CTA         string   `yaml:"cta"`
	Highlighted bool     `yaml:"highlighted"`
}

type Pricing struct {
	Page  `yaml:",inline"`
	Tiers []Tier `yaml:"tiers"`
	Note  string `yaml:"note"`
}

type About struct {
	Page     `yaml:",inline"`
	Sections []Section `yaml:"sections"`
	Values   []Item    `yaml:"values"`
}

type Legal struct {
	Page     `yaml:",inline"`
	Updated  string    `yaml:"updated"`
	Sections []Section `yaml:"sections"`
}

// Deck is the complete copy for one locale.
type Deck struct {
	Home     Home             `yaml:"home"`
	Features Features         `yaml:"features"`
	Pricing  Pricing          `yaml:"pricing"`
	About    About            `yaml:"about"`
	Contact  Page             `yaml:"contact"`
	Blog     Page             `yaml:"blog"`
	Legal    map[string]Legal `yaml:"legal"`
}

func (d *Deck) validate() error {
	var errs []error
	if d.Home.Title == "" {
		errs = append(errs, errors.New("home.title is empty"))
	}
	if len(d.Pricing.Tiers) == 0 {
		errs = append(errs, errors.New("pricing.tiers is empty"))
	}
	for _, kind := range LegalKinds {
		if d.Legal[kind].Title == "" {
			errs = append(errs, fmt.Errorf("legal.%s is missing", kind))
		}
	}
	return errors.Join(errs...)
}

// Decks holds one Deck per registered locale.
type Decks struct {
	decks map[locale.Code]*Deck
}

// Load parses the embedded deck of every locale in reg.
func Load(reg *locale.Registry) (*Decks, error) {
	out := &Decks{decks: make(map[locale.Code]*Deck)}
	for _, code := range reg.Codes() {
		raw, err := files.ReadFile("decks/" + code.String() + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("copydeck: no deck for %s: %w", code, err)
		}
		d, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("copydeck: %s: %w", code, err)
		}
		out.decks[code] = d
	}
	return out, nil
}

// Parse decodes and checks one deck.
func Parse(raw []byte) (*Deck, error) {
	var d Deck
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// For returns the deck for code. Load guarantees every registered code has
// one.
func (ds *Decks) For(code locale.Code) *Deck {
	return ds.decks[code]
}
