// Package messages holds the interface strings shared by every page:
// navigation, footer, form labels and feedback, blog chrome and error pages.
package messages

import (
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/eringen/pubsite/locale"
)

//go:embed locales/*.toml
var files embed.FS

// Catalog holds one localizer per registered locale.
type Catalog struct {
	bundle   *i18n.Bundle
	printers map[locale.Code]*Printer
	fallback locale.Code
}

// Load builds a Catalog from the embedded message files. Every locale in reg
// must have a file.
func Load(reg *locale.Registry) (*Catalog, error) {
	bundle := i18n.NewBundle(reg.Fallback().Tag())
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	c := &Catalog{bundle: bundle, printers: map[locale.Code]*Printer{}, fallback: reg.Fallback()}
	for _, code := range reg.Codes() {
		path := fmt.Sprintf("locales/active.%s.toml", code)
		if _, err := bundle.LoadMessageFileFS(files, path); err != nil {
			return nil, fmt.Errorf("messages: load %s: %w", code, err)
		}
		c.printers[code] = &Printer{code: code, loc: i18n.NewLocalizer(bundle, code.String())}
	}
	return c, nil
}

// For returns the printer for code, or the fallback locale's printer when
// code is not registered.
func (c *Catalog) For(code locale.Code) *Printer {
	if p, ok := c.printers[code]; ok {
		return p
	}
	return c.printers[c.fallback]
}

// Printer localizes message IDs for one locale. Unknown IDs print as the ID
// itself so a missing string is visible instead of blank.
type Printer struct {
	code locale.Code
	loc  *i18n.Localizer
}

// Locale reports the printer's locale.
func (p *Printer) Locale() locale.Code { return p.code }

// Text localizes id.
func (p *Printer) Text(id string) string {
	return p.Format(id, nil)
}

// Format localizes id with template data.
func (p *Printer) Format(id string, data map[string]any) string {
	s, err := p.loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil || s == "" {
		return id
	}
	return s
}

// Date formats t as a long date, e.g. "17 oktober 2026" or "October 17, 2026".
func (p *Printer) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	month := t.Month().String()
	if names := strings.Split(p.Text("date.months"), ","); len(names) == 12 {
		month = names[t.Month()-1]
	}
	return p.Format("date.pattern", map[string]any{
		"Day":   t.Day(),
		"Month": month,
		"Year":  t.Year(),
	})
}
