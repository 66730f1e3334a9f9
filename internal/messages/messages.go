// Package messages holds the host-facing strings of the CLI, TUI and HTTP adapters
// in every supported language.
package messages

import (
	"embed"
	"fmt"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/aretw0/progressforms/pkg/domain"
)

//go:embed locales/*.toml
var locales embed.FS

// Message IDs.
const (
	RequiredFieldsMissing = "required_fields_missing"
	FieldRequired         = "field_required"
	GroupRequired         = "group_required"
	CheckFailed           = "check_failed"
	ButtonNext            = "button_next"
	ButtonPrevious        = "button_previous"
	Progress              = "progress"
	LastPanel             = "last_panel"
	PanelOutOfRange       = "panel_out_of_range"
	UnknownPanel          = "unknown_panel"
	FormCompleted         = "form_completed"
	ValueTooLong          = "value_too_long"
	ValueNotANumber       = "value_not_a_number"
	ValueInvalid          = "value_invalid"
)

// Catalog is the set of loaded translations. English is the fallback.
type Catalog struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
}

// New loads the embedded translations.
func New() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}
	for _, e := range entries {
		name := path.Join("locales", e.Name())
		data, err := locales.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}

	return &Catalog{
		bundle:  bundle,
		matcher: language.NewMatcher(bundle.LanguageTags()),
	}, nil
}

// MustNew is New for package-level initialization in commands.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Languages lists the supported language tags.
func (c *Catalog) Languages() []language.Tag {
	return c.bundle.LanguageTags()
}

// Match picks the best supported language for an Accept-Language header or locale string.
func (c *Catalog) Match(accept string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	tag, _, _ := c.matcher.Match(tags...)
	base, _ := tag.Base()
	return language.Make(base.String())
}

// Localizer returns a printer for the given languages, most preferred first.
func (c *Catalog) Localizer(langs ...string) *Localizer {
	return &Localizer{l: i18n.NewLocalizer(c.bundle, langs...)}
}

// Localizer renders messages in one language.
type Localizer struct {
	l *i18n.Localizer
}

// Text renders a message. Unknown IDs render as the ID itself.
func (l *Localizer) Text(id string, data map[string]any) string {
	cfg := &i18n.LocalizeConfig{MessageID: id, TemplateData: data}
	if n, ok := data["Min"].(int); ok {
		cfg.PluralCount = n
	}
	out, err := l.l.Localize(cfg)
	if err != nil {
		return id
	}
	return out
}

// Blame describes a validation failure to the user.
func (l *Localizer) Blame(panel domain.Panel, ref domain.FieldRef) string {
	if ref.Group != "" {
		for _, g := range panel.Groups {
			if g.Name == ref.Group {
				label := g.Label
				if label == "" {
					label = g.Name
				}
				return l.Text(GroupRequired, map[string]any{"Min": g.Required(), "Group": label})
			}
		}
	}
	if f, ok := panel.Field(ref.Name); ok {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		if f.Required {
			return l.Text(FieldRequired, map[string]any{"Field": label})
		}
		return l.Text(CheckFailed, map[string]any{"Field": label})
	}
	return l.Text(CheckFailed, map[string]any{"Field": ref.Name})
}

// ProgressLine renders "Step n of total" for a 0-based index.
func (l *Localizer) ProgressLine(index, total int) string {
	return l.Text(Progress, map[string]any{"Current": index + 1, "Total": total})
}
