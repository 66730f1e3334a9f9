package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/progressforms/pkg/domain"
)

// Validate checks the integrity of a form definition before a navigator is built on it.
// validatorIndexes are the panel indexes custom validators were registered for.
// It returns nil or an *AggregateError listing every problem found.
func Validate(form *domain.Form, validatorIndexes ...int) error {
	var problems []error
	add := func(panelID, element, reason string, sentinel error) {
		problems = append(problems, &DefinitionError{PanelID: panelID, Element: element, Reason: reason, Err: sentinel})
	}

	if form == nil || len(form.Panels) == 0 {
		add("", "", "form has no panels", domain.ErrNoPanels)
		return &AggregateError{Errors: problems}
	}

	seen := make(map[string]int)
	for i, p := range form.Panels {
		label := p.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			add(label, "", "panel has no id", domain.ErrMissingPanelID)
		} else if j, dup := seen[p.ID]; dup {
			add(label, "", fmt.Sprintf("id already used by panel %d", j), domain.ErrDuplicatePanelID)
		} else {
			seen[p.ID] = i
		}

		names := make(map[string]bool)
		for _, f := range p.Fields {
			switch {
			case f.Name == "":
				add(label, "", "field has no name", nil)
			case names[f.Name]:
				add(label, f.Name, "duplicate field name", nil)
			}
			names[f.Name] = true
		}

		groups := make(map[string]bool)
		for _, g := range p.Groups {
			if g.Name == "" {
				add(label, "", "group has no name", nil)
			} else if groups[g.Name] {
				add(label, g.Name, "duplicate group name", nil)
			}
			groups[g.Name] = true

			if len(g.Members) == 0 {
				add(label, g.Name, "group has no members", nil)
			}
			if g.Min < 0 {
				add(label, g.Name, "min must not be negative", nil)
			}
			if len(g.Members) > 0 && g.Required() > len(g.Members) {
				add(label, g.Name, fmt.Sprintf("min %d exceeds its %d members", g.Required(), len(g.Members)), nil)
			}
			members := make(map[string]bool)
			for _, m := range g.Members {
				if m == "" {
					add(label, g.Name, "group member has no name", nil)
				} else if members[m] {
					add(label, g.Name, fmt.Sprintf("member %q listed twice", m), nil)
				}
				members[m] = true
			}
		}

		if p.Check != nil {
			if p.Check.Blame != "" && !names[p.Check.Blame] && !memberOf(p, p.Check.Blame) {
				add(label, p.Check.Blame, "check blames an undeclared field", nil)
			}
			if strings.TrimSpace(p.Check.Script) != "" && p.Check.Use != "" {
				add(label, p.Check.Use, "check declares both a script and a named validator", nil)
			}
		}
	}

	for _, idx := range validatorIndexes {
		if idx < 0 || idx >= len(form.Panels) {
			add("", "", fmt.Sprintf("validator registered for panel index %d, form has %d panels", idx, len(form.Panels)), domain.ErrIndexOutOfRange)
		}
	}

	if len(problems) > 0 {
		return &AggregateError{Errors: problems}
	}
	return nil
}

func memberOf(p domain.Panel, name string) bool {
	for _, g := range p.Groups {
		for _, m := range g.Members {
			if m == name {
				return true
			}
		}
	}
	return false
}
