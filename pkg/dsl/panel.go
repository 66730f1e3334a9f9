package dsl

import "github.com/aretw0/progressforms/pkg/domain"

// PanelBuilder provides a fluent API for configuring a panel.
type PanelBuilder struct {
	panel   domain.Panel
	builder *Builder
}

// Title sets the label shown on the panel's progress indicator.
func (p *PanelBuilder) Title(title string) *PanelBuilder {
	p.panel.Title = title
	return p
}

// Description sets the markdown text shown above the fields.
func (p *PanelBuilder) Description(text string) *PanelBuilder {
	p.panel.Description = text
	return p
}

// Field adds an optional field.
func (p *PanelBuilder) Field(name string, kind domain.FieldKind) *PanelBuilder {
	p.panel.Fields = append(p.panel.Fields, domain.Field{Name: name, Kind: kind})
	return p
}

// Required adds a required field.
func (p *PanelBuilder) Required(name string, kind domain.FieldKind) *PanelBuilder {
	p.panel.Fields = append(p.panel.Fields, domain.Field{Name: name, Kind: kind, Required: true})
	return p
}

// Label sets the label of the last added field.
func (p *PanelBuilder) Label(label string) *PanelBuilder {
	if n := len(p.panel.Fields); n > 0 {
		p.panel.Fields[n-1].Label = label
	}
	return p
}

// Group adds a group of which at least min members must be satisfied.
func (p *PanelBuilder) Group(name string, min int, members ...string) *PanelBuilder {
	p.panel.Groups = append(p.panel.Groups, domain.Group{Name: name, Min: min, Members: members})
	return p
}

// Check attaches a Starlark check blaming the given field when it returns False.
func (p *PanelBuilder) Check(src, blame string) *PanelBuilder {
	p.panel.Check = &domain.Check{Script: src, Blame: blame}
	return p
}

// Panel starts the next panel on the same form.
func (p *PanelBuilder) Panel(id string) *PanelBuilder {
	return p.builder.Panel(id)
}
