package domain

import "fmt"

// FieldKind hints the host how a field is rendered. The navigator never interprets it.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldPassword FieldKind = "password"
	FieldNumber   FieldKind = "number"
	FieldTextArea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldCheckbox FieldKind = "checkbox"
)

// Field describes a single input of a panel.
type Field struct {
	Name        string    `json:"name" yaml:"name" toml:"name" mapstructure:"name"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty" toml:"label" mapstructure:"label"`
	Kind        FieldKind `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind" mapstructure:"kind"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty" toml:"required" mapstructure:"required"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty" toml:"placeholder" mapstructure:"placeholder"`
}

// Group describes a set of members of which at least Min must be satisfied
// (e.g. "pick at least two of these checkboxes").
type Group struct {
	Name    string   `json:"name" yaml:"name" toml:"name" mapstructure:"name"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty" toml:"label" mapstructure:"label"`
	Min     int      `json:"min,omitempty" yaml:"min,omitempty" toml:"min" mapstructure:"min"`
	Members []string `json:"members" yaml:"members" toml:"members" mapstructure:"members"`
}

// Required returns the minimum satisfied count. An unset Min means 1.
func (g Group) Required() int {
	if g.Min <= 0 {
		return 1
	}
	return g.Min
}

// Check is a declarative custom validator attached to a panel in a definition file.
// Either Script is compiled by the host (see pkg/script) or Use names a validator
// from a registry (see pkg/registry), configured through Args. Blame names the field
// reported on failure.
type Check struct {
	Script  string            `json:"script,omitempty" yaml:"script,omitempty" toml:"script" mapstructure:"script"`
	Use     string            `json:"use,omitempty" yaml:"use,omitempty" toml:"use" mapstructure:"use"`
	Args    map[string]string `json:"args,omitempty" yaml:"args,omitempty" toml:"args" mapstructure:"args"`
	Blame   string            `json:"blame,omitempty" yaml:"blame,omitempty" toml:"blame" mapstructure:"blame"`
	Message string            `json:"message,omitempty" yaml:"message,omitempty" toml:"message" mapstructure:"message"`
}

// Panel represents one step of the form.
type Panel struct {
	ID          string  `json:"id" yaml:"id" toml:"id" mapstructure:"id"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty" toml:"title" mapstructure:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" toml:"description" mapstructure:"description"`
	Fields      []Field `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields" mapstructure:"fields"`
	Groups      []Group `json:"groups,omitempty" yaml:"groups,omitempty" toml:"groups" mapstructure:"groups"`
	Check       *Check  `json:"check,omitempty" yaml:"check,omitempty" toml:"check" mapstructure:"check"`

	// Index is the ordinal position, assigned at registration and never changed.
	Index int `json:"index" yaml:"-" toml:"-" mapstructure:"-"`

	// PreviouslyValidated is owned by the navigator: true once the panel has been
	// left through a successful forward step.
	PreviouslyValidated bool `json:"previously_validated" yaml:"-" toml:"-" mapstructure:"-"`
}

// Label returns the text shown on the progress indicator for this panel.
func (p Panel) Label() string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

// Field looks up a field declared on the panel.
func (p Panel) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Ref builds a FieldRef for a field of this panel.
func (p Panel) Ref(name string) FieldRef {
	return FieldRef{PanelID: p.ID, Name: name}
}

// FieldRef identifies the element blamed for a validation failure.
type FieldRef struct {
	PanelID string `json:"panel_id"`
	Name    string `json:"name"`
	// Group is set when the element is a member of a required group.
	Group string `json:"group,omitempty"`
}

func (r FieldRef) String() string {
	if r.Group != "" {
		return fmt.Sprintf("%s/%s[%s]", r.PanelID, r.Group, r.Name)
	}
	return r.PanelID + "/" + r.Name
}
