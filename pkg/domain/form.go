package domain

// Settings are the navigation permissions of a form. They are immutable once a navigator
// has been created.
type Settings struct {
	// AllowClickForward lets a click on a later indicator jump forward.
	AllowClickForward bool `json:"allow_click_forward" yaml:"allow_click_forward" toml:"allow_click_forward" mapstructure:"allow_click_forward"`
	// AllowClickBackward lets a click on an earlier indicator jump back.
	AllowClickBackward bool `json:"allow_click_backward" yaml:"allow_click_backward" toml:"allow_click_backward" mapstructure:"allow_click_backward"`
	// RequireVisitedForForwardClick restricts forward clicks to panels already passed through.
	RequireVisitedForForwardClick bool `json:"require_visited_for_forward_click" yaml:"require_visited_for_forward_click" toml:"require_visited_for_forward_click" mapstructure:"require_visited_for_forward_click"`
	// ValidateRequired enables the required-field step of the gate.
	ValidateRequired bool `json:"validate_required" yaml:"validate_required" toml:"validate_required" mapstructure:"validate_required"`
}

// DefaultSettings mirrors the historical defaults: indicator clicks disabled, required
// fields validated, forward clicks only onto visited panels.
func DefaultSettings() Settings {
	return Settings{
		ValidateRequired:              true,
		RequireVisitedForForwardClick: true,
	}
}

// Form is a complete multi-step form definition.
type Form struct {
	ID       string   `json:"id" yaml:"id" toml:"id" mapstructure:"id"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty" toml:"title" mapstructure:"title"`
	Settings Settings `json:"settings" yaml:"settings" toml:"settings" mapstructure:"settings"`
	Panels   []Panel  `json:"panels" yaml:"panels" toml:"panels" mapstructure:"panels"`
}

// Label returns the form title, or its ID when untitled.
func (f *Form) Label() string {
	if f.Title != "" {
		return f.Title
	}
	return f.ID
}

// PanelIndex resolves a panel ID to its position, or -1.
func (f *Form) PanelIndex(id string) int {
	for i, p := range f.Panels {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Field finds a field by name on any panel.
func (f *Form) Field(name string) (Field, bool) {
	for _, p := range f.Panels {
		if fd, ok := p.Field(name); ok {
			return fd, true
		}
	}
	return Field{}, false
}

// PanelIDs lists the panel identifiers in order.
func (f *Form) PanelIDs() []string {
	ids := make([]string, len(f.Panels))
	for i, p := range f.Panels {
		ids[i] = p.ID
	}
	return ids
}
