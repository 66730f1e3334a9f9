package loam

// KindForm marks the document carrying form-level settings rather than a panel.
const KindForm = "form"

// PanelMetadata is the frontmatter of a panel document (or of the form document
// when Kind is "form"). Nested blocks stay loosely typed and are decoded with
// mapstructure, since strict mode hands numbers over as json.Number.
type PanelMetadata struct {
	Kind        string `json:"kind" mapstructure:"kind"`
	ID          string `json:"id" mapstructure:"id"`
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`

	// Order positions the panel. Panels without one follow, sorted by ID.
	Order any `json:"order" mapstructure:"order"`

	Fields []any `json:"fields" mapstructure:"fields"`
	Groups []any `json:"groups" mapstructure:"groups"`
	Check  any   `json:"check" mapstructure:"check"`

	// Settings is only read from the form document.
	Settings map[string]any `json:"settings" mapstructure:"settings"`
}
