package ports

import "github.com/aretw0/progressforms/pkg/domain"

// FieldInspector gives the gate read access to the host's live fields.
// The navigator never caches its answers: every gate call queries it again.
type FieldInspector interface {
	// IsVisible reports whether the field is currently shown to the user.
	// Hidden required fields never block navigation.
	IsVisible(field domain.FieldRef) bool

	// CurrentValue returns the field's value as the host sees it.
	CurrentValue(field domain.FieldRef) any

	// IsSatisfied reports whether a group member is in the satisfied state (e.g. checked).
	IsSatisfied(member domain.FieldRef) bool
}

// Validator is a custom per-panel check. It returns nil when the panel passes,
// or the element to blame.
type Validator func(panel domain.Panel, inspector FieldInspector) *domain.FieldRef
