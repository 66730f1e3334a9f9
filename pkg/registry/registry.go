// Package registry resolves the named validators that definition files
// reference with `check: {use: ...}`.
package registry

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
)

// ErrUnknownValidator is returned when a panel uses a name nobody registered.
var ErrUnknownValidator = errors.New("unknown validator")

// Factory builds a validator for one panel from its check declaration.
type Factory func(panel domain.Panel, check domain.Check) (ports.Validator, error)

// Registry manages the available validators.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Builtin returns a registry preloaded with "equal" and "email".
func Builtin() *Registry {
	r := NewRegistry()
	r.Register("equal", equal)
	r.Register("email", email)
	return r
}

// Register adds a factory.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Names lists the registered validators in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve builds the validator for a panel whose check names one.
// It returns nil when the panel does not use a named validator.
func (r *Registry) Resolve(panel domain.Panel) (ports.Validator, error) {
	if panel.Check == nil || panel.Check.Use == "" {
		return nil, nil
	}
	r.mu.RLock()
	fn, ok := r.factories[panel.Check.Use]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("panel %q: %w: %s", panel.ID, ErrUnknownValidator, panel.Check.Use)
	}
	v, err := fn(panel, *panel.Check)
	if err != nil {
		return nil, fmt.Errorf("panel %q: validator %s: %w", panel.ID, panel.Check.Use, err)
	}
	return v, nil
}

// ResolveForm resolves every named validator of form, keyed by panel index.
func (r *Registry) ResolveForm(form *domain.Form) (map[int]ports.Validator, error) {
	out := make(map[int]ports.Validator)
	for i, p := range form.Panels {
		v, err := r.Resolve(p)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out[i] = v
		}
	}
	return out, nil
}

func blameOr(panel domain.Panel, check domain.Check, fallback string) domain.FieldRef {
	if check.Blame != "" {
		return panel.Ref(check.Blame)
	}
	return panel.Ref(fallback)
}

// equal fails when args "field" and "other" hold different values,
// e.g. a password and its confirmation. It blames "other" by default.
func equal(panel domain.Panel, check domain.Check) (ports.Validator, error) {
	field, other := check.Args["field"], check.Args["other"]
	if field == "" || other == "" {
		return nil, errors.New(`args "field" and "other" are required`)
	}
	ref := blameOr(panel, check, other)
	return func(p domain.Panel, in ports.FieldInspector) *domain.FieldRef {
		a := in.CurrentValue(p.Ref(field))
		b := in.CurrentValue(p.Ref(other))
		if fmt.Sprint(a) != fmt.Sprint(b) {
			return &ref
		}
		return nil
	}, nil
}

// email fails when the visible, non-empty arg "field" is not an address.
func email(panel domain.Panel, check domain.Check) (ports.Validator, error) {
	field := check.Args["field"]
	if field == "" {
		return nil, errors.New(`arg "field" is required`)
	}
	ref := blameOr(panel, check, field)
	return func(p domain.Panel, in ports.FieldInspector) *domain.FieldRef {
		target := p.Ref(field)
		if !in.IsVisible(target) {
			return nil
		}
		s, _ := in.CurrentValue(target).(string)
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if addr, err := mail.ParseAddress(s); err != nil || addr.Address != s {
			return &ref
		}
		return nil
	}, nil
}
