package memory

import (
	"maps"
	"strings"
	"sync"

	"github.com/aretw0/progressforms/pkg/domain"
)

// Inspector implements ports.FieldInspector over plain maps keyed by field name.
// Fields are visible unless hidden. A group member is satisfied when it was checked
// or when its value is true, "true", "on", "yes" or "1".
// Safe for concurrent use.
type Inspector struct {
	mu      sync.RWMutex
	values  map[string]any
	hidden  map[string]bool
	checked map[string]bool
}

// NewInspector creates an inspector seeded with values.
func NewInspector(values map[string]any) *Inspector {
	in := &Inspector{
		values:  make(map[string]any),
		hidden:  make(map[string]bool),
		checked: make(map[string]bool),
	}
	maps.Copy(in.values, values)
	return in
}

// Set stores a field value.
func (in *Inspector) Set(name string, value any) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.values[name] = value
}

// Hide marks fields as not visible.
func (in *Inspector) Hide(names ...string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, n := range names {
		in.hidden[n] = true
	}
}

// Show reverts Hide.
func (in *Inspector) Show(names ...string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, n := range names {
		delete(in.hidden, n)
	}
}

// Check toggles the satisfied state of a group member.
func (in *Inspector) Check(name string, on bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if on {
		in.checked[name] = true
		return
	}
	delete(in.checked, name)
	delete(in.values, name)
}

// Values returns a copy of the stored values.
func (in *Inspector) Values() map[string]any {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return maps.Clone(in.values)
}

func (in *Inspector) IsVisible(field domain.FieldRef) bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return !in.hidden[field.Name]
}

func (in *Inspector) CurrentValue(field domain.FieldRef) any {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.values[field.Name]
}

func (in *Inspector) IsSatisfied(member domain.FieldRef) bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if in.checked[member.Name] {
		return true
	}
	return truthy(in.values[member.Name])
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "on", "yes", "1":
			return true
		}
	}
	return false
}
