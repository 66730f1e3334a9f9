package runtime

import (
	"reflect"
	"strings"

	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
)

// EmptyPredicate decides whether a field value counts as "not filled".
type EmptyPredicate func(v any) bool

// IsEmpty is the default EmptyPredicate. nil, blank strings, empty slices and maps
// and false are empty.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []byte:
		return len(strings.TrimSpace(string(x))) == 0
	case bool:
		return !x
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	}
	return false
}

// Gate decides whether the user may leave a panel going forward.
// It never mutates panel or navigator state.
type Gate struct {
	inspector        ports.FieldInspector
	validateRequired bool
	validators       map[int]ports.Validator
	isEmpty          EmptyPredicate
}

// Check returns the first failing element of the panel, or nil when it passes.
// Order: required visible fields, then required groups (both skipped when
// required validation is disabled), then the custom validator of the panel.
func (g *Gate) Check(panel domain.Panel) *domain.FieldRef {
	if g.validateRequired {
		if ref := g.checkFields(panel); ref != nil {
			return ref
		}
		if ref := g.checkGroups(panel); ref != nil {
			return ref
		}
	}

	if v, ok := g.validators[panel.Index]; ok {
		return v(panel, g.inspector)
	}
	return nil
}

func (g *Gate) checkFields(panel domain.Panel) *domain.FieldRef {
	for _, f := range panel.Fields {
		if !f.Required {
			continue
		}
		ref := panel.Ref(f.Name)
		if !g.inspector.IsVisible(ref) {
			continue
		}
		if g.isEmpty(g.inspector.CurrentValue(ref)) {
			return &ref
		}
	}
	return nil
}

func (g *Gate) checkGroups(panel domain.Panel) *domain.FieldRef {
	for _, grp := range panel.Groups {
		if len(grp.Members) == 0 {
			continue
		}
		need := grp.Required()
		satisfied := 0
		for _, m := range grp.Members {
			if g.inspector.IsSatisfied(memberRef(panel, grp, m)) {
				satisfied++
				if satisfied >= need {
					break
				}
			}
		}
		if satisfied < need {
			ref := memberRef(panel, grp, grp.Members[0])
			return &ref
		}
	}
	return nil
}

func memberRef(panel domain.Panel, grp domain.Group, member string) domain.FieldRef {
	return domain.FieldRef{PanelID: panel.ID, Name: member, Group: grp.Name}
}
