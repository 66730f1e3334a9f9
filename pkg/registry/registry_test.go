package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
	"github.com/aretw0/progressforms/pkg/registry"
)

func panelUsing(use string, args map[string]string) domain.Panel {
	return domain.Panel{
		ID:     "account",
		Fields: []domain.Field{{Name: "email"}, {Name: "password"}, {Name: "confirm"}},
		Check:  &domain.Check{Use: use, Args: args},
	}
}

func TestBuiltin_Equal(t *testing.T) {
	p := panelUsing("equal", map[string]string{"field": "password", "other": "confirm"})
	v, err := registry.Builtin().Resolve(p)
	require.NoError(t, err)
	require.NotNil(t, v)

	in := memory.NewInspector(map[string]any{"password": "s3cret", "confirm": "secret"})
	blame := v(p, in)
	require.NotNil(t, blame)
	assert.Equal(t, "confirm", blame.Name)

	in.Set("confirm", "s3cret")
	assert.Nil(t, v(p, in))
}

func TestBuiltin_Email(t *testing.T) {
	p := panelUsing("email", map[string]string{"field": "email"})
	v, err := registry.Builtin().Resolve(p)
	require.NoError(t, err)

	cases := []struct {
		value string
		ok    bool
	}{
		{"ada@example.com", true},
		{"", true},
		{"not-an-address", false},
		{"Ada <ada@example.com>", false},
	}
	for _, c := range cases {
		t.Run(c.value, func(t *testing.T) {
			blame := v(p, memory.NewInspector(map[string]any{"email": c.value}))
			assert.Equal(t, c.ok, blame == nil)
		})
	}

	t.Run("Hidden Field Is Skipped", func(t *testing.T) {
		in := memory.NewInspector(map[string]any{"email": "nope"})
		in.Hide("email")
		assert.Nil(t, v(p, in))
	})
}

func TestRegistry_Resolve(t *testing.T) {
	r := registry.NewRegistry()

	t.Run("No Named Check", func(t *testing.T) {
		v, err := r.Resolve(domain.Panel{ID: "x"})
		assert.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("Unknown Name", func(t *testing.T) {
		_, err := r.Resolve(panelUsing("nope", nil))
		assert.ErrorIs(t, err, registry.ErrUnknownValidator)
	})

	t.Run("Bad Args", func(t *testing.T) {
		_, err := registry.Builtin().Resolve(panelUsing("equal", map[string]string{"field": "a"}))
		assert.Error(t, err)
	})

	t.Run("Custom Factory", func(t *testing.T) {
		r.Register("never", func(domain.Panel, domain.Check) (ports.Validator, error) {
			return func(p domain.Panel, _ ports.FieldInspector) *domain.FieldRef {
				ref := p.Ref("email")
				return &ref
			}, nil
		})
		form := &domain.Form{Panels: []domain.Panel{{ID: "a"}, panelUsing("never", nil)}}
		got, err := r.ResolveForm(form)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Contains(t, got, 1)
		assert.Equal(t, []string{"never"}, r.Names())
	})
}
