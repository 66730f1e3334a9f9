package script_test

import (
	"testing"

	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passwordPanel(src, blame string) domain.Panel {
	return domain.Panel{
		ID: "personal",
		Fields: []domain.Field{
			{Name: "password", Required: true},
			{Name: "confirm", Required: true},
		},
		Groups: []domain.Group{{Name: "topics", Members: []string{"go", "rust"}}},
		Check:  &domain.Check{Script: src, Blame: blame},
	}
}

func TestCompile(t *testing.T) {
	c := script.New()

	t.Run("No Check", func(t *testing.T) {
		v, err := c.Compile(domain.Panel{ID: "p"})
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("Syntax Error", func(t *testing.T) {
		_, err := c.Compile(passwordPanel("values[", ""))
		var cerr *script.CompileError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "personal", cerr.PanelID)
	})

	t.Run("Bool Result", func(t *testing.T) {
		p := passwordPanel(`values["password"] == values["confirm"]`, "confirm")
		v, err := c.Compile(p)
		require.NoError(t, err)

		in := memory.NewInspector(map[string]any{"password": "s3cret", "confirm": "typo"})
		blame := v(p, in)
		require.NotNil(t, blame)
		assert.Equal(t, domain.FieldRef{PanelID: "personal", Name: "confirm"}, *blame)

		in.Set("confirm", "s3cret")
		assert.Nil(t, v(p, in))
	})

	t.Run("String Result Names The Field", func(t *testing.T) {
		p := passwordPanel(`"password" if len(values["password"]) < 8 else None`, "")
		v, err := c.Compile(p)
		require.NoError(t, err)

		blame := v(p, memory.NewInspector(map[string]any{"password": "short"}))
		require.NotNil(t, blame)
		assert.Equal(t, "password", blame.Name)
		assert.Nil(t, v(p, memory.NewInspector(map[string]any{"password": "long enough"})))
	})

	t.Run("Builtins", func(t *testing.T) {
		p := passwordPanel(`checked("go") or not visible("rust")`, "go")
		v, err := c.Compile(p)
		require.NoError(t, err)

		in := memory.NewInspector(nil)
		assert.NotNil(t, v(p, in))
		in.Hide("rust")
		assert.Nil(t, v(p, in))
		in.Show("rust")
		in.Check("go", true)
		assert.Nil(t, v(p, in))
	})

	t.Run("Empty Builtin And Default Blame", func(t *testing.T) {
		p := passwordPanel(`not empty("confirm")`, "")
		v, err := c.Compile(p)
		require.NoError(t, err)

		blame := v(p, memory.NewInspector(nil))
		require.NotNil(t, blame)
		assert.Equal(t, "password", blame.Name, "defaults to the first field")
	})

	t.Run("Runtime Error Blames", func(t *testing.T) {
		p := passwordPanel(`values["missing"]`, "password")
		v, err := c.Compile(p)
		require.NoError(t, err)
		blame := v(p, memory.NewInspector(nil))
		require.NotNil(t, blame)
		assert.Equal(t, "password", blame.Name)
	})
}

func TestCompileForm(t *testing.T) {
	form := &domain.Form{Panels: []domain.Panel{
		{ID: "a"},
		passwordPanel("True", ""),
	}}
	vs, err := script.New().CompileForm(form)
	require.NoError(t, err)
	assert.Len(t, vs, 1)
	assert.Contains(t, vs, 1)
}
