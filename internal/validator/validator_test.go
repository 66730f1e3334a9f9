package validator_test

import (
	"testing"

	"github.com/aretw0/progressforms/internal/validator"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("Valid Form", func(t *testing.T) {
		form := &domain.Form{Panels: []domain.Panel{
			{
				ID:     "account",
				Fields: []domain.Field{{Name: "email", Required: true}, {Name: "password"}},
				Groups: []domain.Group{{Name: "plan", Min: 1, Members: []string{"free", "pro"}}},
				Check:  &domain.Check{Script: "True", Blame: "pro"},
			},
			{ID: "done"},
		}}
		assert.NoError(t, validator.Validate(form, 0, 1))
	})

	t.Run("No Panels", func(t *testing.T) {
		err := validator.Validate(&domain.Form{})
		assert.ErrorIs(t, err, domain.ErrNoPanels)
	})

	t.Run("Collects Every Problem", func(t *testing.T) {
		form := &domain.Form{Panels: []domain.Panel{
			{
				ID:     "a",
				Fields: []domain.Field{{Name: "x"}, {Name: "x"}, {}},
				Groups: []domain.Group{{Name: "g", Min: 3, Members: []string{"m1", "m1"}}},
				Check:  &domain.Check{Script: "True", Blame: "ghost"},
			},
			{ID: "a"},
			{},
		}}
		err := validator.Validate(form, 5)
		require.Error(t, err)

		problems := validator.Problems(err)
		assert.Len(t, problems, 8)
		assert.ErrorIs(t, err, domain.ErrDuplicatePanelID)
		assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
		assert.Contains(t, err.Error(), "8 definition errors")
		assert.Contains(t, err.Error(), `panel "a", "g": min 3 exceeds its 2 members`)
	})

	t.Run("Script And Named Validator", func(t *testing.T) {
		err := validator.Validate(&domain.Form{Panels: []domain.Panel{
			{ID: "a", Check: &domain.Check{Script: "True", Use: "equal"}},
		}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "both a script and a named validator")
	})

	t.Run("Empty Group", func(t *testing.T) {
		err := validator.Validate(&domain.Form{Panels: []domain.Panel{
			{ID: "a", Groups: []domain.Group{{Name: "topics"}}},
		}})
		require.Error(t, err)
		assert.Equal(t, `panel "a", "topics": group has no members`, err.Error())
	})

	t.Run("Missing Panel ID", func(t *testing.T) {
		err := validator.Validate(&domain.Form{Panels: []domain.Panel{{ID: "a"}, {}}})
		assert.ErrorIs(t, err, domain.ErrMissingPanelID)
		assert.Equal(t, `panel "#1": panel has no id`, err.Error())
	})

	t.Run("Single Problem Message", func(t *testing.T) {
		err := validator.Validate(&domain.Form{Panels: []domain.Panel{{ID: "a", Fields: []domain.Field{{}}}}})
		require.Error(t, err)
		assert.Equal(t, `panel "a": field has no name`, err.Error())
	})
}
