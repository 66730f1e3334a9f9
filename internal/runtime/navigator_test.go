package runtime_test

import (
	"testing"

	"github.com/aretw0/progressforms/internal/runtime"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pending   = domain.IndicatorPending
	active    = domain.IndicatorActive
	completed = domain.IndicatorCompleted
)

// threePanels builds [A, B, C] where A and B each have one required field.
func threePanels() *domain.Form {
	return &domain.Form{
		ID:       "abc",
		Settings: domain.DefaultSettings(),
		Panels: []domain.Panel{
			{ID: "A", Fields: []domain.Field{{Name: "a", Required: true}}},
			{ID: "B", Fields: []domain.Field{{Name: "b", Required: true}}},
			{ID: "C"},
		},
	}
}

type recorder struct {
	next     [][2]string
	prev     [][2]string
	failed   []domain.FieldRef
	lastSeen int
}

func (r *recorder) callbacks() domain.Callbacks {
	return domain.Callbacks{
		OnNext: func(left, entered domain.Panel) {
			r.next = append(r.next, [2]string{left.ID, entered.ID})
		},
		OnPrev: func(left, entered domain.Panel) {
			r.prev = append(r.prev, [2]string{left.ID, entered.ID})
		},
		OnValidationFailed: func(f domain.FieldRef) {
			r.failed = append(r.failed, f)
		},
		OnLastPanelEntered: func() {
			r.lastSeen++
		},
	}
}

func newNav(t *testing.T, form *domain.Form, in ports.FieldInspector, opts ...runtime.NavigatorOption) *runtime.Navigator {
	t.Helper()
	nav, err := runtime.NewNavigator(form, in, opts...)
	require.NoError(t, err)
	return nav
}

func TestNavigator_Initialize(t *testing.T) {
	for n := 1; n <= 5; n++ {
		form := &domain.Form{ID: "f", Settings: domain.DefaultSettings()}
		for i := 0; i < n; i++ {
			form.Panels = append(form.Panels, domain.Panel{})
		}
		nav := newNav(t, form, memory.NewInspector(nil))

		assert.Equal(t, 0, nav.CurrentIndex())
		_, ok := nav.PreviousIndex()
		assert.False(t, ok)

		ind := nav.Indicators()
		require.Len(t, ind, n)
		assert.Equal(t, active, ind[0])
		for _, s := range ind[1:] {
			assert.Equal(t, pending, s)
		}
		assert.InDelta(t, 100.0/float64(n), nav.Layout(), 1e-9)
	}

	t.Run("Empty Form", func(t *testing.T) {
		_, err := runtime.NewNavigator(&domain.Form{}, memory.NewInspector(nil))
		assert.ErrorIs(t, err, domain.ErrNoPanels)
	})

	t.Run("Nil Inspector", func(t *testing.T) {
		_, err := runtime.NewNavigator(threePanels(), nil)
		assert.ErrorIs(t, err, runtime.ErrNilInspector)
	})

	t.Run("Duplicate Panel ID", func(t *testing.T) {
		form := &domain.Form{Panels: []domain.Panel{{ID: "x"}, {ID: "x"}}}
		_, err := runtime.NewNavigator(form, memory.NewInspector(nil))
		assert.ErrorIs(t, err, domain.ErrDuplicatePanelID)
	})

	t.Run("Missing Panel ID", func(t *testing.T) {
		form := &domain.Form{Panels: []domain.Panel{{ID: "a"}, {}}}
		_, err := runtime.NewNavigator(form, memory.NewInspector(nil))
		assert.ErrorIs(t, err, domain.ErrMissingPanelID)
		assert.ErrorContains(t, err, "panel 1")
	})

	t.Run("Validator Index Out Of Range", func(t *testing.T) {
		_, err := runtime.NewNavigator(threePanels(), memory.NewInspector(nil),
			runtime.WithValidator(3, func(domain.Panel, ports.FieldInspector) *domain.FieldRef { return nil }))
		assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	})
}

func TestNavigator_Scenario(t *testing.T) {
	in := memory.NewInspector(nil)
	rec := &recorder{}
	nav := newNav(t, threePanels(), in, runtime.WithCallbacks(rec.callbacks()))

	t.Run("Advance Blocked By Empty Required Field", func(t *testing.T) {
		tr := nav.Advance()
		assert.Equal(t, domain.TransitionBlocked, tr.Kind)
		assert.Equal(t, 0, nav.CurrentIndex())
		assert.False(t, nav.Panels()[0].PreviouslyValidated)
		require.Len(t, rec.failed, 1)
		assert.Equal(t, domain.FieldRef{PanelID: "A", Name: "a"}, rec.failed[0])
		assert.Equal(t, &rec.failed[0], tr.Blame)
	})

	t.Run("Advance After Filling", func(t *testing.T) {
		in.Set("a", "filled")
		tr := nav.Advance()
		assert.Equal(t, domain.TransitionAdvanced, tr.Kind)
		assert.Equal(t, 1, nav.CurrentIndex())
		prev, ok := nav.PreviousIndex()
		assert.True(t, ok)
		assert.Equal(t, 0, prev)
		assert.True(t, nav.Panels()[0].PreviouslyValidated)
		assert.Equal(t, []domain.IndicatorState{completed, active, pending}, nav.Indicators())
		assert.Equal(t, [][2]string{{"A", "B"}}, rec.next)
		assert.Zero(t, rec.lastSeen)
	})

	t.Run("Retreat Keeps Validation", func(t *testing.T) {
		tr := nav.Retreat()
		assert.Equal(t, domain.TransitionRetreated, tr.Kind)
		assert.Equal(t, 0, nav.CurrentIndex())
		_, ok := nav.PreviousIndex()
		assert.False(t, ok)
		assert.Equal(t, []domain.IndicatorState{active, pending, pending}, nav.Indicators())
		assert.True(t, nav.Panels()[0].PreviouslyValidated)
		assert.Equal(t, [][2]string{{"B", "A"}}, rec.prev)
	})

	t.Run("Jump Halts On Unvalidated Panel", func(t *testing.T) {
		rec.failed = nil
		tr, err := nav.JumpTo(2)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionBlocked, tr.Kind)
		assert.Equal(t, 1, nav.CurrentIndex())
		assert.Equal(t, 1, tr.To)
		assert.Equal(t, 2, tr.Target)
		assert.False(t, tr.Reached())
		require.Len(t, rec.failed, 1)
		assert.Equal(t, "b", rec.failed[0].Name)
		assert.Equal(t, "B", rec.failed[0].PanelID)
	})

	t.Run("Last Panel Entered", func(t *testing.T) {
		in.Set("b", "filled")
		tr := nav.Advance()
		assert.Equal(t, domain.TransitionAdvanced, tr.Kind)
		assert.Equal(t, 2, nav.CurrentIndex())
		assert.Equal(t, 1, rec.lastSeen)
		assert.Equal(t, []domain.IndicatorState{completed, completed, active}, nav.Indicators())
	})

	t.Run("Advance At Last Panel Is A Noop", func(t *testing.T) {
		before := len(rec.next)
		tr := nav.Advance()
		assert.Equal(t, domain.TransitionNoop, tr.Kind)
		assert.Equal(t, 2, nav.CurrentIndex())
		assert.Len(t, rec.next, before)
		assert.Empty(t, tr.Events)
	})

	t.Run("Retreat Clears Completed Marks", func(t *testing.T) {
		_, err := nav.JumpTo(0)
		require.NoError(t, err)
		assert.Equal(t, []domain.IndicatorState{active, pending, pending}, nav.Indicators())
		assert.True(t, nav.Panels()[1].PreviouslyValidated)
		assert.Equal(t, [][2]string{{"B", "A"}, {"C", "B"}, {"B", "A"}}, rec.prev)
	})
}

func TestNavigator_RetreatAtFirstIsNoop(t *testing.T) {
	rec := &recorder{}
	nav := newNav(t, threePanels(), memory.NewInspector(nil), runtime.WithCallbacks(rec.callbacks()))

	tr := nav.Retreat()
	assert.Equal(t, domain.TransitionNoop, tr.Kind)
	assert.Equal(t, 0, nav.CurrentIndex())
	assert.Empty(t, rec.prev)
	assert.Equal(t, []domain.IndicatorState{active, pending, pending}, nav.Indicators())
}

func TestNavigator_JumpErrors(t *testing.T) {
	in := memory.NewInspector(map[string]any{"a": "x"})
	nav := newNav(t, threePanels(), in)
	nav.Advance()

	for _, idx := range []int{-1, 3, 100} {
		_, err := nav.JumpTo(idx)
		assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
		var rerr *domain.RangeError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, idx, rerr.Index)
		assert.Equal(t, 3, rerr.Count)
		assert.Equal(t, 1, nav.CurrentIndex())
		assert.Equal(t, []domain.IndicatorState{completed, active, pending}, nav.Indicators())
	}

	t.Run("Unknown ID With Suggestion", func(t *testing.T) {
		form := &domain.Form{Panels: []domain.Panel{{ID: "account"}, {ID: "profile"}}}
		nav := newNav(t, form, memory.NewInspector(nil))
		_, err := nav.JumpToID("profil")
		assert.ErrorIs(t, err, domain.ErrUnknownPanelID)
		var uerr *domain.UnknownPanelError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "profile", uerr.Suggestion)

		_, err = nav.JumpToID("zzzzzzzzzz")
		require.ErrorAs(t, err, &uerr)
		assert.Empty(t, uerr.Suggestion)
		assert.Equal(t, 0, nav.CurrentIndex())
	})

	t.Run("Jump By ID", func(t *testing.T) {
		tr, err := nav.JumpToID("A")
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionRetreated, tr.Kind)
		assert.Equal(t, 0, nav.CurrentIndex())
	})

	t.Run("Jump To Current Is Noop", func(t *testing.T) {
		tr, err := nav.JumpTo(0)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionNoop, tr.Kind)
		assert.Empty(t, tr.Events)
	})
}

func TestNavigator_Click(t *testing.T) {
	t.Run("Forward Click On Unvisited Panel Is Ignored", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.AllowClickForward = true
		nav := newNav(t, threePanels(), memory.NewInspector(map[string]any{"a": "x", "b": "y"}),
			runtime.WithSettings(settings))

		tr, err := nav.Click(1)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionIgnored, tr.Kind)
		assert.Equal(t, 0, nav.CurrentIndex())
	})

	t.Run("Forward Click On Validated Panel", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.AllowClickForward = true
		settings.AllowClickBackward = true
		nav := newNav(t, threePanels(), memory.NewInspector(map[string]any{"a": "x", "b": "y"}),
			runtime.WithSettings(settings))

		nav.Advance()
		nav.Advance()
		_, err := nav.Click(0)
		require.NoError(t, err)
		assert.Equal(t, 0, nav.CurrentIndex())

		tr, err := nav.Click(1)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionAdvanced, tr.Kind)
		assert.Equal(t, 1, nav.CurrentIndex())
	})

	t.Run("Forward Click Without Visited Requirement", func(t *testing.T) {
		settings := domain.Settings{AllowClickForward: true, ValidateRequired: true}
		nav := newNav(t, threePanels(), memory.NewInspector(map[string]any{"a": "x"}),
			runtime.WithSettings(settings))

		tr, err := nav.Click(2)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionBlocked, tr.Kind)
		assert.Equal(t, 1, nav.CurrentIndex())
	})

	t.Run("Backward Click Disabled", func(t *testing.T) {
		nav := newNav(t, threePanels(), memory.NewInspector(map[string]any{"a": "x"}))
		nav.Advance()

		tr, err := nav.Click(0)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionIgnored, tr.Kind)
		assert.Equal(t, 1, nav.CurrentIndex())
	})

	t.Run("Click On Current Is Ignored", func(t *testing.T) {
		settings := domain.Settings{AllowClickForward: true, AllowClickBackward: true}
		nav := newNav(t, threePanels(), memory.NewInspector(nil), runtime.WithSettings(settings))
		tr, err := nav.Click(0)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionIgnored, tr.Kind)
	})

	t.Run("Click Out Of Range", func(t *testing.T) {
		nav := newNav(t, threePanels(), memory.NewInspector(nil))
		_, err := nav.Click(7)
		assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	})
}

func TestNavigator_ValidationFlagIsMonotonic(t *testing.T) {
	in := memory.NewInspector(map[string]any{"a": "x", "b": "y"})
	nav := newNav(t, threePanels(), in)

	nav.Advance()
	nav.Advance()
	in.Set("a", "")
	in.Set("b", "")
	nav.Retreat()
	nav.Retreat()

	panels := nav.Panels()
	assert.True(t, panels[0].PreviouslyValidated)
	assert.True(t, panels[1].PreviouslyValidated)
	assert.False(t, panels[2].PreviouslyValidated)

	// Validation is re-run on every forward step, even through validated panels.
	tr := nav.Advance()
	assert.Equal(t, domain.TransitionBlocked, tr.Kind)
	assert.True(t, nav.Panels()[0].PreviouslyValidated)
}

func TestNavigator_CallbackReentrancy(t *testing.T) {
	in := memory.NewInspector(map[string]any{"a": "x", "b": "y"})
	var nav *runtime.Navigator
	var seenIndex []int
	cb := domain.Callbacks{
		OnNext: func(left, entered domain.Panel) {
			seenIndex = append(seenIndex, nav.CurrentIndex())
		},
		OnLastPanelEntered: func() {
			nav.Retreat()
		},
	}
	nav = newNav(t, threePanels(), in, runtime.WithCallbacks(cb))

	tr, err := nav.JumpTo(2)
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionAdvanced, tr.Kind)
	assert.Equal(t, []int{2, 2}, seenIndex)
	assert.Equal(t, 1, nav.CurrentIndex())

	types := make([]domain.EventType, 0, len(tr.Events))
	for _, e := range tr.Events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []domain.EventType{domain.EventNext, domain.EventNext, domain.EventLastPanelEntered}, types)
}

func TestNavigator_MultipleCallbacksChain(t *testing.T) {
	var order []string
	nav := newNav(t, threePanels(), memory.NewInspector(nil),
		runtime.WithCallbacks(domain.Callbacks{OnValidationFailed: func(domain.FieldRef) { order = append(order, "first") }}),
		runtime.WithCallbacks(domain.Callbacks{OnValidationFailed: func(domain.FieldRef) { order = append(order, "second") }}),
	)
	nav.Advance()
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestNavigator_IndependentInstances(t *testing.T) {
	in1 := memory.NewInspector(map[string]any{"a": "x"})
	in2 := memory.NewInspector(nil)
	form := threePanels()
	nav1 := newNav(t, form, in1)
	nav2 := newNav(t, form, in2)

	nav1.Advance()
	assert.Equal(t, 1, nav1.CurrentIndex())
	assert.Equal(t, 0, nav2.CurrentIndex())
	assert.False(t, form.Panels[0].PreviouslyValidated)
}
