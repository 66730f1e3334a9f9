package tui

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/progressforms"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
)

func newsletterForm() *domain.Form {
	return &domain.Form{
		ID:       "newsletter",
		Title:    "Newsletter",
		Settings: domain.DefaultSettings(),
		Panels: []domain.Panel{
			{ID: "who", Title: "Who", Fields: []domain.Field{{Name: "name", Label: "Name", Required: true}}},
			{ID: "topics", Title: "Topics", Groups: []domain.Group{{Name: "topics", Min: 1, Members: []string{"go", "rust"}}}},
		},
	}
}

func newWizard(t *testing.T, opts ...WizardOption) (*Wizard, *progressforms.Navigator) {
	t.Helper()
	in := memory.NewInspector(nil)
	nav, err := progressforms.New(newsletterForm(), in)
	require.NoError(t, err)
	return NewWizard(nav, in, opts...), nav
}

func press(w *Wizard, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = w.Update(k)
	}
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWizard_Flow(t *testing.T) {
	var moves []domain.Transition
	w, nav := newWizard(t, OnMove(func(tr domain.Transition) error {
		moves = append(moves, tr)
		return nil
	}))

	t.Run("enter on an empty required field shows the alert", func(t *testing.T) {
		press(w, tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, 0, nav.CurrentIndex())
		view := w.View()
		assert.Contains(t, view, "Please fill out all required fields!")
		assert.Contains(t, view, "Name is required")
	})

	t.Run("typing fills the focused field", func(t *testing.T) {
		press(w, runes("Anx"), tea.KeyMsg{Type: tea.KeyBackspace}, runes("a"))
		assert.Contains(t, w.View(), "Ana")
		press(w, tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, 1, nav.CurrentIndex())
		require.Len(t, moves, 1)
		assert.Equal(t, domain.TransitionAdvanced, moves[0].Kind)
	})

	t.Run("finishing needs a group member", func(t *testing.T) {
		cmd := press(w, tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.False(t, w.Completed())
		assert.Contains(t, w.View(), "Select at least 1 option in topics")

		press(w, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeySpace})
		assert.Contains(t, w.View(), "[x]")
		cmd = press(w, tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		assert.True(t, w.Completed())
		assert.Contains(t, w.View(), "All steps completed")
	})

	t.Run("ctrl+p goes back", func(t *testing.T) {
		press(w, tea.KeyMsg{Type: tea.KeyCtrlP})
		assert.Equal(t, 0, nav.CurrentIndex())
		assert.Len(t, moves, 2)
	})
}

func TestWizard_ClickIgnoredByDefault(t *testing.T) {
	w, nav := newWizard(t)
	press(w, tea.KeyMsg{Type: tea.KeyF2})
	assert.Equal(t, 0, nav.CurrentIndex())
}

func TestProgressBar(t *testing.T) {
	panels := newsletterForm().Panels
	bar := ProgressBar(panels, []domain.IndicatorState{domain.IndicatorCompleted, domain.IndicatorActive}, 50, 40)
	assert.Contains(t, bar, "Who")
	assert.Contains(t, bar, "Topics")
	assert.Empty(t, ProgressBar(nil, nil, 0, 40))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
	assert.Equal(t, "", truncate("abcd", 0))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "Signup")
	assert.Contains(t, buf.String(), "Signup")
	assert.Contains(t, buf.String(), "==========")
}
