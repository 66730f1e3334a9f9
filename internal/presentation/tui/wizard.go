package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/progressforms"
	"github.com/aretw0/progressforms/internal/messages"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
)

const defaultWidth = 80

// item is one focusable row of the current panel.
type item struct {
	name     string
	label    string
	required bool
	toggle   bool
}

// Wizard is the bubbletea model of an interactive form session.
type Wizard struct {
	nav       *progressforms.Navigator
	inspector *memory.Inspector
	loc       *messages.Localizer
	render    func(string) (string, error)
	onMove    func(domain.Transition) error

	focus  int
	width  int
	alert  string
	detail string
	status string
	done   bool
	err    error
}

// WizardOption configures the Wizard.
type WizardOption func(*Wizard)

// WithMarkdown renders panel descriptions through r.
func WithMarkdown(r func(string) (string, error)) WizardOption {
	return func(w *Wizard) {
		w.render = r
	}
}

// WithLocalizer sets the language of messages.
func WithLocalizer(l *messages.Localizer) WizardOption {
	return func(w *Wizard) {
		w.loc = l
	}
}

// OnMove is called after every transition that changed the current panel,
// e.g. to persist a snapshot. An error ends the program.
func OnMove(fn func(domain.Transition) error) WizardOption {
	return func(w *Wizard) {
		w.onMove = fn
	}
}

// NewWizard builds the model around an existing navigator and the inspector it reads.
func NewWizard(nav *progressforms.Navigator, inspector *memory.Inspector, opts ...WizardOption) *Wizard {
	w := &Wizard{
		nav:       nav,
		inspector: inspector,
		width:     defaultWidth,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.loc == nil {
		w.loc = messages.MustNew().Localizer("en")
	}
	return w
}

// Run starts a bubbletea program for w and blocks until the user quits.
func Run(ctx context.Context, w *Wizard, opts ...tea.ProgramOption) error {
	opts = append(opts, tea.WithContext(ctx))
	if _, err := tea.NewProgram(w, opts...).Run(); err != nil {
		return err
	}
	return w.err
}

// Completed reports whether the user confirmed the last panel.
func (w *Wizard) Completed() bool {
	return w.done
}

func (w *Wizard) Init() tea.Cmd {
	return nil
}

func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		return w, nil
	case tea.KeyMsg:
		return w.handleKey(msg)
	}
	return w, nil
}

func (w *Wizard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := w.items()
	switch key := msg.String(); key {
	case "ctrl+c", "esc":
		return w, tea.Quit
	case "tab", "down":
		if len(items) > 0 {
			w.focus = (w.focus + 1) % len(items)
		}
	case "shift+tab", "up":
		if len(items) > 0 {
			w.focus = (w.focus - 1 + len(items)) % len(items)
		}
	case "enter", "ctrl+n", "pgdown":
		if w.nav.CurrentIndex() == len(w.nav.Panels())-1 && key == "enter" {
			if ref := w.nav.Check(); ref != nil {
				w.blocked(*ref)
				return w, nil
			}
			w.done = true
			w.alert, w.detail = "", ""
			w.status = w.loc.Text(messages.FormCompleted, nil)
			return w, tea.Quit
		}
		return w.apply(w.nav.Advance())
	case "ctrl+p", "pgup":
		return w.apply(w.nav.Retreat())
	case "f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9":
		tr, err := w.nav.Click(int(key[1] - '1'))
		if err != nil {
			w.alert, w.detail = err.Error(), ""
			return w, nil
		}
		return w.apply(tr)
	case " ":
		if len(items) > 0 && items[w.focus].toggle {
			it := items[w.focus]
			on := !truthy(w.inspector.CurrentValue(domain.FieldRef{Name: it.name}))
			w.inspector.Check(it.name, on)
			if on {
				w.inspector.Set(it.name, true)
			}
			return w, nil
		}
		w.typeRunes([]rune{' '}, items)
	case "backspace":
		if len(items) > 0 && !items[w.focus].toggle {
			name := items[w.focus].name
			r := []rune(textValue(w.inspector.CurrentValue(domain.FieldRef{Name: name})))
			if len(r) > 0 {
				w.inspector.Set(name, string(r[:len(r)-1]))
			}
		}
	default:
		if msg.Type == tea.KeyRunes {
			w.typeRunes(msg.Runes, items)
		}
	}
	return w, nil
}

func (w *Wizard) typeRunes(runes []rune, items []item) {
	if len(items) == 0 || items[w.focus].toggle {
		return
	}
	name := items[w.focus].name
	w.inspector.Set(name, textValue(w.inspector.CurrentValue(domain.FieldRef{Name: name}))+string(runes))
}

func (w *Wizard) apply(tr domain.Transition) (tea.Model, tea.Cmd) {
	w.alert, w.detail, w.status = "", "", ""
	if tr.Blame != nil {
		w.blocked(*tr.Blame)
	}
	if tr.Moved() {
		w.focus = 0
		if w.onMove != nil {
			if err := w.onMove(tr); err != nil {
				w.err = err
				return w, tea.Quit
			}
		}
	}
	return w, nil
}

func (w *Wizard) blocked(ref domain.FieldRef) {
	w.alert = w.loc.Text(messages.RequiredFieldsMissing, nil)
	w.detail = w.loc.Blame(w.nav.Current(), ref)
	for i, it := range w.items() {
		if it.name == ref.Name {
			w.focus = i
			break
		}
	}
}

func (w *Wizard) items() []item {
	p := w.nav.Current()
	var out []item
	for _, f := range p.Fields {
		if !w.inspector.IsVisible(domain.FieldRef{Name: f.Name}) {
			continue
		}
		label := f.Label
		if label == "" {
			label = f.Name
		}
		out = append(out, item{name: f.Name, label: label, required: f.Required, toggle: f.Kind == domain.FieldCheckbox})
	}
	for _, g := range p.Groups {
		for _, m := range g.Members {
			if _, declared := p.Field(m); declared {
				continue
			}
			out = append(out, item{name: m, label: m, toggle: true})
		}
	}
	if w.focus >= len(out) {
		w.focus = 0
	}
	return out
}

func (w *Wizard) View() string {
	var b strings.Builder
	form := w.nav.Form()
	panel := w.nav.Current()

	if form.Title != "" {
		b.WriteString(titleStyle.Render(form.Title) + "\n\n")
	}
	b.WriteString(ProgressBar(w.nav.Panels(), w.nav.Indicators(), w.nav.Layout(), w.width) + "\n")
	b.WriteString(hintStyle.Render(w.loc.ProgressLine(w.nav.CurrentIndex(), len(w.nav.Panels()))) + "\n\n")
	b.WriteString(titleStyle.Render(panel.Label()) + "\n")

	if panel.Description != "" {
		desc := panel.Description
		if w.render != nil {
			if out, err := w.render(desc); err == nil {
				desc = strings.TrimSpace(out)
			}
		}
		b.WriteString(desc + "\n")
	}
	b.WriteString("\n")

	for i, it := range w.items() {
		cursor := "  "
		style := labelStyle
		if i == w.focus {
			cursor = focusStyle.Render("> ")
			style = focusStyle
		}
		label := style.Render(it.label)
		if it.required {
			label += requiredStyle.Render(" *")
		}
		value := w.inspector.CurrentValue(domain.FieldRef{Name: it.name})
		if it.toggle {
			box := "[ ]"
			if truthy(value) {
				box = "[x]"
			}
			fmt.Fprintf(&b, "%s%s %s\n", cursor, box, label)
			continue
		}
		fmt.Fprintf(&b, "%s%s: %s\n", cursor, label, inputStyle.Render(textValue(value)+" "))
	}

	if w.alert != "" {
		b.WriteString("\n" + errorStyle.Render(w.alert) + "\n")
		if w.detail != "" {
			b.WriteString(errorStyle.Render(w.detail) + "\n")
		}
	}
	if w.status != "" {
		b.WriteString("\n" + focusStyle.Render(w.status) + "\n")
	}

	next := w.loc.Text(messages.ButtonNext, nil)
	if w.nav.CurrentIndex() == len(w.nav.Panels())-1 {
		next = w.loc.Text(messages.LastPanel, nil)
	}
	b.WriteString("\n" + hintStyle.Render(fmt.Sprintf("enter: %s  ctrl+p: %s  tab: move  space: toggle  esc: quit",
		next, w.loc.Text(messages.ButtonPrevious, nil))) + "\n")
	return b.String()
}

func textValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "true" || x == "on"
	}
	return false
}
