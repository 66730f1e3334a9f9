package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/aretw0/progressforms"
	"github.com/aretw0/progressforms/internal/messages"
	"github.com/aretw0/progressforms/internal/presentation/tui"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
	"github.com/aretw0/progressforms/pkg/runner"
)

// Mode selects the front end of a run.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeTUI  Mode = "tui"
)

// RunOptions configures one interactive session.
type RunOptions struct {
	Mode Mode
	// SessionID enables persistence: the session is resumed when it exists.
	SessionID string
	// Values seeds the field values.
	Values map[string]any
	Width  int

	Stdin  io.Reader
	Stdout io.Writer
}

func (o *RunOptions) defaults() {
	if o.Mode == "" {
		o.Mode = ModeText
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Width <= 0 {
		o.Width = 80
	}
}

// Run drives def through the selected front end until the user quits.
func (e *Env) Run(ctx context.Context, def *Definition, opts RunOptions) error {
	opts.defaults()

	navOpts, err := e.NavigatorOptions()
	if err != nil {
		return err
	}

	var store ports.StateStore
	if opts.SessionID != "" {
		b, err := e.OpenStore()
		if err != nil {
			return err
		}
		store = b.Store
	}

	switch opts.Mode {
	case ModeTUI:
		return e.runTUI(ctx, def.Form, store, navOpts, opts)
	case ModeJSON:
		return e.runLoop(ctx, def.Form, store, navOpts, opts, runner.NewJSONHandler(opts.Stdin, opts.Stdout))
	case ModeText:
		var hopts []runner.TextHandlerOption
		if isTerminal(opts.Stdout) {
			tui.PrintBanner(opts.Stdout, def.Form.Label())
			if render, err := tui.NewRenderer(opts.Width); err == nil {
				hopts = append(hopts, runner.WithTextHandlerRenderer(render))
			} else {
				e.Logger.Warn("markdown renderer unavailable", "err", err)
			}
		}
		return e.runLoop(ctx, def.Form, store, navOpts, opts, runner.NewTextHandler(opts.Stdin, opts.Stdout, hopts...))
	}
	return fmt.Errorf("unknown run mode %q", opts.Mode)
}

func (e *Env) runLoop(ctx context.Context, form *domain.Form, store ports.StateStore, navOpts []progressforms.Option, opts RunOptions, handler runner.IOHandler) error {
	ropts := []runner.Option{
		runner.WithInputHandler(handler),
		runner.WithLogger(e.Logger),
		runner.WithLocalizer(e.Localizer()),
		runner.WithValues(opts.Values),
		runner.WithMaxInputSize(e.Config.Input.MaxSize),
		runner.WithNavigatorOptions(navOpts...),
	}
	if store != nil {
		ropts = append(ropts, runner.WithStore(store), runner.WithSessionID(opts.SessionID))
	}
	r, err := runner.New(form, ropts...)
	if err != nil {
		return err
	}
	return r.Run(ctx)
}

func (e *Env) runTUI(ctx context.Context, form *domain.Form, store ports.StateStore, navOpts []progressforms.Option, opts RunOptions) error {
	inspector := memory.NewInspector(opts.Values)
	nav, err := progressforms.New(form, inspector, navOpts...)
	if err != nil {
		return err
	}

	loc := e.Localizer()
	wopts := []tui.WizardOption{tui.WithLocalizer(loc)}
	if render, err := tui.NewRenderer(opts.Width); err == nil {
		wopts = append(wopts, tui.WithMarkdown(render))
	}

	if store != nil {
		state, err := store.Load(ctx, opts.SessionID)
		switch {
		case err == nil:
			if err := nav.Restore(state); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrSessionNotFound):
		default:
			return err
		}
		wopts = append(wopts, tui.OnMove(func(domain.Transition) error {
			return store.Save(ctx, opts.SessionID, nav.Snapshot(opts.SessionID))
		}))
	}

	w := tui.NewWizard(nav, inspector, wopts...)
	if err := tui.Run(ctx, w, tea.WithInput(opts.Stdin), tea.WithOutput(opts.Stdout)); err != nil {
		return err
	}
	if w.Completed() {
		fmt.Fprintln(opts.Stdout, loc.Text(messages.FormCompleted, nil))
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
