package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/progressforms"
	"github.com/aretw0/progressforms/internal/logging"
	"github.com/aretw0/progressforms/internal/messages"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
)

// Runner handles the command loop of one form session using the provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Store is the persistence adapter. If nil, sessions are ephemeral.
	Store     ports.StateStore
	SessionID string

	Localizer *messages.Localizer

	form      *domain.Form
	inspector *memory.Inspector
	sanitizer *Sanitizer
	navOpts   []progressforms.Option
	nav       *progressforms.Navigator
	metadata  map[string]string
}

// New builds a runner over form. The navigator is created eagerly so
// definition errors surface before any IO happens.
func New(form *domain.Form, opts ...Option) (*Runner, error) {
	r := &Runner{
		Logger:    logging.NewNop(),
		form:      form,
		inspector: memory.NewInspector(nil),
		sanitizer: NewSanitizer(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if h, ok := r.Handler.(interface{ useSanitizer(*Sanitizer) }); ok {
		h.useSanitizer(r.sanitizer)
	}
	if r.Localizer == nil {
		r.Localizer = messages.MustNew().Localizer("en")
	}

	navOpts := append([]progressforms.Option{progressforms.WithLogger(r.Logger)}, r.navOpts...)
	nav, err := progressforms.New(form, r.inspector, navOpts...)
	if err != nil {
		return nil, err
	}
	r.nav = nav
	return r, nil
}

// Navigator exposes the navigator driven by the runner.
func (r *Runner) Navigator() *progressforms.Navigator {
	return r.nav
}

// Values returns a copy of the field values entered so far.
func (r *Runner) Values() map[string]any {
	return r.inspector.Values()
}

// Run executes the command loop until the user quits, input ends or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.resume(ctx); err != nil {
		return err
	}
	if err := r.Handler.Render(ctx, r.view(nil)); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	for {
		cmd, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("input error: %w", err)
		}
		if cmd.Op == OpQuit {
			return nil
		}

		tr, err := r.Apply(cmd)
		if err != nil {
			r.Logger.Debug("command rejected", "op", cmd.Op, "target", cmd.Target, "err", err)
			if err := r.Handler.SystemOutput(ctx, r.describe(err)); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		if tr != nil && tr.Moved() {
			if err := r.save(ctx); err != nil {
				return fmt.Errorf("critical persistence error: %w", err)
			}
		}
		if err := r.Handler.Render(ctx, r.view(tr)); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

// Apply executes one command. Field edits return a nil transition.
func (r *Runner) Apply(cmd Command) (*domain.Transition, error) {
	var (
		tr  domain.Transition
		err error
	)
	switch cmd.Op {
	case OpNext:
		tr = r.nav.Advance()
	case OpBack:
		tr = r.nav.Retreat()
	case OpGoto:
		if idx, ok := cmd.index(); ok {
			tr, err = r.nav.JumpTo(idx)
		} else {
			tr, err = r.nav.JumpToID(cmd.Target)
		}
	case OpClick:
		idx, ok := cmd.index()
		if !ok {
			return nil, fmt.Errorf("click expects a panel number, got %q", cmd.Target)
		}
		tr, err = r.nav.Click(idx)
	case OpSet:
		value := cmd.Value
		if s, ok := value.(string); ok {
			field, found := r.form.Field(cmd.Target)
			if !found {
				field = domain.Field{Name: cmd.Target}
			}
			clean, err := r.sanitizer.Value(field, s)
			if err != nil {
				return nil, err
			}
			value = clean
		}
		r.inspector.Set(cmd.Target, value)
		return nil, nil
	case OpUnset:
		r.inspector.Set(cmd.Target, nil)
		return nil, nil
	case OpCheck, OpUncheck:
		r.inspector.Check(cmd.Target, cmd.Op == OpCheck)
		if cmd.Op == OpCheck {
			r.inspector.Set(cmd.Target, true)
		}
		return nil, nil
	case OpHide:
		r.inspector.Hide(cmd.Target)
		return nil, nil
	case OpShow:
		r.inspector.Show(cmd.Target)
		return nil, nil
	case OpStatus:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown command %q", cmd.Op)
	}
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("transition", "kind", tr.Kind, "from", tr.From, "to", tr.To)
	return &tr, nil
}

func (r *Runner) resume(ctx context.Context) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	state, err := r.Store.Load(ctx, r.SessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Save immediately to reserve the ID
		return r.save(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
	}
	if err := r.nav.Restore(state); err != nil {
		return fmt.Errorf("failed to resume session %s: %w", r.SessionID, err)
	}
	r.metadata = state.Metadata
	r.Logger.Debug("session resumed", "session_id", r.SessionID, "index", state.CurrentIndex)
	return nil
}

func (r *Runner) save(ctx context.Context) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	state := r.nav.Snapshot(r.SessionID)
	state.Metadata = r.metadata
	if err := r.Store.Save(ctx, r.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", r.SessionID, "index", state.CurrentIndex)
	return nil
}

func (r *Runner) view(tr *domain.Transition) View {
	total := len(r.nav.Panels())
	v := View{
		SessionID:  r.SessionID,
		Index:      r.nav.CurrentIndex(),
		Total:      total,
		Progress:   r.Localizer.ProgressLine(r.nav.CurrentIndex(), total),
		Panel:      r.nav.Current(),
		Indicators: r.nav.Indicators(),
		Values:     r.inspector.Values(),
		Last:       r.nav.CurrentIndex() == total-1,
		Transition: tr,
	}
	if tr != nil && tr.Blame != nil {
		v.Message = r.Localizer.Text(messages.RequiredFieldsMissing, nil)
		v.Detail = r.Localizer.Blame(r.nav.Current(), *tr.Blame)
	}
	return v
}

func (r *Runner) describe(err error) string {
	var rangeErr *domain.RangeError
	var unknown *domain.UnknownPanelError
	var input *InputError
	switch {
	case errors.As(err, &input):
		return r.describeInput(input)
	case errors.As(err, &rangeErr):
		return r.Localizer.Text(messages.PanelOutOfRange, map[string]any{"Index": rangeErr.Index + 1})
	case errors.As(err, &unknown):
		msg := r.Localizer.Text(messages.UnknownPanel, map[string]any{"ID": unknown.ID})
		if unknown.Suggestion != "" {
			msg += fmt.Sprintf(" (%s?)", unknown.Suggestion)
		}
		return msg
	}
	return err.Error()
}

func (r *Runner) describeInput(err *InputError) string {
	label := err.Field
	if f, ok := r.form.Field(err.Field); ok && f.Label != "" {
		label = f.Label
	}
	switch {
	case errors.Is(err, ErrInputTooLarge):
		return r.Localizer.Text(messages.ValueTooLong, map[string]any{"Field": label, "Limit": err.Limit})
	case errors.Is(err, ErrNotANumber):
		return r.Localizer.Text(messages.ValueNotANumber, map[string]any{"Field": label})
	}
	return r.Localizer.Text(messages.ValueInvalid, map[string]any{"Field": label})
}
