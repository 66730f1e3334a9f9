package progressforms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/progressforms/internal/runtime"
	"github.com/aretw0/progressforms/internal/validator"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
	"github.com/aretw0/progressforms/pkg/registry"
	"github.com/aretw0/progressforms/pkg/script"
)

// Navigator is the high-level entry point for the progressforms library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Navigator struct {
	runtime *runtime.Navigator
	form    domain.Form
	logger  *slog.Logger
}

type config struct {
	settings       *domain.Settings
	validators     map[int]ports.Validator
	validatorsByID map[string]ports.Validator
	callbacks      []domain.Callbacks
	emptyPredicate runtime.EmptyPredicate
	logger         *slog.Logger
	clock          func() time.Time
	disableScripts bool
	registry       *registry.Registry
}

// Option defines a functional option for configuring the Navigator.
type Option func(*config)

// WithSettings overrides the settings declared on the form.
func WithSettings(s domain.Settings) Option {
	return func(c *config) {
		c.settings = &s
	}
}

// WithValidator registers a custom validator for the panel at index.
func WithValidator(index int, v ports.Validator) Option {
	return func(c *config) {
		c.validators[index] = v
	}
}

// WithPanelValidator registers a custom validator for the panel with the given ID.
func WithPanelValidator(panelID string, v ports.Validator) Option {
	return func(c *config) {
		c.validatorsByID[panelID] = v
	}
}

// WithCallbacks registers lifecycle callbacks. Multiple registrations are chained.
func WithCallbacks(cb domain.Callbacks) Option {
	return func(c *config) {
		c.callbacks = append(c.callbacks, cb)
	}
}

// WithLogger sets a custom structured logger for the navigator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithEmptyPredicate replaces the default test deciding whether a required field is filled.
func WithEmptyPredicate(p func(v any) bool) Option {
	return func(c *config) {
		c.emptyPredicate = p
	}
}

// WithClock sets the time source for events and snapshots.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.clock = now
	}
}

// WithoutScripts ignores the Starlark checks declared on panels.
func WithoutScripts() Option {
	return func(c *config) {
		c.disableScripts = true
	}
}

// WithRegistry resolves `use:` checks against r instead of the builtin registry.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// New validates form and creates a navigator positioned on its first panel.
// Panel checks declared in the definition are resolved (named validators) or
// compiled (scripts) unless a validator was registered explicitly for that panel.
func New(form *domain.Form, inspector ports.FieldInspector, opts ...Option) (*Navigator, error) {
	cfg := &config{
		validators:     make(map[int]ports.Validator),
		validatorsByID: make(map[string]ports.Validator),
		registry:       registry.Builtin(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if form == nil {
		return nil, domain.ErrNoPanels
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if form.ID != "" {
		logger = logger.With("form", form.ID)
	}

	for id, v := range cfg.validatorsByID {
		idx := form.PanelIndex(id)
		if idx < 0 {
			return nil, &domain.UnknownPanelError{ID: id}
		}
		cfg.validators[idx] = v
	}

	indexes := make([]int, 0, len(cfg.validators))
	for idx := range cfg.validators {
		indexes = append(indexes, idx)
	}
	if err := validator.Validate(form, indexes...); err != nil {
		return nil, fmt.Errorf("invalid form definition: %w", err)
	}

	runtimeOpts := []runtime.NavigatorOption{
		runtime.WithLogger(logger),
		runtime.WithEmptyPredicate(cfg.emptyPredicate),
		runtime.WithClock(cfg.clock),
	}
	if cfg.settings != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithSettings(*cfg.settings))
	}

	named, err := cfg.registry.ResolveForm(form)
	if err != nil {
		return nil, err
	}
	for idx, v := range named {
		if _, explicit := cfg.validators[idx]; !explicit {
			runtimeOpts = append(runtimeOpts, runtime.WithValidator(idx, v))
		}
	}

	if !cfg.disableScripts {
		compiled, err := script.New(script.WithLogger(logger)).CompileForm(form)
		if err != nil {
			return nil, err
		}
		for idx, v := range compiled {
			if _, explicit := cfg.validators[idx]; !explicit {
				runtimeOpts = append(runtimeOpts, runtime.WithValidator(idx, v))
			}
		}
	}
	for idx, v := range cfg.validators {
		runtimeOpts = append(runtimeOpts, runtime.WithValidator(idx, v))
	}
	for _, cb := range cfg.callbacks {
		runtimeOpts = append(runtimeOpts, runtime.WithCallbacks(cb))
	}

	nav, err := runtime.NewNavigator(form, inspector, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	return &Navigator{runtime: nav, form: *form, logger: logger}, nil
}

// Load reads the form through loader and creates a navigator for it.
func Load(ctx context.Context, loader ports.FormLoader, inspector ports.FieldInspector, opts ...Option) (*Navigator, error) {
	form, err := loader.LoadForm(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	return New(form, inspector, opts...)
}

// Advance validates the current panel and moves to the next one.
// At the last panel it does nothing.
func (n *Navigator) Advance() domain.Transition {
	return n.runtime.Advance()
}

// Retreat moves to the previous panel. At the first panel it does nothing.
func (n *Navigator) Retreat() domain.Transition {
	return n.runtime.Retreat()
}

// JumpTo moves towards index one panel at a time, stopping at the first panel that fails validation.
func (n *Navigator) JumpTo(index int) (domain.Transition, error) {
	return n.runtime.JumpTo(index)
}

// JumpToID behaves as JumpTo for the panel with the given ID.
func (n *Navigator) JumpToID(id string) (domain.Transition, error) {
	return n.runtime.JumpToID(id)
}

// Click handles a click on the progress indicator at index.
func (n *Navigator) Click(index int) (domain.Transition, error) {
	return n.runtime.Click(index)
}

// Check validates the current panel without moving.
func (n *Navigator) Check() *domain.FieldRef {
	return n.runtime.Check()
}

func (n *Navigator) CurrentIndex() int                   { return n.runtime.CurrentIndex() }
func (n *Navigator) PreviousIndex() (int, bool)          { return n.runtime.PreviousIndex() }
func (n *Navigator) Indicators() []domain.IndicatorState { return n.runtime.Indicators() }
func (n *Navigator) Panels() []domain.Panel              { return n.runtime.Panels() }
func (n *Navigator) Current() domain.Panel               { return n.runtime.Current() }

// Layout returns the width share, in percent, of each progress indicator.
func (n *Navigator) Layout() float64 {
	return n.runtime.Layout()
}

// Settings returns the navigation settings in effect.
func (n *Navigator) Settings() domain.Settings {
	return n.runtime.Settings()
}

// Form returns the definition the navigator was built from.
func (n *Navigator) Form() domain.Form {
	return n.form
}

// Snapshot captures the navigation state for a store.
func (n *Navigator) Snapshot(sessionID string) *domain.State {
	return n.runtime.Snapshot(sessionID)
}

// Restore resumes from a snapshot taken on the same form.
func (n *Navigator) Restore(state *domain.State) error {
	return n.runtime.Restore(state)
}
