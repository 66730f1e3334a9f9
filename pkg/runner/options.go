package runner

import (
	"log/slog"

	"github.com/aretw0/progressforms"
	"github.com/aretw0/progressforms/internal/messages"
	"github.com/aretw0/progressforms/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the StateStore for persistence.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithSessionID sets the session ID for persistence context.
// This is required if WithStore is used.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLocalizer sets the language of host messages.
func WithLocalizer(l *messages.Localizer) Option {
	return func(r *Runner) {
		r.Localizer = l
	}
}

// WithValues seeds the field values, e.g. from a previous run.
func WithValues(values map[string]any) Option {
	return func(r *Runner) {
		for k, v := range values {
			r.inspector.Set(k, v)
		}
	}
}

// WithNavigatorOptions passes options to the underlying navigator.
func WithNavigatorOptions(opts ...progressforms.Option) Option {
	return func(r *Runner) {
		r.navOpts = append(r.navOpts, opts...)
	}
}

// WithMaxInputSize bounds command lines and field values, in bytes.
func WithMaxInputSize(n int) Option {
	return func(r *Runner) {
		r.sanitizer = NewSanitizer(n)
	}
}
