package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
)

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithSettings overrides the settings declared on the form.
func WithSettings(s domain.Settings) NavigatorOption {
	return func(n *Navigator) {
		n.settings = s
	}
}

// WithValidator registers a custom validator for the panel at index.
// A later registration for the same index replaces the earlier one.
func WithValidator(index int, v ports.Validator) NavigatorOption {
	return func(n *Navigator) {
		if v == nil {
			delete(n.validators, index)
			return
		}
		n.validators[index] = v
	}
}

// WithCallbacks registers lifecycle callbacks. Multiple registrations are chained in order.
func WithCallbacks(cb domain.Callbacks) NavigatorOption {
	return func(n *Navigator) {
		n.callbacks = n.callbacks.Merge(cb)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithEmptyPredicate replaces the default "is this value empty" test used for required fields.
func WithEmptyPredicate(p EmptyPredicate) NavigatorOption {
	return func(n *Navigator) {
		if p != nil {
			n.isEmpty = p
		}
	}
}

// WithClock sets the time source used to stamp events and snapshots.
func WithClock(now func() time.Time) NavigatorOption {
	return func(n *Navigator) {
		if now != nil {
			n.now = now
		}
	}
}
