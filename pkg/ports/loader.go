package ports

import (
	"context"

	"github.com/aretw0/progressforms/pkg/domain"
)

// FormLoader defines how a form definition is retrieved.
// This allows the storage layer (Loam, files, memory) to be decoupled.
type FormLoader interface {
	// LoadForm returns the form with its panels in display order.
	LoadForm(ctx context.Context) (*domain.Form, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying definition changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
