package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/progressforms"
	"github.com/aretw0/progressforms/internal/presentation/graph"
	"github.com/aretw0/progressforms/internal/validator"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
)

// Check loads the definition at path and builds a navigator for it, which
// validates the structure, resolves named validators and compiles scripts.
// It returns every structural problem, or the single error that stopped it.
func (e *Env) Check(ctx context.Context, path string) (*Definition, []error) {
	def, err := e.LoadDefinition(ctx, path)
	if err != nil {
		return nil, []error{err}
	}
	navOpts, err := e.NavigatorOptions()
	if err != nil {
		return def, []error{err}
	}
	if _, err := progressforms.New(def.Form, memory.NewInspector(nil), navOpts...); err != nil {
		if problems := validator.Problems(err); len(problems) > 0 {
			return def, problems
		}
		return def, []error{err}
	}
	return def, nil
}

// Graph renders def as Mermaid, overlaid with the progress of sessionID when set.
func (e *Env) Graph(ctx context.Context, def *Definition, sessionID string) (string, error) {
	var overlay *graph.Overlay
	if sessionID != "" {
		b, err := e.OpenStore()
		if err != nil {
			return "", err
		}
		state, err := b.Store.Load(ctx, sessionID)
		if err != nil {
			return "", fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
		if state.FormID != "" && state.FormID != def.Form.ID {
			return "", fmt.Errorf("session %s belongs to form %q: %w", sessionID, state.FormID, domain.ErrStateMismatch)
		}
		overlay = graph.OverlayFromState(state)
	}
	return graph.GenerateMermaid(def.Form, overlay), nil
}

// Sessions lists the stored session IDs.
func (e *Env) Sessions(ctx context.Context) ([]string, error) {
	mgr, err := e.SessionManager()
	if err != nil {
		return nil, err
	}
	return mgr.List(ctx)
}

// Session loads one stored snapshot.
func (e *Env) Session(ctx context.Context, id string) (*domain.State, error) {
	mgr, err := e.SessionManager()
	if err != nil {
		return nil, err
	}
	return mgr.Load(ctx, id)
}

// RemoveSessions deletes every listed session, reporting each outcome to report.
func (e *Env) RemoveSessions(ctx context.Context, ids []string, report func(id string, err error)) error {
	mgr, err := e.SessionManager()
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		err := mgr.Delete(ctx, id)
		if report != nil {
			report(id, err)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
