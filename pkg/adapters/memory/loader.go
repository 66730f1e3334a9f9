package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/progressforms/pkg/domain"
)

// Loader implements ports.FormLoader over a form held in memory.
type Loader struct {
	raw []byte
}

// NewLoader creates a Loader serving a copy of form.
func NewLoader(form domain.Form) (*Loader, error) {
	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form %s: %w", form.ID, err)
	}
	return &Loader{raw: raw}, nil
}

// NewFromPanels builds a form with default settings around the given panels.
// This improves DX for tests.
func NewFromPanels(id string, panels ...domain.Panel) (*Loader, error) {
	for i, p := range panels {
		if p.ID == "" {
			return nil, fmt.Errorf("panel %d missing ID", i)
		}
	}
	return NewLoader(domain.Form{ID: id, Settings: domain.DefaultSettings(), Panels: panels})
}

// LoadForm returns a fresh copy of the form on every call.
func (l *Loader) LoadForm(ctx context.Context) (*domain.Form, error) {
	var form domain.Form
	if err := json.Unmarshal(l.raw, &form); err != nil {
		return nil, fmt.Errorf("failed to decode form: %w", err)
	}
	for i := range form.Panels {
		form.Panels[i].Index = i
		form.Panels[i].PreviouslyValidated = false
	}
	return &form, nil
}
