package dsl

import (
	"fmt"

	"github.com/aretw0/progressforms/internal/validator"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
)

// Builder manages the form construction. Panels keep the order in which they were added.
type Builder struct {
	form   domain.Form
	panels []*PanelBuilder
}

// New creates a form builder with default settings.
func New(id string) *Builder {
	return &Builder{
		form: domain.Form{ID: id, Settings: domain.DefaultSettings()},
	}
}

// Title sets the form title.
func (b *Builder) Title(title string) *Builder {
	b.form.Title = title
	return b
}

// ClickForward allows clicks on later indicators. When visitedOnly is set,
// only panels already passed through are reachable that way.
func (b *Builder) ClickForward(visitedOnly bool) *Builder {
	b.form.Settings.AllowClickForward = true
	b.form.Settings.RequireVisitedForForwardClick = visitedOnly
	return b
}

// ClickBackward allows clicks on earlier indicators.
func (b *Builder) ClickBackward() *Builder {
	b.form.Settings.AllowClickBackward = true
	return b
}

// SkipRequired disables the required-field checks of the gate.
func (b *Builder) SkipRequired() *Builder {
	b.form.Settings.ValidateRequired = false
	return b
}

// Panel appends a panel. If the panel already exists, it returns the existing builder.
func (b *Builder) Panel(id string) *PanelBuilder {
	for _, pb := range b.panels {
		if pb.panel.ID == id {
			return pb
		}
	}
	pb := &PanelBuilder{panel: domain.Panel{ID: id}, builder: b}
	b.panels = append(b.panels, pb)
	return pb
}

// Form returns the built form after checking its integrity.
func (b *Builder) Form() (*domain.Form, error) {
	form := b.form
	form.Panels = make([]domain.Panel, len(b.panels))
	for i, pb := range b.panels {
		p := pb.panel
		p.Index = i
		form.Panels[i] = p
	}
	if err := validator.Validate(&form); err != nil {
		return nil, fmt.Errorf("failed to build form %s: %w", form.ID, err)
	}
	return &form, nil
}

// Build compiles the form into a MemoryLoader.
func (b *Builder) Build() (*memory.Loader, error) {
	form, err := b.Form()
	if err != nil {
		return nil, err
	}
	return memory.NewLoader(*form)
}
