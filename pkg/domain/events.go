package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNext             EventType = "next"
	EventPrev             EventType = "prev"
	EventValidationFailed EventType = "validation_failed"
	EventLastPanelEntered EventType = "last_panel_entered"
)

// Event records one observable effect of a navigation request.
// Panels are copies taken at the moment the event happened.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Left      *Panel    `json:"left,omitempty"`
	Entered   *Panel    `json:"entered,omitempty"`
	Blame     *FieldRef `json:"blame,omitempty"`
}

// Callbacks are the lifecycle notifications a host registers on a navigator.
// Any of them may be nil.
type Callbacks struct {
	OnNext             func(left, entered Panel)
	OnPrev             func(left, entered Panel)
	OnValidationFailed func(field FieldRef)
	OnLastPanelEntered func()
}

// Merge returns callbacks that invoke c first and then other.
func (c Callbacks) Merge(other Callbacks) Callbacks {
	return Callbacks{
		OnNext: func(left, entered Panel) {
			if c.OnNext != nil {
				c.OnNext(left, entered)
			}
			if other.OnNext != nil {
				other.OnNext(left, entered)
			}
		},
		OnPrev: func(left, entered Panel) {
			if c.OnPrev != nil {
				c.OnPrev(left, entered)
			}
			if other.OnPrev != nil {
				other.OnPrev(left, entered)
			}
		},
		OnValidationFailed: func(field FieldRef) {
			if c.OnValidationFailed != nil {
				c.OnValidationFailed(field)
			}
			if other.OnValidationFailed != nil {
				other.OnValidationFailed(field)
			}
		},
		OnLastPanelEntered: func() {
			if c.OnLastPanelEntered != nil {
				c.OnLastPanelEntered()
			}
			if other.OnLastPanelEntered != nil {
				other.OnLastPanelEntered()
			}
		},
	}
}

// Dispatch routes an event to the matching callback.
func (c Callbacks) Dispatch(e Event) {
	switch e.Type {
	case EventNext:
		if c.OnNext != nil && e.Left != nil && e.Entered != nil {
			c.OnNext(*e.Left, *e.Entered)
		}
	case EventPrev:
		if c.OnPrev != nil && e.Left != nil && e.Entered != nil {
			c.OnPrev(*e.Left, *e.Entered)
		}
	case EventValidationFailed:
		if c.OnValidationFailed != nil && e.Blame != nil {
			c.OnValidationFailed(*e.Blame)
		}
	case EventLastPanelEntered:
		if c.OnLastPanelEntered != nil {
			c.OnLastPanelEntered()
		}
	}
}
