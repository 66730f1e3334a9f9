package domain

import (
	"maps"
	"slices"
	"time"
)

// State is the persistable snapshot of a navigator.
// It holds only navigation state: field values belong to the host and are never part of it.
type State struct {
	// SessionID identifies the navigator instance the snapshot belongs to.
	SessionID string `json:"session_id"`

	// FormID identifies the form definition the snapshot was taken from.
	FormID string `json:"form_id"`

	// CurrentIndex is the active panel.
	CurrentIndex int `json:"current_index"`

	// PreviousIndex is the panel before the current one, or nil at the first panel.
	PreviousIndex *int `json:"previous_index,omitempty"`

	// Validated holds the PreviouslyValidated flag of every panel.
	Validated []bool `json:"validated"`

	// Indicators holds the progress indicator of every panel.
	Indicators []IndicatorState `json:"indicators"`

	// Metadata is free-form host data (e.g. client address, locale).
	Metadata map[string]string `json:"metadata,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates the initial snapshot of a form with n panels: first panel active,
// every other panel pending, nothing validated.
func NewState(sessionID, formID string, n int) *State {
	s := &State{
		SessionID:  sessionID,
		FormID:     formID,
		Validated:  make([]bool, n),
		Indicators: make([]IndicatorState, n),
		Metadata:   make(map[string]string),
		UpdatedAt:  time.Now(),
	}
	if n > 0 {
		s.Indicators[0] = IndicatorActive
	}
	return s
}

// Previous returns the previous index and whether one exists.
func (s *State) Previous() (int, bool) {
	if s.PreviousIndex == nil {
		return 0, false
	}
	return *s.PreviousIndex, true
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	cp := *s
	if s.PreviousIndex != nil {
		prev := *s.PreviousIndex
		cp.PreviousIndex = &prev
	}
	cp.Validated = slices.Clone(s.Validated)
	cp.Indicators = slices.Clone(s.Indicators)
	cp.Metadata = maps.Clone(s.Metadata)
	return &cp
}

// Completed counts the indicators in the completed state.
func (s *State) Completed() int {
	n := 0
	for _, ind := range s.Indicators {
		if ind == IndicatorCompleted {
			n++
		}
	}
	return n
}
