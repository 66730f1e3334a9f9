package domain

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when a jump targets an index outside the panel bounds.
var ErrIndexOutOfRange = errors.New("panel index out of range")

// ErrUnknownPanelID is returned when a jump targets a panel ID that does not exist.
var ErrUnknownPanelID = errors.New("unknown panel id")

// ErrNoPanels is returned when a navigator is created for a form without panels.
var ErrNoPanels = errors.New("form has no panels")

// ErrMissingPanelID is returned when a panel has no identifier.
var ErrMissingPanelID = errors.New("panel has no id")

// ErrDuplicatePanelID is returned when two panels share an identifier.
var ErrDuplicatePanelID = errors.New("duplicate panel id")

// ErrStateMismatch is returned when a snapshot does not fit the form it is restored into.
var ErrStateMismatch = errors.New("state does not match form")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// RangeError carries the rejected index. It matches ErrIndexOutOfRange.
type RangeError struct {
	Index int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("there is no panel at index %d (form has %d panels)", e.Index, e.Count)
}

func (e *RangeError) Unwrap() error { return ErrIndexOutOfRange }

// UnknownPanelError carries the rejected ID and, when one is close enough, the
// panel ID the caller probably meant. It matches ErrUnknownPanelID.
type UnknownPanelError struct {
	ID         string
	Suggestion string
}

func (e *UnknownPanelError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("there is no panel with id %q (did you mean %q?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("there is no panel with id %q", e.ID)
}

func (e *UnknownPanelError) Unwrap() error { return ErrUnknownPanelID }
