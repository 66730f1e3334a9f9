package validator

import (
	"errors"
	"fmt"
)

// DefinitionError represents a single integrity problem in a form definition.
type DefinitionError struct {
	PanelID string // empty for form-level problems
	Element string // field or group name, if any
	Reason  string
	Err     error // optional sentinel from pkg/domain
}

func (e *DefinitionError) Error() string {
	switch {
	case e.PanelID == "":
		return e.Reason
	case e.Element == "":
		return fmt.Sprintf("panel %q: %s", e.PanelID, e.Reason)
	}
	return fmt.Sprintf("panel %q, %q: %s", e.PanelID, e.Element, e.Reason)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// AggregateError represents multiple definition problems.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d definition errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// Problems returns all definition errors if err is an AggregateError.
// Otherwise returns nil.
func Problems(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
