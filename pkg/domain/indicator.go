package domain

import "fmt"

// IndicatorState is the display state of one progress indicator.
type IndicatorState int

const (
	IndicatorPending IndicatorState = iota
	IndicatorActive
	IndicatorCompleted
)

func (s IndicatorState) String() string {
	switch s {
	case IndicatorPending:
		return "pending"
	case IndicatorActive:
		return "active"
	case IndicatorCompleted:
		return "completed"
	}
	return fmt.Sprintf("IndicatorState(%d)", int(s))
}

// MarshalText encodes the state by name so snapshots stay readable.
func (s IndicatorState) MarshalText() ([]byte, error) {
	switch s {
	case IndicatorPending, IndicatorActive, IndicatorCompleted:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("invalid indicator state %d", int(s))
}

// UnmarshalText decodes a state name.
func (s *IndicatorState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = IndicatorPending
	case "active":
		*s = IndicatorActive
	case "completed":
		*s = IndicatorCompleted
	default:
		return fmt.Errorf("invalid indicator state %q", string(text))
	}
	return nil
}
