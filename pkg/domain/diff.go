package domain

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentIndex *int `json:"current_index,omitempty"`

	// PreviousIndex is set when it changed. PreviousCleared is set when it became "none".
	PreviousIndex   *int `json:"previous_index,omitempty"`
	PreviousCleared bool `json:"previous_cleared,omitempty"`

	// Indicators contains only the indicators whose state changed, keyed by panel index.
	Indicators map[int]IndicatorState `json:"indicators,omitempty"`

	// Validated contains the indexes of panels that became validated.
	// The flag is monotonic so it is never reported as cleared.
	Validated []int `json:"validated,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.CurrentIndex != newState.CurrentIndex {
		idx := newState.CurrentIndex
		diff.CurrentIndex = &idx
	}

	diff.PreviousIndex, diff.PreviousCleared = diffPrevious(oldState, newState)
	diff.Indicators = diffIndicators(oldState, newState)
	diff.Validated = diffValidated(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffPrevious(old, new *State) (*int, bool) {
	newPrev, newOK := new.Previous()
	if old == nil {
		if newOK {
			return &newPrev, false
		}
		return nil, false
	}
	oldPrev, oldOK := old.Previous()
	switch {
	case newOK && (!oldOK || oldPrev != newPrev):
		return &newPrev, false
	case !newOK && oldOK:
		return nil, true
	}
	return nil, false
}

func diffIndicators(old, new *State) map[int]IndicatorState {
	delta := make(map[int]IndicatorState)
	for i, ind := range new.Indicators {
		if old == nil || i >= len(old.Indicators) || old.Indicators[i] != ind {
			delta[i] = ind
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffValidated(old, new *State) []int {
	var out []int
	for i, v := range new.Validated {
		if !v {
			continue
		}
		if old == nil || i >= len(old.Validated) || !old.Validated[i] {
			out = append(out, i)
		}
	}
	return out
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentIndex == nil &&
		d.PreviousIndex == nil &&
		!d.PreviousCleared &&
		len(d.Indicators) == 0 &&
		len(d.Validated) == 0
}
