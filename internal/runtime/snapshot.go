package runtime

import (
	"fmt"

	"github.com/aretw0/progressforms/pkg/domain"
)

// Snapshot captures the navigation state for persistence.
func (n *Navigator) Snapshot(sessionID string) *domain.State {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := domain.NewState(sessionID, n.formID, len(n.panels))
	s.CurrentIndex = n.current
	if n.previous >= 0 {
		prev := n.previous
		s.PreviousIndex = &prev
	}
	for i, p := range n.panels {
		s.Validated[i] = p.PreviouslyValidated
	}
	s.Indicators = n.tracker.States()
	s.UpdatedAt = n.now()
	return s
}

// Restore replaces the navigation state with a snapshot taken from a navigator
// over the same form. It fails with domain.ErrStateMismatch, leaving the
// navigator untouched, when the snapshot does not fit or could not have been
// reached by validated forward steps.
func (n *Navigator) Restore(s *domain.State) error {
	if s == nil {
		return fmt.Errorf("%w: nil state", domain.ErrStateMismatch)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	count := len(n.panels)
	if s.FormID != "" && n.formID != "" && s.FormID != n.formID {
		return fmt.Errorf("%w: snapshot of form %q, navigator has %q", domain.ErrStateMismatch, s.FormID, n.formID)
	}
	if len(s.Validated) != count {
		return fmt.Errorf("%w: %d validated flags for %d panels", domain.ErrStateMismatch, len(s.Validated), count)
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= count {
		return fmt.Errorf("%w: %w", domain.ErrStateMismatch, &domain.RangeError{Index: s.CurrentIndex, Count: count})
	}

	want := s.CurrentIndex - 1
	if prev, ok := s.Previous(); ok && prev != want {
		return fmt.Errorf("%w: previous index %d with current %d", domain.ErrStateMismatch, prev, s.CurrentIndex)
	} else if !ok && want >= 0 {
		return fmt.Errorf("%w: missing previous index for current %d", domain.ErrStateMismatch, s.CurrentIndex)
	}

	if err := checkReachable(s.CurrentIndex, s.Validated); err != nil {
		return err
	}

	probe := NewTracker(count)
	probe.reset(s.CurrentIndex)
	if len(s.Indicators) > 0 {
		derived := probe.States()
		if len(s.Indicators) != count {
			return fmt.Errorf("%w: %d indicators for %d panels", domain.ErrStateMismatch, len(s.Indicators), count)
		}
		for i := range derived {
			if derived[i] != s.Indicators[i] {
				return fmt.Errorf("%w: indicator %d is %s, expected %s", domain.ErrStateMismatch, i, s.Indicators[i], derived[i])
			}
		}
	}

	n.current = s.CurrentIndex
	n.previous = want
	for i := range n.panels {
		n.panels[i].PreviouslyValidated = s.Validated[i]
	}
	n.tracker = probe
	n.logger.Debug("state restored", "session_id", s.SessionID, "current", n.current)
	return nil
}

// checkReachable rejects flags that no sequence of transitions produces: panels
// are validated in order, and every panel behind current has been validated.
func checkReachable(current int, validated []bool) error {
	for i, ok := range validated {
		if i < current && !ok {
			return fmt.Errorf("%w: panel %d behind current %d was never validated", domain.ErrStateMismatch, i, current)
		}
		if ok && i > 0 && !validated[i-1] {
			return fmt.Errorf("%w: panel %d validated before panel %d", domain.ErrStateMismatch, i, i-1)
		}
	}
	return nil
}
