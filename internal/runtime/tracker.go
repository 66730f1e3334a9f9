package runtime

import "github.com/aretw0/progressforms/pkg/domain"

// Tracker mirrors navigator transitions onto the progress indicators.
// An indicator is completed while its panel lies behind the current one after a
// forward step over it; a retreat clears the mark of the panel it leaves.
type Tracker struct {
	active    int
	completed []bool
}

// NewTracker returns a tracker for n panels with the first one active.
func NewTracker(n int) *Tracker {
	return &Tracker{completed: make([]bool, n)}
}

// Advanced records a successful forward step.
func (t *Tracker) Advanced(from, to int) {
	t.completed[from] = true
	t.active = to
}

// Retreated records a backward step.
func (t *Tracker) Retreated(from, to int) {
	t.completed[from] = false
	t.active = to
}

// States returns the indicator states in panel order.
func (t *Tracker) States() []domain.IndicatorState {
	out := make([]domain.IndicatorState, len(t.completed))
	for i, done := range t.completed {
		switch {
		case i == t.active:
			out[i] = domain.IndicatorActive
		case done:
			out[i] = domain.IndicatorCompleted
		default:
			out[i] = domain.IndicatorPending
		}
	}
	return out
}

// Layout returns the width share, in percent, of each indicator.
func Layout(panelCount int) float64 {
	if panelCount <= 0 {
		return 0
	}
	return 100.0 / float64(panelCount)
}

// reset positions the tracker as if every panel before active had been passed forward.
func (t *Tracker) reset(active int) {
	t.active = active
	for i := range t.completed {
		t.completed[i] = i < active
	}
}
