package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
)

// ErrNilInspector is returned when a navigator is created without a FieldInspector.
var ErrNilInspector = errors.New("field inspector is required")

// Navigator is the state machine driving panel visibility.
//
// Requests are serialized: each one settles the state before the next is
// applied. Callbacks run afterwards, outside the lock, so they may call back
// into the navigator. When several goroutines send requests concurrently the
// callbacks of different requests may interleave or arrive out of request
// order; the Events of each returned Transition are always in order. Hosts
// that need a single ordered callback stream drive the navigator from one
// goroutine.
type Navigator struct {
	mu sync.Mutex

	formID   string
	panels   []domain.Panel
	settings domain.Settings

	gate    *Gate
	tracker *Tracker

	current  int
	previous int // -1 when none

	validators map[int]ports.Validator
	callbacks  domain.Callbacks
	isEmpty    EmptyPredicate
	logger     *slog.Logger
	now        func() time.Time
}

var _ ports.Navigator = (*Navigator)(nil)

// NewNavigator registers the panels of form and positions the navigator on the first one.
// The form is copied: later changes to it do not affect the navigator.
func NewNavigator(form *domain.Form, inspector ports.FieldInspector, opts ...NavigatorOption) (*Navigator, error) {
	if form == nil || len(form.Panels) == 0 {
		return nil, domain.ErrNoPanels
	}
	if inspector == nil {
		return nil, ErrNilInspector
	}

	panels := make([]domain.Panel, len(form.Panels))
	seen := make(map[string]int, len(form.Panels))
	for i, p := range form.Panels {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: panel %d", domain.ErrMissingPanelID, i)
		}
		if j, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q at %d and %d", domain.ErrDuplicatePanelID, p.ID, j, i)
		}
		seen[p.ID] = i
		p.Index = i
		p.PreviouslyValidated = false
		panels[i] = p
	}

	n := &Navigator{
		formID:     form.ID,
		panels:     panels,
		settings:   form.Settings,
		tracker:    NewTracker(len(panels)),
		previous:   -1,
		validators: make(map[int]ports.Validator),
		isEmpty:    IsEmpty,
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}

	for idx := range n.validators {
		if idx < 0 || idx >= len(panels) {
			return nil, fmt.Errorf("validator registered for %w", &domain.RangeError{Index: idx, Count: len(panels)})
		}
	}

	n.gate = &Gate{
		inspector:        inspector,
		validateRequired: n.settings.ValidateRequired,
		validators:       n.validators,
		isEmpty:          n.isEmpty,
	}
	return n, nil
}

// Advance gates the current panel and moves one panel forward.
// At the last panel it is a no-op and the gate is not consulted.
func (n *Navigator) Advance() domain.Transition {
	n.mu.Lock()
	t := n.begin(n.current + 1)
	if n.current+1 >= len(n.panels) {
		t.Target = n.current
		t.Kind = domain.TransitionNoop
		n.mu.Unlock()
		return t
	}
	n.advanceLocked(&t)
	n.settle(&t)
	n.mu.Unlock()

	n.dispatch(t.Events)
	return t
}

// Retreat moves one panel back. At the first panel it is a no-op.
func (n *Navigator) Retreat() domain.Transition {
	n.mu.Lock()
	t := n.begin(n.current - 1)
	if n.current == 0 {
		t.Target = 0
		t.Kind = domain.TransitionNoop
		n.mu.Unlock()
		return t
	}
	n.retreatLocked(&t)
	n.settle(&t)
	n.mu.Unlock()

	n.dispatch(t.Events)
	return t
}

// JumpTo walks towards index one panel at a time. Forward steps are gated
// individually: the walk halts on the first failing panel, which stays current.
func (n *Navigator) JumpTo(index int) (domain.Transition, error) {
	n.mu.Lock()
	t, err := n.jumpLocked(index)
	n.mu.Unlock()
	if err != nil {
		return t, err
	}
	n.dispatch(t.Events)
	return t, nil
}

// JumpToID resolves a panel ID and behaves as JumpTo.
func (n *Navigator) JumpToID(id string) (domain.Transition, error) {
	n.mu.Lock()
	idx := n.indexOf(id)
	if idx < 0 {
		err := &domain.UnknownPanelError{ID: id, Suggestion: n.suggest(id)}
		n.logger.Warn("jump to unknown panel", "panel_id", id, "suggestion", err.Suggestion)
		t := n.begin(n.current)
		t.Kind = domain.TransitionNoop
		n.mu.Unlock()
		return t, err
	}
	t, err := n.jumpLocked(idx)
	n.mu.Unlock()
	if err != nil {
		return t, err
	}
	n.dispatch(t.Events)
	return t, nil
}

// Click handles a click on the progress indicator at index.
// Forward clicks need AllowClickForward and, when RequireVisitedForForwardClick is set,
// a previously validated target. Backward clicks need AllowClickBackward.
// A click that is not permitted is ignored.
func (n *Navigator) Click(index int) (domain.Transition, error) {
	n.mu.Lock()
	if index < 0 || index >= len(n.panels) {
		t, err := n.outOfRange(index)
		n.mu.Unlock()
		return t, err
	}

	permitted := false
	switch {
	case index > n.current:
		permitted = n.settings.AllowClickForward &&
			(!n.settings.RequireVisitedForForwardClick || n.panels[index].PreviouslyValidated)
	case index < n.current:
		permitted = n.settings.AllowClickBackward
	}
	if !permitted {
		t := n.begin(index)
		t.Kind = domain.TransitionIgnored
		n.logger.Debug("indicator click ignored", "index", index, "current", n.current)
		n.mu.Unlock()
		return t, nil
	}

	t, err := n.jumpLocked(index)
	n.mu.Unlock()
	if err != nil {
		return t, err
	}
	n.dispatch(t.Events)
	return t, nil
}

// Check runs the gate on the current panel without moving.
func (n *Navigator) Check() *domain.FieldRef {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gate.Check(n.panels[n.current])
}

// CurrentIndex returns the active panel index.
func (n *Navigator) CurrentIndex() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// PreviousIndex returns the panel shown before the current one, if any.
func (n *Navigator) PreviousIndex() (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.previous, n.previous >= 0
}

// Indicators returns the progress indicator states in panel order.
func (n *Navigator) Indicators() []domain.IndicatorState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tracker.States()
}

// Panels returns a copy of the panel sequence.
func (n *Navigator) Panels() []domain.Panel {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Panel, len(n.panels))
	copy(out, n.panels)
	return out
}

// Current returns a copy of the active panel.
func (n *Navigator) Current() domain.Panel {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.panels[n.current]
}

// Settings returns the navigation settings.
func (n *Navigator) Settings() domain.Settings {
	return n.settings
}

// FormID returns the identifier of the form the navigator was built from.
func (n *Navigator) FormID() string {
	return n.formID
}

// Layout returns the width share, in percent, of each progress indicator.
func (n *Navigator) Layout() float64 {
	return Layout(len(n.panels))
}

func (n *Navigator) begin(target int) domain.Transition {
	return domain.Transition{From: n.current, To: n.current, Target: target}
}

func (n *Navigator) settle(t *domain.Transition) {
	t.To = n.current
	if t.Kind != "" {
		return
	}
	switch {
	case t.To > t.From:
		t.Kind = domain.TransitionAdvanced
	case t.To < t.From:
		t.Kind = domain.TransitionRetreated
	default:
		t.Kind = domain.TransitionNoop
	}
}

// advanceLocked performs one gated forward step. It reports whether the step happened.
func (n *Navigator) advanceLocked(t *domain.Transition) bool {
	from := n.current
	if blame := n.gate.Check(n.panels[from]); blame != nil {
		t.Kind = domain.TransitionBlocked
		t.Blame = blame
		t.Events = append(t.Events, domain.Event{
			Type:      domain.EventValidationFailed,
			Timestamp: n.now(),
			Blame:     blame,
		})
		n.logger.Info("advance blocked", "panel_id", n.panels[from].ID, "field", blame.String())
		return false
	}

	to := from + 1
	n.tracker.Advanced(from, to)
	n.previous = from
	n.current = to
	n.panels[from].PreviouslyValidated = true

	left, entered := n.panels[from], n.panels[to]
	t.Events = append(t.Events, domain.Event{
		Type:      domain.EventNext,
		Timestamp: n.now(),
		Left:      &left,
		Entered:   &entered,
	})
	if to == len(n.panels)-1 {
		t.Events = append(t.Events, domain.Event{
			Type:      domain.EventLastPanelEntered,
			Timestamp: n.now(),
		})
	}
	n.logger.Debug("advanced", "from", left.ID, "to", entered.ID)
	return true
}

func (n *Navigator) retreatLocked(t *domain.Transition) {
	from := n.current
	to := from - 1
	n.tracker.Retreated(from, to)
	n.current = to
	n.previous = to - 1

	left, entered := n.panels[from], n.panels[to]
	t.Events = append(t.Events, domain.Event{
		Type:      domain.EventPrev,
		Timestamp: n.now(),
		Left:      &left,
		Entered:   &entered,
	})
	n.logger.Debug("retreated", "from", left.ID, "to", entered.ID)
}

func (n *Navigator) jumpLocked(index int) (domain.Transition, error) {
	if index < 0 || index >= len(n.panels) {
		return n.outOfRange(index)
	}

	t := n.begin(index)
	for n.current < index {
		if !n.advanceLocked(&t) {
			break
		}
	}
	for n.current > index {
		n.retreatLocked(&t)
	}
	n.settle(&t)
	return t, nil
}

func (n *Navigator) outOfRange(index int) (domain.Transition, error) {
	n.logger.Warn("jump out of range", "index", index, "panels", len(n.panels))
	t := domain.Transition{From: n.current, To: n.current, Target: index, Kind: domain.TransitionNoop}
	return t, &domain.RangeError{Index: index, Count: len(n.panels)}
}

func (n *Navigator) indexOf(id string) int {
	for i, p := range n.panels {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// suggest returns the closest panel ID when it is within a third of the query's length.
func (n *Navigator) suggest(id string) string {
	best, bestDist := "", -1
	for _, p := range n.panels {
		d := levenshtein.ComputeDistance(id, p.ID)
		if bestDist < 0 || d < bestDist {
			best, bestDist = p.ID, d
		}
	}
	limit := len(id)/3 + 1
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

func (n *Navigator) dispatch(events []domain.Event) {
	for _, e := range events {
		n.callbacks.Dispatch(e)
	}
}
