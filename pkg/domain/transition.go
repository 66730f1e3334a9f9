package domain

// TransitionKind classifies the outcome of a navigation request.
type TransitionKind string

const (
	// TransitionAdvanced: the navigator moved forward (one or more panels).
	TransitionAdvanced TransitionKind = "advanced"
	// TransitionRetreated: the navigator moved backward (one or more panels).
	TransitionRetreated TransitionKind = "retreated"
	// TransitionBlocked: the gate rejected a forward step. The navigator may still have
	// moved if the request was a multi-step jump that halted midway.
	TransitionBlocked TransitionKind = "blocked"
	// TransitionNoop: nothing to do (advance at last panel, retreat at first, jump to current).
	TransitionNoop TransitionKind = "noop"
	// TransitionIgnored: an indicator click that the settings do not permit.
	TransitionIgnored TransitionKind = "ignored"
)

// Transition is the result of a navigation request.
type Transition struct {
	Kind TransitionKind `json:"kind"`
	From int            `json:"from"`
	To   int            `json:"to"`
	// Target is the index the request aimed for.
	Target int `json:"target"`
	// Blame is the failing element when Kind is TransitionBlocked.
	Blame  *FieldRef `json:"blame,omitempty"`
	Events []Event   `json:"events,omitempty"`
}

// Moved reports whether the current panel changed.
func (t Transition) Moved() bool {
	return t.From != t.To
}

// Reached reports whether the navigator ended on the requested panel.
func (t Transition) Reached() bool {
	return t.To == t.Target
}
