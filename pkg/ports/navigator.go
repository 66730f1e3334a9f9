package ports

import "github.com/aretw0/progressforms/pkg/domain"

// Navigator defines the operations hosts (runners, TUI, HTTP, MCP) drive.
// Implementations serialize requests: each one runs to completion before the next.
type Navigator interface {
	// Advance gates the current panel and moves forward one step.
	Advance() domain.Transition

	// Retreat moves back one step. It never consults the gate.
	Retreat() domain.Transition

	// JumpTo walks step by step towards index, halting on the first gate failure.
	JumpTo(index int) (domain.Transition, error)

	// JumpToID resolves a panel ID and behaves as JumpTo.
	JumpToID(id string) (domain.Transition, error)

	// Click handles a click on the progress indicator at index.
	Click(index int) (domain.Transition, error)

	CurrentIndex() int
	PreviousIndex() (int, bool)
	Indicators() []domain.IndicatorState
	Panels() []domain.Panel
	Current() domain.Panel
}
