package runner

import (
	"context"

	"github.com/aretw0/progressforms/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (structured) modes.
type IOHandler interface {
	// Render presents the current panel and the outcome of the last command.
	Render(ctx context.Context, view View) error

	// Input reads the next command. io.EOF ends the run.
	Input(ctx context.Context) (Command, error)

	// SystemOutput presents a meta-message (errors, status) distinct from panel content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms panel descriptions before output, e.g. markdown to ANSI.
type ContentRenderer func(string) (string, error)

// View is what a handler renders after each command.
type View struct {
	SessionID  string                  `json:"session_id,omitempty"`
	Index      int                     `json:"index"`
	Total      int                     `json:"total"`
	Progress   string                  `json:"progress"`
	Panel      domain.Panel            `json:"panel"`
	Indicators []domain.IndicatorState `json:"indicators"`
	Values     map[string]any          `json:"values,omitempty"`
	Last       bool                    `json:"last"`

	// Transition is nil on the first render and after field edits.
	Transition *domain.Transition `json:"transition,omitempty"`
	// Message and Detail explain a blocked transition in the user's language.
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}
