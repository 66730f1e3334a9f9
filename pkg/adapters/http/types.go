package http

import (
	"github.com/aretw0/progressforms/pkg/domain"
)

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

// StepRequest carries the client's live field values for one navigation call.
// Values and Hidden feed the field inspector and are never stored.
type StepRequest struct {
	Values  map[string]any `json:"values,omitempty"`
	Hidden  []string       `json:"hidden,omitempty"`
	Index   *int           `json:"index,omitempty"`
	PanelID string         `json:"panel_id,omitempty"`
}

// SessionView is the client-facing rendering of a stored session.
type SessionView struct {
	SessionID     string                  `json:"session_id"`
	FormID        string                  `json:"form_id"`
	CurrentIndex  int                     `json:"current_index"`
	PreviousIndex *int                    `json:"previous_index"`
	Indicators    []domain.IndicatorState `json:"indicators"`
	Validated     []bool                  `json:"validated"`
	Layout        float64                 `json:"layout"`
	Progress      string                  `json:"progress,omitempty"`
	Panel         *domain.Panel           `json:"panel,omitempty"`
}

// StepResponse is returned by the navigation endpoints.
type StepResponse struct {
	Transition domain.Transition `json:"transition"`
	Session    SessionView       `json:"session"`
	// Message is the general alert shown when a step is blocked.
	Message string `json:"message,omitempty"`
	// Detail names the blamed field in the client's language.
	Detail string `json:"detail,omitempty"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}
