package session

import (
	"encoding/json"
	"time"

	"github.com/slicken/TextFx-Studio/internal/history"
)

// State is the generation state of a session.
type State int

const (
	Idle State = iota
	InFlight
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// User-facing messages.
const (
	MessageEmptyText = "Please enter some text first!"
	MessageFailed    = "Failed to generate image. Please try again."
)

// ValidationNoticeTTL is how long a validation notice stays visible.
const ValidationNoticeTTL = 3 * time.Second

// NoticeKind distinguishes validation notices from failure notices.
type NoticeKind string

const (
	NoticeValidation NoticeKind = "validation"
	NoticeFailure    NoticeKind = "failure"
)

// Notice is the message currently shown to the user. A zero ExpiresAt means
// the notice stays until replaced.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	ExpiresAt time.Time  `json:"expiresAt,omitzero"`
}

func (n *Notice) expired(now time.Time) bool {
	return !n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt)
}

// Failure kinds recorded in Status.LastError.
const (
	FailureNoImage = "no_image"
	FailureRequest = "request"
	FailureCompile = "compile"
	FailureHistory = "history"
)

// Status is a point-in-time view of the session.
type Status struct {
	ID        string                  `json:"id"`
	State     State                   `json:"state"`
	Notice    *Notice                 `json:"notice,omitempty"`
	Current   *history.GeneratedImage `json:"current,omitempty"`
	LastError string                  `json:"lastError,omitempty"`
}
