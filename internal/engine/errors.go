package engine

import (
	"errors"
	"fmt"
)

// Input rejections: surfaced synchronously, no history mutation.
var (
	ErrBusy       = errors.New("a turn is already in flight")
	ErrEmptyInput = errors.New("empty input")
)

// APDepletedError rejects an action for a metered tier with no AP left. It
// carries the estimated minutes until the next recovery tick for display.
type APDepletedError struct {
	MinutesRemaining int
}

func (e *APDepletedError) Error() string {
	if e.MinutesRemaining > 0 {
		return fmt.Sprintf("out of action points; next recovery in ~%d min", e.MinutesRemaining)
	}
	return "out of action points"
}

// CollaboratorError wraps a narration/status transport or model failure.
// The turn still counts: AP spent at submission is not refunded.
type CollaboratorError struct {
	Stage string // "narration" | "status" | "image" | "avatar"
	Err   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator: %v", e.Stage, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// IsInputRejection reports whether err is a synchronous gate rejection
// rather than a mid-turn failure.
func IsInputRejection(err error) bool {
	var apErr *APDepletedError
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrEmptyInput) || errors.As(err, &apErr)
}
