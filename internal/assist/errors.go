package assist

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput means there was nothing to work on.
	ErrEmptyInput = errors.New("nothing to process")

	// Rejection reasons recorded on attempts.
	ErrEmptyResult = errors.New("sanitized result is empty")
	ErrEcho        = errors.New("result is identical to the input")
	ErrWrongShape  = errors.New("result does not have the expected shape")
)

// Attempt outcomes.
const (
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Attempt records what one tier did during an action.
type Attempt struct {
	Tier    string
	Outcome string
	Err     error
}

// NoAcceptableResultError is returned when every tier was exhausted. The target field is
// left unchanged.
type NoAcceptableResultError struct {
	Action   string
	Attempts []Attempt
}

func (e *NoAcceptableResultError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s %s: %v", a.Tier, a.Outcome, a.Err))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: no backend available", e.Action)
	}
	return fmt.Sprintf("%s: no acceptable result (%s)", e.Action, strings.Join(parts, "; "))
}

// ActionProofread names every proofreading action. Only proofreading treats an echo as
// a clean result.
const ActionProofread = "proofread"

// AlreadyClean reports whether a proofreading action found nothing to correct: at least
// one backend echoed the input and every other backend was skipped. A failed or otherwise
// rejected attempt means the text was not checked, so it is not clean.
func (e *NoAcceptableResultError) AlreadyClean() bool {
	if e.Action != ActionProofread {
		return false
	}
	echoed := false
	for _, a := range e.Attempts {
		switch {
		case a.Outcome == OutcomeSkipped:
		case a.Outcome == OutcomeRejected && errors.Is(a.Err, ErrEcho):
			echoed = true
		default:
			return false
		}
	}
	return echoed
}

// UserMessage is the single message shown for the failed action.
func (e *NoAcceptableResultError) UserMessage() string {
	if e.AlreadyClean() {
		return fmt.Sprintf("No changes suggested for %s; the text already looks right.", e.Action)
	}
	return fmt.Sprintf("Couldn't %s right now. Your text was left unchanged.", e.Action)
}
