package cascade

import (
	"errors"
	"fmt"
)

// Configuration and step errors.
var (
	// ErrTooFewNodes rejects topologies that are degenerate from the start.
	ErrTooFewNodes = errors.New("cascade: topology needs at least 3 nodes")

	// ErrInvalidAlpha rejects a negative or non-finite tolerance.
	ErrInvalidAlpha = errors.New("cascade: alpha must be finite and non-negative")

	// ErrDegenerate means the resilience index is undefined for the alive set.
	ErrDegenerate = errors.New("cascade: resilience index needs at least 3 alive nodes")

	// ErrNoCandidate means RemoveMax ran before any betweenness was recorded.
	ErrNoCandidate = errors.New("cascade: no maximum betweenness node recorded")

	// ErrUnknownStep rejects a step name that is not part of the step set.
	ErrUnknownStep = errors.New("cascade: unknown step")

	// ErrInvalidPlan rejects step orders that would mutate a recorded snapshot.
	ErrInvalidPlan = errors.New("cascade: invalid step plan")
)

// StepError records which step of which round failed.
type StepError struct {
	Round int
	Step  Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("cascade: round %d, step %s: %v", e.Round, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
