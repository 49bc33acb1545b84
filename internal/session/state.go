package session

import (
	"errors"
	"fmt"
)

// State is the single source of truth for where a research cycle stands.
// Phase and busy are derived from it.
type State string

const (
	StateAwaitingQuery      State = "AWAITING_QUERY"
	StateSubmittingInitial  State = "SUBMITTING_INITIAL"
	StateAwaitingFollowup   State = "AWAITING_FOLLOWUP"
	StateSubmittingFollowup State = "SUBMITTING_FOLLOWUP"
	StateComplete           State = "COMPLETE"
)

type Phase string

const (
	PhaseAwaitingQuery    Phase = "AWAITING_QUERY"
	PhaseAwaitingFollowup Phase = "AWAITING_FOLLOWUP"
	PhaseComplete         Phase = "COMPLETE"
)

func (s State) Phase() Phase {
	switch s {
	case StateAwaitingFollowup, StateSubmittingFollowup:
		return PhaseAwaitingFollowup
	case StateComplete:
		return PhaseComplete
	default:
		return PhaseAwaitingQuery
	}
}

func (s State) Busy() bool {
	return s == StateSubmittingInitial || s == StateSubmittingFollowup
}

var ErrBusy = errors.New("a research request is already in progress")

// TransitionError rejects an operation that is not defined for the current
// state.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}
