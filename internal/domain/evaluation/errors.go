package evaluation

import (
	"fmt"
	"strings"

	"scorecard/internal/platform/apperror"
)

var (
	ErrEvaluationNotFound = apperror.NotFound("evaluation")
	ErrInvalidState       = apperror.Conflict("evaluation is not in a state that allows this action")
	ErrForbidden          = apperror.Forbidden("actor may not perform this action")
	ErrUnknownAction      = apperror.Validation("action", "unknown workflow action")
)

// StateError names the evaluation's current state and the states the action
// requires. It unwraps to ErrInvalidState.
type StateError struct {
	Action   Action
	Current  State
	Required []State
}

func (e *StateError) Error() string {
	required := make([]string, len(e.Required))
	for i, s := range e.Required {
		required[i] = string(s)
	}
	return fmt.Sprintf("cannot %s evaluation in state %s; requires %s", e.Action, e.Current, strings.Join(required, " or "))
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// GuardError explains why a guard rejected the actor. It unwraps to
// ErrForbidden.
type GuardError struct {
	Action Action
	Reason string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("%s not allowed: %s", e.Action, e.Reason)
}

func (e *GuardError) Unwrap() error {
	return ErrForbidden
}
