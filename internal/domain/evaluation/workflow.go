package evaluation

import (
	"sort"

	"scorecard/internal/domain/auth"
)

// transitions is the workflow table: (state, action) -> next state. A pair
// missing from the table is an illegal transition.
var transitions = map[State]map[Action]State{
	StateDraft: {
		ActionEdit:           StateDraft,
		ActionSubmitEmployee: StatePendingEmployee,
		ActionAcknowledge:    StatePendingHR,
		ActionContest:        StatePendingHR,
		ActionSubmitHR:       StatePendingHR,
	},
	StatePendingEmployee: {
		ActionAcknowledge: StatePendingHR,
		ActionContest:     StatePendingHR,
		ActionSubmitHR:    StatePendingHR,
	},
	StatePendingHR: {
		ActionClose:  StateClosed,
		ActionReopen: StateDraft,
	},
	StateClosed: {
		ActionReopen: StateDraft,
	},
}

type guard func(p *auth.Policy, actor auth.Actor, ev Evaluation) *GuardError

// guards holds the caller checks per action. Actions without a guard are
// open to any authenticated caller.
var guards = map[Action]guard{
	ActionEdit:        evaluatorOrCapability(ActionEdit, auth.CapEvaluationEdit),
	ActionAcknowledge: subjectEmployee(ActionAcknowledge),
	ActionContest:     subjectEmployee(ActionContest),
	ActionClose:       capability(ActionClose, auth.CapEvaluationClose),
	ActionReopen:      capability(ActionReopen, auth.CapEvaluationReopen),
}

func evaluatorOrCapability(action Action, c auth.Capability) guard {
	return func(p *auth.Policy, actor auth.Actor, ev Evaluation) *GuardError {
		if ev.EvaluatorID != "" && ev.EvaluatorID == actor.UserID {
			return nil
		}
		if p.Can(actor, c) {
			return nil
		}
		return &GuardError{Action: action, Reason: "caller is not the evaluator and lacks " + string(c)}
	}
}

func subjectEmployee(action Action) guard {
	return func(_ *auth.Policy, actor auth.Actor, ev Evaluation) *GuardError {
		if actor.IsEmployee(ev.EmployeeID) {
			return nil
		}
		return &GuardError{Action: action, Reason: "only the evaluated employee may respond"}
	}
}

func capability(action Action, c auth.Capability) guard {
	return func(p *auth.Policy, actor auth.Actor, _ Evaluation) *GuardError {
		if p.Can(actor, c) {
			return nil
		}
		return &GuardError{Action: action, Reason: "missing capability " + string(c)}
	}
}

func KnownAction(a Action) bool {
	for _, next := range transitions {
		if _, ok := next[a]; ok {
			return true
		}
	}
	return false
}

// NextState looks the action up in the transition table. The error is a
// *StateError naming the states the action is allowed from.
func NextState(current State, action Action) (State, error) {
	if !KnownAction(action) {
		return "", ErrUnknownAction
	}
	if next, ok := transitions[current][action]; ok {
		return next, nil
	}
	return "", &StateError{Action: action, Current: current, Required: AllowedFrom(action)}
}

// AllowedFrom lists the states in which action is legal, in a stable order.
func AllowedFrom(action Action) []State {
	var out []State
	for state, next := range transitions {
		if _, ok := next[action]; ok {
			out = append(out, state)
		}
	}
	sort.Slice(out, func(i, j int) bool { return stateOrder(out[i]) < stateOrder(out[j]) })
	return out
}

// AvailableActions lists the actions legal from state.
func AvailableActions(state State) []Action {
	var out []Action
	for action := range transitions[state] {
		out = append(out, action)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func stateOrder(s State) int {
	switch s {
	case StateDraft:
		return 0
	case StatePendingEmployee:
		return 1
	case StatePendingHR:
		return 2
	case StateClosed:
		return 3
	default:
		return 4
	}
}

// CanTransition is the pure guard check: it reports whether actor may apply
// action to ev right now. The state check runs first so a caller learns the
// required state even when they also lack permission.
func CanTransition(p *auth.Policy, actor auth.Actor, ev Evaluation, action Action) error {
	if _, err := NextState(ev.State, action); err != nil {
		return err
	}
	if g, ok := guards[action]; ok {
		if gerr := g(p, actor, ev); gerr != nil {
			return gerr
		}
	}
	return nil
}
