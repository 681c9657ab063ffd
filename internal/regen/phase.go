package regen

import "fmt"

// Phase is a step of the regeneration state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseResolving Phase = "resolving"
	PhaseScanning  Phase = "scanning"
	PhaseCanceled  Phase = "canceled"
	PhaseRewriting Phase = "rewriting"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:      {PhaseResolving, PhaseFailed},
	PhaseResolving: {PhaseScanning, PhaseFailed},
	PhaseScanning:  {PhaseRewriting, PhaseCanceled, PhaseFailed},
	PhaseRewriting: {PhaseDone, PhaseFailed},
}

// CanTransition reports whether the state machine allows moving from one phase to another.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return len(transitions[p]) == 0
}

// Advance moves the result to the next phase. Moves the state machine does
// not allow leave the phase unchanged and return ErrInvalidTransition.
func (res *Result) Advance(to Phase) error {
	if !CanTransition(res.Phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, res.Phase, to)
	}
	res.Phase = to
	return nil
}
