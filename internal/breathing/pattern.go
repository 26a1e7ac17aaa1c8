// Package breathing implements the breathing-exercise phase machine.
//
// A session walks the phases inhale, hold, exhale and rest in that order,
// skipping any phase whose duration is zero, one tick (one second) at a
// time. The transition functions are pure; Machine wraps them for callers
// that want a mutable handle.
package breathing

import (
	"errors"
	"fmt"
)

var ErrInvalidPattern = errors.New("invalid breathing pattern")

type Phase string

const (
	PhaseInhale Phase = "inhale"
	PhaseHold   Phase = "hold"
	PhaseExhale Phase = "exhale"
	PhaseRest   Phase = "rest"
)

var phaseOrder = [...]Phase{PhaseInhale, PhaseHold, PhaseExhale, PhaseRest}

func (p Phase) Valid() bool {
	return p.index() >= 0
}

// Instruction is the cue shown to the user during the phase.
func (p Phase) Instruction() string {
	switch p {
	case PhaseInhale:
		return "Breathe in slowly..."
	case PhaseHold:
		return "Hold your breath..."
	case PhaseExhale:
		return "Breathe out gently..."
	case PhaseRest:
		return "Rest..."
	default:
		return ""
	}
}

func (p Phase) index() int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Pattern is a named set of phase durations in seconds.
type Pattern struct {
	Name        string `json:"name" yaml:"name"`
	Inhale      int    `json:"inhale" yaml:"inhale"`
	Hold        int    `json:"hold" yaml:"hold"`
	Exhale      int    `json:"exhale" yaml:"exhale"`
	Rest        int    `json:"rest" yaml:"rest"`
	Description string `json:"description" yaml:"description,omitempty"`
}

// Validate reports ErrInvalidPattern when a duration is negative or when
// every duration is zero.
func (p Pattern) Validate() error {
	for _, phase := range phaseOrder {
		if p.Duration(phase) < 0 {
			return fmt.Errorf("%w: %s duration is negative", ErrInvalidPattern, phase)
		}
	}
	if p.CycleSeconds() == 0 {
		return fmt.Errorf("%w: all phase durations are zero", ErrInvalidPattern)
	}
	return nil
}

func (p Pattern) Duration(phase Phase) int {
	switch phase {
	case PhaseInhale:
		return p.Inhale
	case PhaseHold:
		return p.Hold
	case PhaseExhale:
		return p.Exhale
	case PhaseRest:
		return p.Rest
	default:
		return 0
	}
}

func (p Pattern) CycleSeconds() int {
	return p.Inhale + p.Hold + p.Exhale + p.Rest
}

// FirstPhase returns the first phase with a positive duration, or "" for
// a degenerate pattern.
func (p Pattern) FirstPhase() Phase {
	for _, phase := range phaseOrder {
		if p.Duration(phase) > 0 {
			return phase
		}
	}
	return ""
}

// Next returns the phase that follows current. wrapped is true when the
// move passes the end of the cycle order, i.e. a full cycle completed.
func (p Pattern) Next(current Phase) (next Phase, wrapped bool) {
	start := current.index()
	for step := 1; step <= len(phaseOrder); step++ {
		i := start + step
		if i >= len(phaseOrder) {
			wrapped = true
			i -= len(phaseOrder)
		}
		if p.Duration(phaseOrder[i]) > 0 {
			return phaseOrder[i], wrapped
		}
	}
	return "", wrapped
}

func (p Pattern) String() string {
	return fmt.Sprintf("%s (%d-%d-%d-%d)", p.Name, p.Inhale, p.Hold, p.Exhale, p.Rest)
}
