package breathing

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
)

var ErrNotRunning = errors.New("breathing session is not running")

// Runner drives a Machine from a ticker.
type Runner struct {
	machine      *Machine
	interval     time.Duration
	targetCycles int
	onTick       func(State)
	logger       *log.Logger
}

type RunnerOption func(*Runner)

// WithInterval overrides the one second tick interval.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithTargetCycles stops the run once n cycles have completed. Zero runs
// until the context is cancelled.
func WithTargetCycles(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.targetCycles = n
		}
	}
}

func WithOnTick(fn func(State)) RunnerOption {
	return func(r *Runner) {
		r.onTick = fn
	}
}

func WithLogger(logger *log.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(m *Machine, opts ...RunnerOption) *Runner {
	r := &Runner{
		machine:  m,
		interval: time.Second,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ticks the machine until the target cycle count is reached or ctx is
// done, then stops the machine. It returns ctx.Err() when cancelled.
func (r *Runner) Run(ctx context.Context) (Progress, error) {
	if !r.machine.Running() {
		return r.machine.Summarize(), ErrNotRunning
	}
	if r.targetReached() {
		r.machine.Stop()
		return r.machine.Summarize(), nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("breathing run started", "pattern", r.machine.Pattern().Name, "targetCycles", r.targetCycles)
	for {
		select {
		case <-ctx.Done():
			r.machine.Stop()
			progress := r.machine.Summarize()
			r.logger.Debug("breathing run cancelled", "cycles", progress.CompletedCycles, "elapsed", progress.ElapsedSeconds)
			return progress, ctx.Err()
		case <-ticker.C:
			before := r.machine.State()
			state := r.machine.Tick()
			if state.CompletedCycles != before.CompletedCycles {
				r.logger.Debug("breathing cycle completed", "cycles", state.CompletedCycles)
			}
			if r.onTick != nil {
				r.onTick(state)
			}
			if r.targetReached() {
				r.machine.Stop()
				return r.machine.Summarize(), nil
			}
		}
	}
}

func (r *Runner) targetReached() bool {
	return r.targetCycles > 0 && r.machine.State().CompletedCycles >= r.targetCycles
}
