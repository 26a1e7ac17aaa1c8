package breathing

// State is the observable state of a breathing session.
type State struct {
	Phase            Phase `json:"phase"`
	SecondsRemaining int   `json:"secondsRemaining"`
	CompletedCycles  int   `json:"completedCycles"`
	Running          bool  `json:"running"`
}

// Progress is what a session has accomplished so far.
type Progress struct {
	CompletedCycles int `json:"completedCycles"`
	ElapsedSeconds  int `json:"elapsedSeconds"`
}

// Initial returns the stopped state a session starts from.
func Initial(p Pattern) (State, error) {
	if err := p.Validate(); err != nil {
		return State{}, err
	}
	first := p.FirstPhase()
	return State{
		Phase:            first,
		SecondsRemaining: p.Duration(first),
	}, nil
}

// Advance applies one tick. A stopped state is returned unchanged.
func Advance(p Pattern, s State) State {
	if !s.Running {
		return s
	}

	s.SecondsRemaining--
	if s.SecondsRemaining > 0 {
		return s
	}

	next, wrapped := p.Next(s.Phase)
	if next == "" {
		// degenerate pattern; nothing to move to
		s.SecondsRemaining = 0
		return s
	}
	if wrapped {
		s.CompletedCycles++
	}
	s.Phase = next
	s.SecondsRemaining = p.Duration(next)
	return s
}

// AdvanceBy applies n ticks.
func AdvanceBy(p Pattern, s State, n int) State {
	if !s.Running || n <= 0 {
		return s
	}

	// Skip whole cycles when starting on a phase boundary.
	cycle := p.CycleSeconds()
	if cycle > 0 && s.SecondsRemaining == p.Duration(s.Phase) && s.Phase == p.FirstPhase() {
		s.CompletedCycles += n / cycle
		n %= cycle
	}

	for i := 0; i < n; i++ {
		s = Advance(p, s)
	}
	return s
}

// Elapsed returns the number of ticks that produced s from the initial
// state of p.
func Elapsed(p Pattern, s State) int {
	elapsed := s.CompletedCycles * p.CycleSeconds()
	for _, phase := range phaseOrder {
		if phase == s.Phase {
			break
		}
		elapsed += p.Duration(phase)
	}

	partial := p.Duration(s.Phase) - s.SecondsRemaining
	if partial > 0 {
		elapsed += partial
	}
	return elapsed
}

// ProgressOf summarizes s without mutating it.
func ProgressOf(p Pattern, s State) Progress {
	return Progress{
		CompletedCycles: s.CompletedCycles,
		ElapsedSeconds:  Elapsed(p, s),
	}
}
