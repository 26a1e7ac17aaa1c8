package breathing

// Machine holds one breathing session. It is owned by a single view or
// request and is not safe for concurrent use.
type Machine struct {
	pattern Pattern
	state   State
}

func NewMachine() *Machine {
	return &Machine{}
}

// Restore rebuilds a machine from a persisted pattern and state.
func Restore(p Pattern, s State) (*Machine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !s.Phase.Valid() || p.Duration(s.Phase) == 0 {
		s.Phase = p.FirstPhase()
		s.SecondsRemaining = p.Duration(s.Phase)
	}
	if s.SecondsRemaining < 0 {
		s.SecondsRemaining = 0
	}
	if s.CompletedCycles < 0 {
		s.CompletedCycles = 0
	}
	return &Machine{pattern: p, state: s}, nil
}

// Start begins a fresh running session. On error the machine is left
// untouched.
func (m *Machine) Start(p Pattern) error {
	initial, err := Initial(p)
	if err != nil {
		return err
	}
	initial.Running = true
	m.pattern = p
	m.state = initial
	return nil
}

// Tick advances the session by one second and returns the new state.
func (m *Machine) Tick() State {
	m.state = Advance(m.pattern, m.state)
	return m.state
}

// Stop pauses the countdown and keeps phase, remaining seconds and cycles.
func (m *Machine) Stop() {
	m.state.Running = false
}

// Resume continues a stopped session. It does nothing before Start.
func (m *Machine) Resume() {
	if m.pattern.Validate() != nil {
		return
	}
	m.state.Running = true
}

// Reset selects p and returns to its initial, stopped state.
func (m *Machine) Reset(p Pattern) error {
	initial, err := Initial(p)
	if err != nil {
		return err
	}
	m.pattern = p
	m.state = initial
	return nil
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Pattern() Pattern {
	return m.pattern
}

func (m *Machine) Running() bool {
	return m.state.Running
}

func (m *Machine) Summarize() Progress {
	return ProgressOf(m.pattern, m.state)
}
