package model

import (
	"time"

	"mindgarden/backend/internal/breathing"
)

const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusPaused  = "paused"
)

const (
	SessionCompleted = "completed"
	SessionStopped   = "stopped"
)

const (
	SourceLive   = "live"
	SourceClient = "client"
)

// BreathingState is the persisted live session of one user. While Status
// is running, Phase, SecondsRemaining and CompletedCycles describe the
// machine at StartedAt.
type BreathingState struct {
	UserID           string
	Pattern          breathing.Pattern
	Status           string
	Phase            breathing.Phase
	SecondsRemaining int
	CompletedCycles  int
	TargetCycles     int
	StressBefore     *int
	StartedAt        *time.Time
	SessionStartedAt *time.Time
	Version          int
	UpdatedAt        time.Time
}

func (s *BreathingState) Snapshot() breathing.State {
	return breathing.State{
		Phase:            s.Phase,
		SecondsRemaining: s.SecondsRemaining,
		CompletedCycles:  s.CompletedCycles,
		Running:          s.Status == StatusRunning,
	}
}

func (s *BreathingState) Apply(state breathing.State) {
	s.Phase = state.Phase
	s.SecondsRemaining = state.SecondsRemaining
	s.CompletedCycles = state.CompletedCycles
}

type BreathingSession struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	PatternName       string     `json:"patternName"`
	Source            string     `json:"source"`
	Status            string     `json:"status"`
	DurationSeconds   int        `json:"durationSeconds"`
	DurationMinutes   int        `json:"durationMinutes"`
	CompletedCycles   int        `json:"completedCycles"`
	StressLevelBefore *int       `json:"stressLevelBefore"`
	StressLevelAfter  *int       `json:"stressLevelAfter"`
	Notes             *string    `json:"notes"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type BreathingStats struct {
	TotalSessions          int      `json:"totalSessions"`
	TotalMinutes           int      `json:"totalMinutes"`
	AverageStressReduction *float64 `json:"averageStressReduction"`
	LongestStreak          int      `json:"longestStreak"`
	CurrentStreak          int      `json:"currentStreak"`
}
