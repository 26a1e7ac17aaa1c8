package breathing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	MinRating = 1
	MaxRating = 10

	MaxNotesLength = 2000
)

var ErrInvalidRating = errors.New("invalid rating")

// Summary describes a finished session. It is what gets recorded.
type Summary struct {
	PatternName          string `json:"patternName"`
	TotalDurationSeconds int    `json:"totalDurationSeconds"`
	CompletedCycles      int    `json:"completedCycles"`
	StressBefore         *int   `json:"stressLevelBefore,omitempty"`
	StressAfter          *int   `json:"stressLevelAfter,omitempty"`
	Notes                string `json:"notes,omitempty"`
}

// Recorder persists finished sessions.
type Recorder interface {
	RecordSession(ctx context.Context, summary Summary) error
}

// NewSummary builds the summary of m's session so far.
func NewSummary(m *Machine, before, after *int, notes string) (Summary, error) {
	progress := m.Summarize()
	summary := Summary{
		PatternName:          m.Pattern().Name,
		TotalDurationSeconds: progress.ElapsedSeconds,
		CompletedCycles:      progress.CompletedCycles,
		StressBefore:         before,
		StressAfter:          after,
		Notes:                strings.TrimSpace(notes),
	}
	if err := summary.Validate(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (s Summary) Validate() error {
	if strings.TrimSpace(s.PatternName) == "" {
		return errors.New("pattern name is required")
	}
	if s.TotalDurationSeconds < 0 || s.CompletedCycles < 0 {
		return errors.New("duration and cycles must not be negative")
	}
	if err := ValidateRating("stressLevelBefore", s.StressBefore); err != nil {
		return err
	}
	if err := ValidateRating("stressLevelAfter", s.StressAfter); err != nil {
		return err
	}
	if len(s.Notes) > MaxNotesLength {
		return fmt.Errorf("notes must be at most %d characters", MaxNotesLength)
	}
	return nil
}

// ValidateRating accepts a missing rating or one within MinRating..MaxRating.
func ValidateRating(field string, rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < MinRating || *rating > MaxRating {
		return fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidRating, field, MinRating, MaxRating)
	}
	return nil
}

// StressReduction is before minus after when both ratings are present.
func (s Summary) StressReduction() (int, bool) {
	if s.StressBefore == nil || s.StressAfter == nil {
		return 0, false
	}
	return *s.StressBefore - *s.StressAfter, true
}
