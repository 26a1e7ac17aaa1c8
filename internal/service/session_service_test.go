package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mindgarden/backend/internal/breathing"
	"mindgarden/backend/internal/model"
)

func intPtr(v int) *int { return &v }

func TestValidateSummary(t *testing.T) {
	valid := breathing.Summary{PatternName: "Square Breathing", TotalDurationSeconds: 64, CompletedCycles: 4}

	tests := []struct {
		name     string
		mutate   func(*breathing.Summary)
		expected string
	}{
		{name: "valid", mutate: func(*breathing.Summary) {}},
		{name: "missing pattern", mutate: func(s *breathing.Summary) { s.PatternName = "  " }, expected: "invalid_session"},
		{name: "negative cycles", mutate: func(s *breathing.Summary) { s.CompletedCycles = -1 }, expected: "invalid_session"},
		{name: "rating too high", mutate: func(s *breathing.Summary) { s.StressAfter = intPtr(11) }, expected: "invalid_rating"},
		{name: "rating too low", mutate: func(s *breathing.Summary) { s.StressBefore = intPtr(0) }, expected: "invalid_rating"},
		{name: "longer than a day", mutate: func(s *breathing.Summary) { s.TotalDurationSeconds = maxSessionSeconds + 1 }, expected: "invalid_session"},
		{name: "notes too long", mutate: func(s *breathing.Summary) { s.Notes = strings.Repeat("x", breathing.MaxNotesLength+1) }, expected: "invalid_session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := valid
			tt.mutate(&summary)
			apiErr := validateSummary(summary)
			if tt.expected == "" {
				assert.Nil(t, apiErr)
				return
			}
			if assert.NotNil(t, apiErr) {
				assert.Equal(t, tt.expected, apiErr.Code)
				assert.Equal(t, 400, apiErr.Status)
			}
		})
	}
}

func TestNewSessionRecord(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	started := now.Add(-90 * time.Second)

	session := newSessionRecord("user-1", model.SourceLive, model.SessionStopped, breathing.Summary{
		PatternName:          " Deep Calm ",
		TotalDurationSeconds: 90,
		CompletedCycles:      6,
		Notes:                "   ",
	}, &started, now)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "Deep Calm", session.PatternName)
	assert.Equal(t, 2, session.DurationMinutes)
	assert.Nil(t, session.Notes, "blank notes are dropped")
	assert.Equal(t, &started, session.StartedAt)
	assert.Equal(t, now, session.CreatedAt)
}

func TestSessionClockIsOwnedBySessionService(t *testing.T) {
	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	sessions := NewSessionService(nil, nil, nil, WithSessionClock(func() time.Time { return fixed }))
	NewBreathingService(nil, sessions, nil, WithClock(func() time.Time { return fixed.Add(time.Hour) }))

	assert.Equal(t, fixed, sessions.now())
}
