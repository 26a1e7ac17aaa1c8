package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStreaks(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name            string
		days            []string
		expectedLongest int
		expectedCurrent int
	}{
		{name: "no practice"},
		{
			name:            "today only",
			days:            []string{"2026-03-10"},
			expectedLongest: 1,
			expectedCurrent: 1,
		},
		{
			name:            "run ending yesterday is still alive",
			days:            []string{"2026-03-07", "2026-03-08", "2026-03-09"},
			expectedLongest: 3,
			expectedCurrent: 3,
		},
		{
			name:            "run broken two days ago",
			days:            []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-08"},
			expectedLongest: 4,
			expectedCurrent: 0,
		},
		{
			name:            "unsorted with duplicates and garbage",
			days:            []string{"2026-03-10", "bogus", "2026-03-09", "2026-03-10", "2026-02-28", "2026-03-01"},
			expectedLongest: 2,
			expectedCurrent: 2,
		},
		{
			name:            "across a month boundary",
			days:            []string{"2026-02-27", "2026-02-28", "2026-03-01"},
			expectedLongest: 3,
			expectedCurrent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			longest, current := computeStreaks(tt.days, now)
			assert.Equal(t, tt.expectedLongest, longest, "longest")
			assert.Equal(t, tt.expectedCurrent, current, "current")
		})
	}
}
