package breathing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewSummary(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start(square))
	for i := 0; i < 35; i++ {
		m.Tick()
	}
	m.Stop()

	summary, err := NewSummary(m, intPtr(8), intPtr(5), "  felt calmer  ")
	require.NoError(t, err)
	assert.Equal(t, "Square Breathing", summary.PatternName)
	assert.Equal(t, 2, summary.CompletedCycles)
	assert.Equal(t, 35, summary.TotalDurationSeconds)
	assert.Equal(t, "felt calmer", summary.Notes)

	reduction, ok := summary.StressReduction()
	assert.True(t, ok)
	assert.Equal(t, 3, reduction)
}

func TestNewSummary_RejectsOutOfRangeRatings(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start(square))

	_, err := NewSummary(m, intPtr(0), nil, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = NewSummary(m, nil, intPtr(11), "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	summary, err := NewSummary(m, nil, nil, "")
	require.NoError(t, err)
	_, ok := summary.StressReduction()
	assert.False(t, ok)
}

func TestSummary_Validate(t *testing.T) {
	assert.Error(t, Summary{}.Validate())
	assert.Error(t, Summary{PatternName: "x", TotalDurationSeconds: -1}.Validate())
	assert.NoError(t, Summary{PatternName: "x", TotalDurationSeconds: 60, CompletedCycles: 4}.Validate())
}
