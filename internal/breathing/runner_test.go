package breathing

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestRunner_StopsAtTargetCycles(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start(square))

	var ticks int
	runner := NewRunner(m,
		WithInterval(time.Millisecond),
		WithTargetCycles(2),
		WithLogger(quietLogger()),
		WithOnTick(func(State) { ticks++ }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	progress, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Progress{CompletedCycles: 2, ElapsedSeconds: 32}, progress)
	assert.Equal(t, 32, ticks)
	assert.False(t, m.Running())
}

func TestRunner_CancelStopsMachine(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start(deepCalm))

	ctx, cancel := context.WithCancel(context.Background())
	var seen int
	runner := NewRunner(m,
		WithInterval(time.Millisecond),
		WithLogger(quietLogger()),
		WithOnTick(func(State) {
			seen++
			if seen == 3 {
				cancel()
			}
		}),
	)

	progress, err := runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, m.Running())
	assert.Equal(t, seen, progress.ElapsedSeconds)
}

func TestRunner_RequiresRunningMachine(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Reset(square))

	_, err := NewRunner(m, WithLogger(quietLogger())).Run(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
}
