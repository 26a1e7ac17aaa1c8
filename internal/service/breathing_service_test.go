package service_test

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgarden/backend/internal/breathing"
	"mindgarden/backend/internal/db"
	"mindgarden/backend/internal/logging"
	"mindgarden/backend/internal/metrics"
	"mindgarden/backend/internal/model"
	"mindgarden/backend/internal/repository"
	"mindgarden/backend/internal/service"
	"mindgarden/backend/migrations"
)

type harness struct {
	breathing *service.BreathingService
	sessions  *service.SessionService
	metrics   *metrics.Metrics
	now       time.Time
	userID    string
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	_, err = db.RunMigrations(database, migrations.FS)
	require.NoError(t, err)

	logger := logging.Discard()
	h := &harness{
		metrics: metrics.New(),
		now:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	stateRepo := repository.NewBreathingStateRepository(database)
	h.sessions = service.NewSessionService(repository.NewBreathingSessionRepository(database), h.metrics, logger, service.WithSessionClock(clock))
	h.breathing = service.NewBreathingService(stateRepo, h.sessions, logger, service.WithClock(clock))

	auth := service.NewAuthService(repository.NewUserRepository(database), stateRepo, "secret", time.Hour, logger)
	result, apiErr := auth.Register(context.Background(), "breather@example.com", "123456")
	require.Nil(t, apiErr)
	h.userID = result.User.ID
	return h
}

func TestBreathingService_PauseAndResumeKeepPosition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	state, apiErr := h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: 1})
	require.Nil(t, apiErr)

	h.advance(17 * time.Second)
	state, apiErr = h.breathing.Pause(ctx, h.userID, state.Version)
	require.Nil(t, apiErr)
	assert.Equal(t, model.StatusPaused, state.Status)
	assert.Equal(t, breathing.PhaseInhale, state.Phase)
	assert.Equal(t, 3, state.SecondsRemaining)
	assert.Equal(t, 1, state.CompletedCycles)
	assert.Nil(t, state.StartedAt)

	h.advance(10 * time.Minute)
	state, apiErr = h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: state.Version, TargetCycles: 9})
	require.Nil(t, apiErr)
	assert.Equal(t, model.StatusRunning, state.Status)
	assert.Equal(t, 3, state.SecondsRemaining)
	assert.Zero(t, state.TargetCycles, "resuming keeps the original target")

	h.advance(3 * time.Second)
	state, apiErr = h.breathing.GetState(ctx, h.userID)
	require.Nil(t, apiErr)
	assert.Equal(t, breathing.PhaseHold, state.Phase)
	assert.Equal(t, 4, state.SecondsRemaining)
	assert.Equal(t, 20, state.ElapsedSeconds)
}

func TestBreathingService_StartWhileRunningIsNoop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, apiErr := h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: 1})
	require.Nil(t, apiErr)
	second, apiErr := h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: first.Version})
	require.Nil(t, apiErr)
	assert.Equal(t, first.Version, second.Version)
}

func TestBreathingService_FinishBeforeTargetIsStopped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	state, apiErr := h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: 1, TargetCycles: 3, StressBefore: intPtr(6)})
	require.Nil(t, apiErr)

	h.advance(20 * time.Second)
	result, apiErr := h.breathing.Finish(ctx, h.userID, service.FinishInput{BaseVersion: state.Version, StressAfter: intPtr(4)})
	require.Nil(t, apiErr)
	require.NotNil(t, result.Session)
	assert.Equal(t, model.SessionStopped, result.Session.Status)
	assert.Equal(t, 20, result.Session.DurationSeconds)
	assert.Equal(t, 1, result.Session.CompletedCycles)
	assert.Equal(t, model.StatusIdle, result.State.Status)
	assert.Zero(t, result.State.TargetCycles)
}

func TestBreathingService_FinishPastTargetIsCapped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	state, apiErr := h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: 1, TargetCycles: 1})
	require.Nil(t, apiErr)

	// Finish closes the overrun session itself so the rating lands on it.
	h.advance(21 * time.Second)
	result, apiErr := h.breathing.Finish(ctx, h.userID, service.FinishInput{BaseVersion: state.Version, StressAfter: intPtr(2), Notes: "good"})
	require.Nil(t, apiErr)
	require.NotNil(t, result.Session)
	assert.Equal(t, model.SessionCompleted, result.Session.Status)
	assert.Equal(t, 1, result.Session.CompletedCycles)
	assert.Equal(t, 16, result.Session.DurationSeconds)
	require.NotNil(t, result.Session.StressLevelAfter)
	assert.Equal(t, 2, *result.Session.StressLevelAfter)
}

func TestBreathingService_FinishWithoutElapsedTimeRecordsNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	state, apiErr := h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: 1})
	require.Nil(t, apiErr)
	result, apiErr := h.breathing.Finish(ctx, h.userID, service.FinishInput{BaseVersion: state.Version})
	require.Nil(t, apiErr)
	assert.Nil(t, result.Session)

	history, apiErr := h.sessions.History(ctx, h.userID, 0)
	require.Nil(t, apiErr)
	assert.Empty(t, history)
}

func TestBreathingService_StaleWriterStillClosesCompletedSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, apiErr := h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: 1, TargetCycles: 1})
	require.Nil(t, apiErr)

	h.advance(30 * time.Second)
	_, apiErr = h.breathing.Pause(ctx, h.userID, 1)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "state_conflict", apiErr.Code)

	history, historyErr := h.sessions.History(ctx, h.userID, 10)
	require.Nil(t, historyErr)
	require.Len(t, history, 1)
	assert.Equal(t, model.SourceLive, history[0].Source)
	assert.Equal(t, 16, history[0].DurationSeconds)

	state, apiErr := h.breathing.GetState(ctx, h.userID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.StatusIdle, state.Status)
	assert.Equal(t, 3, state.Version)
}

func TestBreathingService_PausedSessionIsNotAutoClosed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	state, apiErr := h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: 1, TargetCycles: 1})
	require.Nil(t, apiErr)
	h.advance(8 * time.Second)
	state, apiErr = h.breathing.Pause(ctx, h.userID, state.Version)
	require.Nil(t, apiErr)

	h.advance(time.Hour)
	state, apiErr = h.breathing.GetState(ctx, h.userID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.StatusPaused, state.Status)
	assert.Equal(t, 8, state.ElapsedSeconds)
}

func TestBreathingService_ResetRejectsUnknownUser(t *testing.T) {
	h := newHarness(t)

	_, apiErr := h.breathing.Reset(context.Background(), "nobody", 1)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestBreathingService_CountsLiveSessionsOnceCommitted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	state, apiErr := h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: 1, TargetCycles: 1})
	require.Nil(t, apiErr)
	assertLiveSessions(t, h, 0)

	// A stale pause still commits the session that reached its target.
	h.advance(30 * time.Second)
	_, apiErr = h.breathing.Pause(ctx, h.userID, state.Version)
	require.NotNil(t, apiErr)
	assertLiveSessions(t, h, 1)

	current, apiErr := h.breathing.GetState(ctx, h.userID)
	require.Nil(t, apiErr)
	state, apiErr = h.breathing.Start(ctx, h.userID, service.StartInput{BaseVersion: current.Version})
	require.Nil(t, apiErr)
	h.advance(5 * time.Second)
	_, apiErr = h.breathing.Finish(ctx, h.userID, service.FinishInput{BaseVersion: state.Version})
	require.Nil(t, apiErr)
	assertLiveSessions(t, h, 2)

	// A rejected finish records nothing.
	_, apiErr = h.breathing.Finish(ctx, h.userID, service.FinishInput{BaseVersion: state.Version + 1})
	require.NotNil(t, apiErr)
	assertLiveSessions(t, h, 2)
}

func assertLiveSessions(t *testing.T, h *harness, want int) {
	t.Helper()
	expected := fmt.Sprintf(`
# HELP mindgarden_breathing_sessions_recorded_total Breathing sessions recorded by source.
# TYPE mindgarden_breathing_sessions_recorded_total counter
mindgarden_breathing_sessions_recorded_total{source="live"} %d
`, want)
	if want == 0 {
		count, err := testutil.GatherAndCount(h.metrics.Registry(), "mindgarden_breathing_sessions_recorded_total")
		require.NoError(t, err)
		assert.Zero(t, count)
		return
	}
	assert.NoError(t, testutil.GatherAndCompare(h.metrics.Registry(), strings.NewReader(expected), "mindgarden_breathing_sessions_recorded_total"))
}

func intPtr(v int) *int { return &v }
