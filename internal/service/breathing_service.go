package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"mindgarden/backend/internal/breathing"
	apperrors "mindgarden/backend/internal/errors"
	"mindgarden/backend/internal/model"
	"mindgarden/backend/internal/repository"
)

const customPatternName = "Custom"

// BreathingService keeps one live breathing session per user in sync
// across devices.
type BreathingService struct {
	repo     *repository.BreathingStateRepository
	sessions *SessionService
	logger   *log.Logger
	now      func() time.Time
}

// StateView is the live state as of ServerTime.
type StateView struct {
	UserID               string            `json:"userId"`
	Pattern              breathing.Pattern `json:"pattern"`
	Status               string            `json:"status"`
	Phase                breathing.Phase   `json:"phase"`
	Instruction          string            `json:"instruction"`
	SecondsRemaining     int               `json:"secondsRemaining"`
	PhaseDurationSeconds int               `json:"phaseDurationSeconds"`
	CompletedCycles      int               `json:"completedCycles"`
	TargetCycles         int               `json:"targetCycles"`
	ElapsedSeconds       int               `json:"elapsedSeconds"`
	StressLevelBefore    *int              `json:"stressLevelBefore,omitempty"`
	StartedAt            *time.Time        `json:"startedAt,omitempty"`
	SessionStartedAt     *time.Time        `json:"sessionStartedAt,omitempty"`
	Version              int               `json:"version"`
	UpdatedAt            time.Time         `json:"updatedAt"`
	ServerTime           time.Time         `json:"serverTime"`
}

type StartInput struct {
	BaseVersion  int
	TargetCycles int
	StressBefore *int
}

type SelectPatternInput struct {
	BaseVersion int
	Name        string
	Custom      *breathing.Pattern
}

type FinishInput struct {
	BaseVersion int
	StressAfter *int
	Notes       string
}

type FinishResult struct {
	State   StateView               `json:"state"`
	Session *model.BreathingSession `json:"session,omitempty"`
}

type BreathingOption func(*BreathingService)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) BreathingOption {
	return func(s *BreathingService) {
		s.now = now
	}
}

func NewBreathingService(
	repo *repository.BreathingStateRepository,
	sessions *SessionService,
	logger *log.Logger,
	opts ...BreathingOption,
) *BreathingService {
	s := &BreathingService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BreathingService) GetState(ctx context.Context, userID string) (*StateView, *apperrors.APIError) {
	return s.mutate(ctx, userID, 0, func(ctx context.Context, tx *sql.Tx, state *model.BreathingState, now time.Time) (bool, *apperrors.APIError) {
		return false, nil
	})
}

// Start begins a session from idle or resumes a paused one.
func (s *BreathingService) Start(ctx context.Context, userID string, input StartInput) (*StateView, *apperrors.APIError) {
	if input.TargetCycles < 0 {
		return nil, apperrors.BadRequest("invalid_target_cycles", "targetCycles must not be negative")
	}
	if err := breathing.ValidateRating("stressLevelBefore", input.StressBefore); err != nil {
		return nil, apperrors.Validation("invalid_rating", err)
	}

	return s.mutate(ctx, userID, input.BaseVersion, func(ctx context.Context, tx *sql.Tx, state *model.BreathingState, now time.Time) (bool, *apperrors.APIError) {
		switch state.Status {
		case model.StatusRunning:
			return false, nil
		case model.StatusIdle:
			initial, err := breathing.Initial(state.Pattern)
			if err != nil {
				return false, apperrors.Validation("invalid_pattern", err)
			}
			state.Apply(initial)
			state.TargetCycles = input.TargetCycles
			state.StressBefore = input.StressBefore
			state.SessionStartedAt = &now
		}

		state.Status = model.StatusRunning
		state.StartedAt = &now
		return true, nil
	})
}

// Pause stops the countdown and keeps phase, remaining seconds and cycles.
func (s *BreathingService) Pause(ctx context.Context, userID string, baseVersion int) (*StateView, *apperrors.APIError) {
	return s.mutate(ctx, userID, baseVersion, func(ctx context.Context, tx *sql.Tx, state *model.BreathingState, now time.Time) (bool, *apperrors.APIError) {
		if state.Status != model.StatusRunning {
			return false, nil
		}
		state.Apply(s.currentState(state, now))
		state.Status = model.StatusPaused
		state.StartedAt = nil
		return true, nil
	})
}

// Reset abandons the current session without recording it.
func (s *BreathingService) Reset(ctx context.Context, userID string, baseVersion int) (*StateView, *apperrors.APIError) {
	return s.mutate(ctx, userID, baseVersion, func(ctx context.Context, tx *sql.Tx, state *model.BreathingState, now time.Time) (bool, *apperrors.APIError) {
		if err := resetState(state, state.Pattern); err != nil {
			return false, apperrors.Validation("invalid_pattern", err)
		}
		return true, nil
	})
}

// SelectPattern switches pattern while no session is running.
func (s *BreathingService) SelectPattern(ctx context.Context, userID string, input SelectPatternInput) (*StateView, *apperrors.APIError) {
	pattern, apiErr := resolvePattern(input)
	if apiErr != nil {
		return nil, apiErr
	}

	return s.mutate(ctx, userID, input.BaseVersion, func(ctx context.Context, tx *sql.Tx, state *model.BreathingState, now time.Time) (bool, *apperrors.APIError) {
		if state.Status == model.StatusRunning {
			return false, apperrors.Conflict("session_active", "pause or reset the running session before changing pattern", nil)
		}
		if err := resetState(state, pattern); err != nil {
			return false, apperrors.Validation("invalid_pattern", err)
		}
		return true, nil
	})
}

// Finish ends the session, records it when any time has elapsed, and
// returns to idle.
func (s *BreathingService) Finish(ctx context.Context, userID string, input FinishInput) (*FinishResult, *apperrors.APIError) {
	if err := breathing.ValidateRating("stressLevelAfter", input.StressAfter); err != nil {
		return nil, apperrors.Validation("invalid_rating", err)
	}

	var recorded *model.BreathingSession
	view, apiErr := s.transact(ctx, userID, input.BaseVersion, false, func(ctx context.Context, tx *sql.Tx, state *model.BreathingState, now time.Time) (bool, *apperrors.APIError) {
		if state.Status == model.StatusIdle {
			return false, apperrors.BadRequest("no_active_session", "no breathing session in progress")
		}

		machine, err := breathing.Restore(state.Pattern, s.currentState(state, now))
		if err != nil {
			return false, apperrors.Validation("invalid_pattern", err)
		}
		machine.Stop()
		summary, err := breathing.NewSummary(machine, state.StressBefore, input.StressAfter, input.Notes)
		if err != nil {
			return false, apperrors.Validation("invalid_session", err)
		}
		summary = capToTarget(summary, state)

		if summary.TotalDurationSeconds > 0 {
			status := model.SessionCompleted
			if state.TargetCycles > 0 && summary.CompletedCycles < state.TargetCycles {
				status = model.SessionStopped
			}
			session := newSessionRecord(state.UserID, model.SourceLive, status, summary, state.SessionStartedAt, now)
			if err := s.sessions.insertLiveSessionTx(ctx, tx, &session); err != nil {
				s.logger.Error("failed to record breathing session", "userID", state.UserID, "err", err)
				return false, apperrors.Internal("failed to record session")
			}
			recorded = &session
		}

		if err := resetState(state, state.Pattern); err != nil {
			return false, apperrors.Validation("invalid_pattern", err)
		}
		return true, nil
	})
	if apiErr != nil {
		return nil, apiErr
	}

	if recorded != nil {
		s.sessions.observeLive(recorded)
		s.logger.Info("breathing session finished",
			"userID", userID,
			"sessionID", recorded.ID,
			"status", recorded.Status,
			"cycles", recorded.CompletedCycles,
			"seconds", recorded.DurationSeconds,
		)
	}
	return &FinishResult{State: *view, Session: recorded}, nil
}

type mutation func(ctx context.Context, tx *sql.Tx, state *model.BreathingState, now time.Time) (changed bool, apiErr *apperrors.APIError)

func (s *BreathingService) mutate(ctx context.Context, userID string, baseVersion int, fn mutation) (*StateView, *apperrors.APIError) {
	return s.transact(ctx, userID, baseVersion, true, fn)
}

// transact loads and version-checks the state inside one transaction,
// applies fn and persists the result when fn reports a change. With
// normalize set, a running session that reached its target is recorded
// and closed first. A baseVersion of zero skips the version check.
func (s *BreathingService) transact(ctx context.Context, userID string, baseVersion int, normalize bool, fn mutation) (*StateView, *apperrors.APIError) {
	now := s.now()
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	state, err := s.repo.GetStateTx(ctx, tx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("state_not_found", "breathing state not found")
	}
	if err != nil {
		s.logger.Error("failed to get breathing state", "userID", userID, "err", err)
		return nil, apperrors.Internal("failed to get state")
	}

	var closed *model.BreathingSession
	if normalize {
		var apiErr *apperrors.APIError
		closed, apiErr = s.normalizeCompletedSession(ctx, tx, state, now)
		if apiErr != nil {
			return nil, apiErr
		}
	}
	commit := func() *apperrors.APIError {
		if err := tx.Commit(); err != nil {
			return apperrors.Internal("failed to commit transaction")
		}
		s.sessions.observeLive(closed)
		return nil
	}

	if apiErr := s.ensureVersion(baseVersion, state, now); apiErr != nil {
		if closed != nil {
			// keep the completed session even though the caller is stale
			if commitErr := commit(); commitErr != nil {
				return nil, commitErr
			}
		}
		return nil, apiErr
	}

	changed, apiErr := fn(ctx, tx, state, now)
	if apiErr != nil {
		// normalization is kept, the mutation is not
		if closed != nil {
			if commitErr := commit(); commitErr != nil {
				return nil, commitErr
			}
		}
		return nil, apiErr
	}

	if changed {
		state.UpdatedAt = now
		state.Version++
		if err := s.repo.UpdateStateTx(ctx, tx, state); err != nil {
			s.logger.Error("failed to update breathing state", "userID", userID, "err", err)
			return nil, apperrors.Internal("failed to update state")
		}
	}

	if commitErr := commit(); commitErr != nil {
		return nil, commitErr
	}

	view := s.toStateView(state, now)
	return &view, nil
}

// normalizeCompletedSession records and closes a running session whose
// target cycle count has been reached since it was last persisted, and
// returns the recorded session.
func (s *BreathingService) normalizeCompletedSession(ctx context.Context, tx *sql.Tx, state *model.BreathingState, now time.Time) (*model.BreathingSession, *apperrors.APIError) {
	if state.Status != model.StatusRunning || state.TargetCycles <= 0 {
		return nil, nil
	}
	if s.currentState(state, now).CompletedCycles < state.TargetCycles {
		return nil, nil
	}

	summary := capToTarget(breathing.Summary{
		PatternName:     state.Pattern.Name,
		CompletedCycles: state.TargetCycles,
		StressBefore:    state.StressBefore,
	}, state)
	session := newSessionRecord(state.UserID, model.SourceLive, model.SessionCompleted, summary, state.SessionStartedAt, now)
	if err := s.sessions.insertLiveSessionTx(ctx, tx, &session); err != nil {
		s.logger.Error("failed to record completed breathing session", "userID", state.UserID, "err", err)
		return nil, apperrors.Internal("failed to record session")
	}

	if err := resetState(state, state.Pattern); err != nil {
		return nil, apperrors.Validation("invalid_pattern", err)
	}
	state.UpdatedAt = now
	state.Version++
	if err := s.repo.UpdateStateTx(ctx, tx, state); err != nil {
		return nil, apperrors.Internal("failed to persist completed state")
	}

	s.logger.Info("breathing session reached target", "userID", state.UserID, "sessionID", session.ID, "cycles", session.CompletedCycles)
	return &session, nil
}

func (s *BreathingService) ensureVersion(baseVersion int, state *model.BreathingState, now time.Time) *apperrors.APIError {
	if baseVersion <= 0 || baseVersion == state.Version {
		return nil
	}
	view := s.toStateView(state, now)
	return apperrors.Conflict("state_conflict", "state changed on another device", map[string]any{
		"state": view,
	})
}

// currentState derives the machine state at now from the persisted
// snapshot.
func (s *BreathingService) currentState(state *model.BreathingState, now time.Time) breathing.State {
	snapshot := state.Snapshot()
	if state.Status != model.StatusRunning || state.StartedAt == nil {
		return snapshot
	}

	elapsed := int(now.Sub(*state.StartedAt) / time.Second)
	if elapsed <= 0 {
		return snapshot
	}
	return breathing.AdvanceBy(state.Pattern, snapshot, elapsed)
}

func (s *BreathingService) toStateView(state *model.BreathingState, now time.Time) StateView {
	current := s.currentState(state, now)
	view := StateView{
		UserID:               state.UserID,
		Pattern:              state.Pattern,
		Status:               state.Status,
		Phase:                current.Phase,
		Instruction:          current.Phase.Instruction(),
		SecondsRemaining:     current.SecondsRemaining,
		PhaseDurationSeconds: state.Pattern.Duration(current.Phase),
		CompletedCycles:      current.CompletedCycles,
		TargetCycles:         state.TargetCycles,
		ElapsedSeconds:       breathing.Elapsed(state.Pattern, current),
		StressLevelBefore:    state.StressBefore,
		SessionStartedAt:     state.SessionStartedAt,
		Version:              state.Version,
		UpdatedAt:            state.UpdatedAt,
		ServerTime:           now,
	}
	if state.Status == model.StatusRunning {
		view.StartedAt = state.StartedAt
	}
	return view
}

// capToTarget trims a summary that ran past the target cycle count to
// exactly the target.
func capToTarget(summary breathing.Summary, state *model.BreathingState) breathing.Summary {
	if state.TargetCycles <= 0 || summary.CompletedCycles < state.TargetCycles {
		return summary
	}
	summary.CompletedCycles = state.TargetCycles
	summary.TotalDurationSeconds = state.TargetCycles * state.Pattern.CycleSeconds()
	return summary
}

func resetState(state *model.BreathingState, pattern breathing.Pattern) error {
	initial, err := breathing.Initial(pattern)
	if err != nil {
		return err
	}
	state.Pattern = pattern
	state.Apply(initial)
	state.Status = model.StatusIdle
	state.TargetCycles = 0
	state.StressBefore = nil
	state.StartedAt = nil
	state.SessionStartedAt = nil
	return nil
}

func resolvePattern(input SelectPatternInput) (breathing.Pattern, *apperrors.APIError) {
	if input.Custom != nil {
		pattern := *input.Custom
		pattern.Name = strings.TrimSpace(pattern.Name)
		if pattern.Name == "" {
			pattern.Name = customPatternName
		}
		if err := pattern.Validate(); err != nil {
			return breathing.Pattern{}, apperrors.Validation("invalid_pattern", err)
		}
		return pattern, nil
	}

	pattern, ok := breathing.Lookup(input.Name)
	if !ok {
		return breathing.Pattern{}, apperrors.BadRequest("unknown_pattern", "unknown breathing pattern")
	}
	return pattern, nil
}
