package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"mindgarden/backend/internal/breathing"
	apperrors "mindgarden/backend/internal/errors"
	"mindgarden/backend/internal/metrics"
	"mindgarden/backend/internal/model"
	"mindgarden/backend/internal/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200

	// A recorded session longer than a day is a client bug.
	maxSessionSeconds = 24 * 60 * 60
)

// SessionService records finished breathing sessions and reports on them.
type SessionService struct {
	repo    *repository.BreathingSessionRepository
	metrics *metrics.Metrics
	logger  *log.Logger
	now     func() time.Time
}

type SessionOption func(*SessionService)

// WithSessionClock replaces the wall clock used for timestamps and
// streaks, for tests.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionService) {
		s.now = now
	}
}

func NewSessionService(
	repo *repository.BreathingSessionRepository,
	m *metrics.Metrics,
	logger *log.Logger,
	opts ...SessionOption,
) *SessionService {
	s := &SessionService{
		repo:    repo,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stores a session that a client ran on its own machine.
func (s *SessionService) Record(ctx context.Context, userID string, summary breathing.Summary) (*model.BreathingSession, *apperrors.APIError) {
	if apiErr := validateSummary(summary); apiErr != nil {
		return nil, apiErr
	}

	now := s.now()
	session := newSessionRecord(userID, model.SourceClient, model.SessionCompleted, summary, nil, now)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	if err := s.repo.InsertSessionTx(ctx, tx, &session); err != nil {
		s.logger.Error("failed to record breathing session", "userID", userID, "err", err)
		return nil, apperrors.Internal("failed to record session")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	s.metrics.ObserveSession(model.SourceClient, session.CompletedCycles, session.DurationSeconds)
	s.logger.Info("breathing session recorded",
		"userID", userID,
		"sessionID", session.ID,
		"pattern", session.PatternName,
		"cycles", session.CompletedCycles,
		"seconds", session.DurationSeconds,
	)
	return &session, nil
}

func (s *SessionService) Get(ctx context.Context, userID, sessionID string) (*model.BreathingSession, *apperrors.APIError) {
	session, err := s.repo.GetSession(ctx, userID, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("session_not_found", "breathing session not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get session")
	}
	return session, nil
}

func (s *SessionService) History(ctx context.Context, userID string, limit int) ([]model.BreathingSession, *apperrors.APIError) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	sessions, err := s.repo.ListSessions(ctx, userID, limit)
	if err != nil {
		s.logger.Error("failed to list breathing sessions", "userID", userID, "err", err)
		return nil, apperrors.Internal("failed to get history")
	}
	return sessions, nil
}

func (s *SessionService) Stats(ctx context.Context, userID string) (*model.BreathingStats, *apperrors.APIError) {
	totals, err := s.repo.Totals(ctx, userID)
	if err != nil {
		s.logger.Error("failed to aggregate breathing sessions", "userID", userID, "err", err)
		return nil, apperrors.Internal("failed to get stats")
	}
	days, err := s.repo.PracticeDays(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list practice days", "userID", userID, "err", err)
		return nil, apperrors.Internal("failed to get stats")
	}

	longest, current := computeStreaks(days, s.now())
	return &model.BreathingStats{
		TotalSessions:          totals.Sessions,
		TotalMinutes:           (totals.DurationSeconds + 30) / 60,
		AverageStressReduction: totals.AverageStressReduction,
		LongestStreak:          longest,
		CurrentStreak:          current,
	}, nil
}

// insertLiveSessionTx stores a session closed by the live machine. The
// caller reports it with observeLive once tx has committed.
func (s *SessionService) insertLiveSessionTx(ctx context.Context, tx *sql.Tx, session *model.BreathingSession) error {
	return s.repo.InsertSessionTx(ctx, tx, session)
}

func (s *SessionService) observeLive(session *model.BreathingSession) {
	if session == nil {
		return
	}
	s.metrics.ObserveSession(model.SourceLive, session.CompletedCycles, session.DurationSeconds)
}

func validateSummary(summary breathing.Summary) *apperrors.APIError {
	if err := summary.Validate(); err != nil {
		if errors.Is(err, breathing.ErrInvalidRating) {
			return apperrors.Validation("invalid_rating", err)
		}
		return apperrors.Validation("invalid_session", err)
	}
	if summary.TotalDurationSeconds > maxSessionSeconds {
		return apperrors.BadRequest("invalid_session", "session duration must be at most 24 hours")
	}
	return nil
}

func newSessionRecord(
	userID, source, status string,
	summary breathing.Summary,
	startedAt *time.Time,
	now time.Time,
) model.BreathingSession {
	session := model.BreathingSession{
		ID:                uuid.NewString(),
		UserID:            userID,
		PatternName:       strings.TrimSpace(summary.PatternName),
		Source:            source,
		Status:            status,
		DurationSeconds:   summary.TotalDurationSeconds,
		DurationMinutes:   (summary.TotalDurationSeconds + 30) / 60,
		CompletedCycles:   summary.CompletedCycles,
		StressLevelBefore: summary.StressBefore,
		StressLevelAfter:  summary.StressAfter,
		StartedAt:         startedAt,
		CreatedAt:         now,
	}
	if notes := strings.TrimSpace(summary.Notes); notes != "" {
		session.Notes = &notes
	}
	return session
}
