package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mindgarden/backend/internal/model"
)

const selectBreathingSession = `SELECT id, user_id, pattern_name, source, status, duration_seconds, completed_cycles,
        stress_before, stress_after, notes, started_at, created_at
 FROM breathing_sessions`

type BreathingSessionRepository struct {
	db *sql.DB
}

// SessionTotals are the aggregates behind a user's breathing stats.
type SessionTotals struct {
	Sessions               int
	DurationSeconds        int
	AverageStressReduction *float64
}

func NewBreathingSessionRepository(db *sql.DB) *BreathingSessionRepository {
	return &BreathingSessionRepository{db: db}
}

func (r *BreathingSessionRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *BreathingSessionRepository) InsertSessionTx(ctx context.Context, tx *sql.Tx, session *model.BreathingSession) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO breathing_sessions (
			id, user_id, pattern_name, source, status, duration_seconds, completed_cycles,
			stress_before, stress_after, notes, started_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.PatternName,
		session.Source,
		session.Status,
		session.DurationSeconds,
		session.CompletedCycles,
		nullableInt(session.StressLevelBefore),
		nullableInt(session.StressLevelAfter),
		nullableString(session.Notes),
		nullableTime(session.StartedAt),
		formatTime(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *BreathingSessionRepository) GetSession(ctx context.Context, userID, sessionID string) (*model.BreathingSession, error) {
	row := r.db.QueryRowContext(ctx, selectBreathingSession+` WHERE user_id = ? AND id = ?`, userID, sessionID)
	return scanBreathingSession(row)
}

func (r *BreathingSessionRepository) ListSessions(ctx context.Context, userID string, limit int) ([]model.BreathingSession, error) {
	rows, err := r.db.QueryContext(
		ctx,
		selectBreathingSession+`
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.BreathingSession, 0, limit)
	for rows.Next() {
		session, scanErr := scanBreathingSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

func (r *BreathingSessionRepository) Totals(ctx context.Context, userID string) (SessionTotals, error) {
	var totals SessionTotals
	var average sql.NullFloat64
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(duration_seconds), 0),
		        AVG(CASE WHEN stress_before IS NOT NULL AND stress_after IS NOT NULL
		                 THEN stress_before - stress_after END)
		 FROM breathing_sessions
		 WHERE user_id = ?`,
		userID,
	).Scan(&totals.Sessions, &totals.DurationSeconds, &average)
	if err != nil {
		return SessionTotals{}, fmt.Errorf("session totals: %w", err)
	}
	if average.Valid {
		value := average.Float64
		totals.AverageStressReduction = &value
	}
	return totals, nil
}

// PracticeDays returns the distinct UTC dates (YYYY-MM-DD) with at least
// one session, oldest first.
func (r *BreathingSessionRepository) PracticeDays(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT DISTINCT substr(created_at, 1, 10) AS day
		 FROM breathing_sessions
		 WHERE user_id = ?
		 ORDER BY day ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list practice days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan practice day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate practice days: %w", err)
	}
	return days, nil
}

func scanBreathingSession(s scanner) (*model.BreathingSession, error) {
	session := model.BreathingSession{}
	var stressBefore sql.NullInt64
	var stressAfter sql.NullInt64
	var notes sql.NullString
	var startedAt sql.NullString
	var createdAt string
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&session.PatternName,
		&session.Source,
		&session.Status,
		&session.DurationSeconds,
		&session.CompletedCycles,
		&stressBefore,
		&stressAfter,
		&notes,
		&startedAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session.StressLevelBefore = intFromNull(stressBefore)
	session.StressLevelAfter = intFromNull(stressAfter)
	if notes.Valid {
		value := notes.String
		session.Notes = &value
	}
	session.DurationMinutes = (session.DurationSeconds + 30) / 60

	if session.StartedAt, err = parseNullableTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse session started_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse session created_at: %w", err)
	}
	return &session, nil
}
