package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mindgarden/backend/internal/breathing"
	"mindgarden/backend/internal/model"
)

const selectBreathingState = `SELECT user_id, pattern_name, inhale_seconds, hold_seconds, exhale_seconds, rest_seconds,
        status, phase, seconds_remaining, completed_cycles, target_cycles, stress_before,
        started_at, session_started_at, version, updated_at
 FROM breathing_states WHERE user_id = ?`

type BreathingStateRepository struct {
	db *sql.DB
}

func NewBreathingStateRepository(db *sql.DB) *BreathingStateRepository {
	return &BreathingStateRepository{db: db}
}

func (r *BreathingStateRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *BreathingStateRepository) CreateInitialStateTx(ctx context.Context, tx *sql.Tx, userID string, now time.Time) error {
	pattern := breathing.DefaultPattern()
	initial, err := breathing.Initial(pattern)
	if err != nil {
		return fmt.Errorf("initial state: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO breathing_states (
			user_id, pattern_name, inhale_seconds, hold_seconds, exhale_seconds, rest_seconds,
			status, phase, seconds_remaining, completed_cycles, target_cycles, version, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID,
		pattern.Name,
		pattern.Inhale,
		pattern.Hold,
		pattern.Exhale,
		pattern.Rest,
		model.StatusIdle,
		string(initial.Phase),
		initial.SecondsRemaining,
		0,
		0,
		1,
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("create initial state: %w", err)
	}
	return nil
}

func (r *BreathingStateRepository) GetStateTx(ctx context.Context, tx *sql.Tx, userID string) (*model.BreathingState, error) {
	return scanBreathingState(tx.QueryRowContext(ctx, selectBreathingState, userID))
}

func (r *BreathingStateRepository) UpdateStateTx(ctx context.Context, tx *sql.Tx, state *model.BreathingState) error {
	result, err := tx.ExecContext(
		ctx,
		`UPDATE breathing_states
		 SET pattern_name = ?,
		     inhale_seconds = ?,
		     hold_seconds = ?,
		     exhale_seconds = ?,
		     rest_seconds = ?,
		     status = ?,
		     phase = ?,
		     seconds_remaining = ?,
		     completed_cycles = ?,
		     target_cycles = ?,
		     stress_before = ?,
		     started_at = ?,
		     session_started_at = ?,
		     version = ?,
		     updated_at = ?
		 WHERE user_id = ?`,
		state.Pattern.Name,
		state.Pattern.Inhale,
		state.Pattern.Hold,
		state.Pattern.Exhale,
		state.Pattern.Rest,
		state.Status,
		string(state.Phase),
		state.SecondsRemaining,
		state.CompletedCycles,
		state.TargetCycles,
		nullableInt(state.StressBefore),
		nullableTime(state.StartedAt),
		nullableTime(state.SessionStartedAt),
		state.Version,
		formatTime(state.UpdatedAt),
		state.UserID,
	)
	if err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBreathingState(s scanner) (*model.BreathingState, error) {
	state := model.BreathingState{}
	var phase string
	var stressBefore sql.NullInt64
	var startedAt sql.NullString
	var sessionStartedAt sql.NullString
	var updatedAt string
	err := s.Scan(
		&state.UserID,
		&state.Pattern.Name,
		&state.Pattern.Inhale,
		&state.Pattern.Hold,
		&state.Pattern.Exhale,
		&state.Pattern.Rest,
		&state.Status,
		&phase,
		&state.SecondsRemaining,
		&state.CompletedCycles,
		&state.TargetCycles,
		&stressBefore,
		&startedAt,
		&sessionStartedAt,
		&state.Version,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan state: %w", err)
	}

	state.Phase = breathing.Phase(phase)
	state.StressBefore = intFromNull(stressBefore)
	if known, ok := breathing.Lookup(state.Pattern.Name); ok && sameDurations(known, state.Pattern) {
		state.Pattern.Description = known.Description
	}

	if state.StartedAt, err = parseNullableTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse state started_at: %w", err)
	}
	if state.SessionStartedAt, err = parseNullableTime(sessionStartedAt); err != nil {
		return nil, fmt.Errorf("parse state session_started_at: %w", err)
	}
	if state.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse state updated_at: %w", err)
	}
	return &state, nil
}

func sameDurations(a, b breathing.Pattern) bool {
	return a.Inhale == b.Inhale && a.Hold == b.Hold && a.Exhale == b.Exhale && a.Rest == b.Rest
}

type scanner interface {
	Scan(dest ...any) error
}
