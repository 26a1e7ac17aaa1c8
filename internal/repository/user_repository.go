package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mindgarden/backend/internal/model"
)

const selectUser = `SELECT id, email, password_hash, theme, notifications, language, created_at, updated_at
 FROM users`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateTx(ctx context.Context, tx *sql.Tx, user *model.User) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO users (id, email, password_hash, theme, notifications, language, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Preferences.Theme,
		user.Preferences.Notifications,
		user.Preferences.Language,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE email = ?`, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
}

func (r *UserRepository) UpdatePreferences(ctx context.Context, id string, prefs model.Preferences, now time.Time) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE users
		 SET theme = ?, notifications = ?, language = ?, updated_at = ?
		 WHERE id = ?`,
		prefs.Theme,
		prefs.Notifications,
		prefs.Language,
		formatTime(now),
		id,
	)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(s scanner) (*model.User, error) {
	var user model.User
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Preferences.Theme,
		&user.Preferences.Notifications,
		&user.Preferences.Language,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse user created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse user updated_at: %w", err)
	}
	return &user, nil
}
