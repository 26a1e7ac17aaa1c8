package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	apperrors "mindgarden/backend/internal/errors"
	"mindgarden/backend/internal/model"
	"mindgarden/backend/internal/repository"
)

const maxLanguageLength = 16

type ProfileService struct {
	users    *repository.UserRepository
	sessions *repository.BreathingSessionRepository
	logger   *log.Logger
}

// PreferencesPatch changes only the fields that are set.
type PreferencesPatch struct {
	Theme         *string
	Notifications *bool
	Language      *string
}

func NewProfileService(users *repository.UserRepository, sessions *repository.BreathingSessionRepository, logger *log.Logger) *ProfileService {
	return &ProfileService{users: users, sessions: sessions, logger: logger}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, *apperrors.APIError) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user_not_found", "user not found")
	}
	if err != nil {
		s.logger.Error("failed to get user", "userID", userID, "err", err)
		return nil, apperrors.Internal("failed to get profile")
	}

	totals, err := s.sessions.Totals(ctx, userID)
	if err != nil {
		s.logger.Error("failed to aggregate breathing sessions", "userID", userID, "err", err)
		return nil, apperrors.Internal("failed to get profile")
	}

	user.PasswordHash = ""
	return &model.Profile{
		User: *user,
		Stats: model.ProfileStats{
			MeditationMinutes: (totals.DurationSeconds + 30) / 60,
			BreathingSessions: totals.Sessions,
		},
	}, nil
}

func (s *ProfileService) UpdatePreferences(ctx context.Context, userID string, patch PreferencesPatch) (*model.Profile, *apperrors.APIError) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user_not_found", "user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get profile")
	}

	prefs, apiErr := applyPreferences(user.Preferences, patch)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.users.UpdatePreferences(ctx, userID, prefs, time.Now().UTC()); err != nil {
		s.logger.Error("failed to update preferences", "userID", userID, "err", err)
		return nil, apperrors.Internal("failed to update preferences")
	}
	return s.Get(ctx, userID)
}

func applyPreferences(prefs model.Preferences, patch PreferencesPatch) (model.Preferences, *apperrors.APIError) {
	if patch.Theme != nil {
		theme := strings.ToLower(strings.TrimSpace(*patch.Theme))
		if theme != model.ThemeLight && theme != model.ThemeDark {
			return prefs, apperrors.BadRequest("invalid_theme", "theme must be light or dark")
		}
		prefs.Theme = theme
	}
	if patch.Notifications != nil {
		prefs.Notifications = *patch.Notifications
	}
	if patch.Language != nil {
		language := strings.TrimSpace(*patch.Language)
		if !validLanguage(language) {
			return prefs, apperrors.BadRequest("invalid_language", "language must be a language tag such as en or pt-BR")
		}
		prefs.Language = language
	}
	return prefs, nil
}

func validLanguage(tag string) bool {
	if len(tag) < 2 || len(tag) > maxLanguageLength {
		return false
	}
	for _, r := range tag {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-') {
			return false
		}
	}
	return !strings.HasPrefix(tag, "-") && !strings.HasSuffix(tag, "-")
}
