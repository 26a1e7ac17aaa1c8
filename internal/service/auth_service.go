package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "mindgarden/backend/internal/errors"
	"mindgarden/backend/internal/model"
	"mindgarden/backend/internal/repository"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

// AuthService registers users, checks their passwords and issues the
// HS256 bearer tokens every breathing route requires.
type AuthService struct {
	userRepo  *repository.UserRepository
	stateRepo *repository.BreathingStateRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *log.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	stateRepo *repository.BreathingStateRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *log.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		stateRepo: stateRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Register creates the account and its idle breathing state in one
// transaction.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, *apperrors.APIError) {
	normalizedEmail, apiErr := normalizeEmail(email)
	if apiErr != nil {
		return nil, apiErr
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, apperrors.BadRequest("invalid_password", "password must be between 6 and 72 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to secure password")
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        normalizedEmail,
		PasswordHash: string(hash),
		Preferences:  model.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := s.stateRepo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	err = s.userRepo.CreateTx(ctx, tx, &user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.Conflict("email_exists", "email already registered", nil)
	}
	if err != nil {
		s.logger.Error("failed to create user", "err", err)
		return nil, apperrors.Internal("failed to create user")
	}
	if err := s.stateRepo.CreateInitialStateTx(ctx, tx, user.ID, now); err != nil {
		s.logger.Error("failed to initialize breathing state", "userID", user.ID, "err", err)
		return nil, apperrors.Internal("failed to initialize user state")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	s.logger.Info("user registered", "userID", user.ID)
	return s.result(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, *apperrors.APIError) {
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	if normalizedEmail == "" || password == "" {
		return nil, apperrors.BadRequest("invalid_credentials", "email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizedEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if err != nil {
		s.logger.Error("failed to query user", "err", err)
		return nil, apperrors.Internal("failed to query user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Debug("login rejected", "userID", user.ID)
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	return s.result(*user)
}

// ParseToken returns the user ID a valid, unexpired token was issued for.
func (s *AuthService) ParseToken(tokenString string) (string, *apperrors.APIError) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", apperrors.Unauthorized("invalid token")
	}
	if claims.Subject == "" {
		return "", apperrors.Unauthorized("invalid token subject")
	}
	return claims.Subject, nil
}

func (s *AuthService) result(user model.User) (*AuthResult, *apperrors.APIError) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperrors.Internal("failed to sign token")
	}

	user.PasswordHash = ""
	return &AuthResult{Token: signed, User: user}, nil
}

func normalizeEmail(email string) (string, *apperrors.APIError) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", apperrors.BadRequest("invalid_email", "a valid email is required")
	}
	return normalized, nil
}
