package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "mindgarden/backend/internal/errors"
	"mindgarden/backend/internal/middleware"
	"mindgarden/backend/internal/service"
)

// AuthHandler serves registration, login and the caller's own profile.
type AuthHandler struct {
	authService    *service.AuthService
	profileService *service.ProfileService
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type preferencesRequest struct {
	Theme         *string `json:"theme"`
	Notifications *bool   `json:"notifications"`
	Language      *string `json:"language"`
}

func NewAuthHandler(authService *service.AuthService, profileService *service.ProfileService) *AuthHandler {
	return &AuthHandler{authService: authService, profileService: profileService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	h.authenticate(c, http.StatusCreated, h.authService.Register)
}

func (h *AuthHandler) Login(c *gin.Context) {
	h.authenticate(c, http.StatusOK, h.authService.Login)
}

func (h *AuthHandler) authenticate(
	c *gin.Context,
	status int,
	fn func(ctx context.Context, email, password string) (*service.AuthResult, *apperrors.APIError),
) {
	var req authRequest
	if !bindJSON(c, &req) {
		return
	}

	result, apiErr := fn(c.Request.Context(), req.Email, req.Password)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(status, result)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}

	profile, apiErr := h.profileService.Get(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *AuthHandler) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := middleware.UserID(c)
	profile, apiErr := h.profileService.UpdatePreferences(c.Request.Context(), userID, service.PreferencesPatch{
		Theme:         req.Theme,
		Notifications: req.Notifications,
		Language:      req.Language,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
