package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "mindgarden/backend/internal/errors"
)

const UserIDContextKey = "userID"

const bearerPrefix = "Bearer "

// TokenParser resolves a bearer token to a user ID.
type TokenParser interface {
	ParseToken(token string) (string, *apperrors.APIError)
}

// Auth rejects requests without a valid bearer token and stores the
// caller's user ID on the context.
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, apiErr := bearerToken(c.GetHeader("Authorization"))
		if apiErr != nil {
			abort(c, apiErr)
			return
		}

		userID, apiErr := tokens.ParseToken(token)
		if apiErr != nil {
			abort(c, apiErr)
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

func bearerToken(header string) (string, *apperrors.APIError) {
	if header == "" {
		return "", apperrors.Unauthorized("missing authorization header")
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", apperrors.Unauthorized("invalid authorization format")
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", apperrors.Unauthorized("invalid authorization format")
	}
	return token, nil
}

func UserID(c *gin.Context) string {
	return c.GetString(UserIDContextKey)
}

func abort(c *gin.Context, apiErr *apperrors.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, apiErr.Envelope())
}
