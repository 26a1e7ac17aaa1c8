package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "mindgarden/backend/internal/errors"
)

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	if apiErr == nil {
		apiErr = apperrors.Internal("")
	}

	c.JSON(apiErr.Status, apiErr.Envelope())
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return false
	}
	return true
}

func requireBaseVersion(c *gin.Context, baseVersion int) bool {
	if baseVersion <= 0 {
		writeError(c, apperrors.BadRequest("invalid_base_version", "baseVersion is required"))
		return false
	}
	return true
}

func requireUser(c *gin.Context, userID string) bool {
	if userID == "" {
		writeError(c, apperrors.Unauthorized(""))
		return false
	}
	return true
}
