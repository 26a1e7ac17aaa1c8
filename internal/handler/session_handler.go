package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mindgarden/backend/internal/breathing"
	apperrors "mindgarden/backend/internal/errors"
	"mindgarden/backend/internal/middleware"
	"mindgarden/backend/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

// recordSessionRequest accepts either an exact duration in seconds or, from
// older clients, whole minutes.
type recordSessionRequest struct {
	PatternName          string `json:"patternName"`
	TotalDurationSeconds *int   `json:"totalDurationSeconds"`
	DurationMinutes      *int   `json:"durationMinutes"`
	CompletedCycles      int    `json:"completedCycles"`
	StressLevelBefore    *int   `json:"stressLevelBefore"`
	StressLevelAfter     *int   `json:"stressLevelAfter"`
	Notes                string `json:"notes"`
}

// maxDurationMinutes keeps the minutes conversion from overflowing; longer
// sessions are rejected by the service either way.
const maxDurationMinutes = 24 * 60

func (r recordSessionRequest) summary() (breathing.Summary, *apperrors.APIError) {
	seconds := 0
	switch {
	case r.TotalDurationSeconds != nil:
		seconds = *r.TotalDurationSeconds
	case r.DurationMinutes != nil:
		if *r.DurationMinutes < 0 || *r.DurationMinutes > maxDurationMinutes {
			return breathing.Summary{}, apperrors.BadRequest("invalid_session", "durationMinutes must be between 0 and 1440")
		}
		seconds = *r.DurationMinutes * 60
	}
	return breathing.Summary{
		PatternName:          r.PatternName,
		TotalDurationSeconds: seconds,
		CompletedCycles:      r.CompletedCycles,
		StressBefore:         r.StressLevelBefore,
		StressAfter:          r.StressLevelAfter,
		Notes:                r.Notes,
	}, nil
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Record(c *gin.Context) {
	var req recordSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	summary, apiErr := req.summary()
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	userID := middleware.UserID(c)
	session, apiErr := h.sessionService.Record(c.Request.Context(), userID, summary)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	session, apiErr := h.sessionService.Get(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) History(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}

	limit := 0
	if rawLimit := c.Query("limit"); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil {
			limit = parsed
		}
	}

	sessions, apiErr := h.sessionService.History(c.Request.Context(), userID, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SessionHandler) Stats(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}

	stats, apiErr := h.sessionService.Stats(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
