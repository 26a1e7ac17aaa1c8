package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindgarden/backend/internal/breathing"
	"mindgarden/backend/internal/middleware"
	"mindgarden/backend/internal/service"
)

type BreathingHandler struct {
	breathingService *service.BreathingService
}

type versionRequest struct {
	BaseVersion int `json:"baseVersion"`
}

type startRequest struct {
	BaseVersion       int  `json:"baseVersion"`
	TargetCycles      int  `json:"targetCycles"`
	StressLevelBefore *int `json:"stressLevelBefore"`
}

type selectPatternRequest struct {
	BaseVersion int                `json:"baseVersion"`
	Name        string             `json:"name"`
	Custom      *breathing.Pattern `json:"custom"`
}

type finishRequest struct {
	BaseVersion      int    `json:"baseVersion"`
	StressLevelAfter *int   `json:"stressLevelAfter"`
	Notes            string `json:"notes"`
}

func NewBreathingHandler(breathingService *service.BreathingService) *BreathingHandler {
	return &BreathingHandler{breathingService: breathingService}
}

func (h *BreathingHandler) ListPatterns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"patterns":       breathing.Catalog(),
		"defaultPattern": breathing.DefaultPatternName,
	})
}

func (h *BreathingHandler) GetState(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}

	state, apiErr := h.breathingService.GetState(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *BreathingHandler) Start(c *gin.Context) {
	var req startRequest
	if !bindJSON(c, &req) || !requireBaseVersion(c, req.BaseVersion) {
		return
	}

	userID := middleware.UserID(c)
	state, apiErr := h.breathingService.Start(c.Request.Context(), userID, service.StartInput{
		BaseVersion:  req.BaseVersion,
		TargetCycles: req.TargetCycles,
		StressBefore: req.StressLevelBefore,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *BreathingHandler) Pause(c *gin.Context) {
	var req versionRequest
	if !bindJSON(c, &req) || !requireBaseVersion(c, req.BaseVersion) {
		return
	}

	userID := middleware.UserID(c)
	state, apiErr := h.breathingService.Pause(c.Request.Context(), userID, req.BaseVersion)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *BreathingHandler) Reset(c *gin.Context) {
	var req versionRequest
	if !bindJSON(c, &req) || !requireBaseVersion(c, req.BaseVersion) {
		return
	}

	userID := middleware.UserID(c)
	state, apiErr := h.breathingService.Reset(c.Request.Context(), userID, req.BaseVersion)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *BreathingHandler) SelectPattern(c *gin.Context) {
	var req selectPatternRequest
	if !bindJSON(c, &req) || !requireBaseVersion(c, req.BaseVersion) {
		return
	}

	userID := middleware.UserID(c)
	state, apiErr := h.breathingService.SelectPattern(c.Request.Context(), userID, service.SelectPatternInput{
		BaseVersion: req.BaseVersion,
		Name:        req.Name,
		Custom:      req.Custom,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *BreathingHandler) Finish(c *gin.Context) {
	var req finishRequest
	if !bindJSON(c, &req) || !requireBaseVersion(c, req.BaseVersion) {
		return
	}

	userID := middleware.UserID(c)
	result, apiErr := h.breathingService.Finish(c.Request.Context(), userID, service.FinishInput{
		BaseVersion: req.BaseVersion,
		StressAfter: req.StressLevelAfter,
		Notes:       req.Notes,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}
