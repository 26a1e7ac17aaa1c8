package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mindgarden/backend/internal/environment"
)

type GardenHandler struct {
	now func() time.Time
}

func NewGardenHandler(now func() time.Time) *GardenHandler {
	if now == nil {
		now = time.Now
	}
	return &GardenHandler{now: now}
}

func (h *GardenHandler) Environment(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"environment":    environment.At(h.now()),
		"weathers":       environment.Weathers(),
		"dayNightPeriod": environment.DefaultDayNightPeriod,
		"weatherPeriod":  environment.DefaultWeatherPeriod,
	})
}
