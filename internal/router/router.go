package router

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"mindgarden/backend/internal/handler"
	"mindgarden/backend/internal/metrics"
	"mindgarden/backend/internal/middleware"
	"mindgarden/backend/internal/service"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Breathing *handler.BreathingHandler
	Session   *handler.SessionHandler
	Garden    *handler.GardenHandler
}

func New(
	authService *service.AuthService,
	handlers Handlers,
	m *metrics.Metrics,
	logger *log.Logger,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestLogger(logger, m), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)

	profile := api.Group("/profile")
	profile.Use(middleware.Auth(authService))
	profile.GET("", handlers.Auth.Profile)
	profile.PATCH("", handlers.Auth.UpdatePreferences)

	api.GET("/breathing/patterns", handlers.Breathing.ListPatterns)
	api.GET("/garden/environment", handlers.Garden.Environment)

	breathing := api.Group("/breathing")
	breathing.Use(middleware.Auth(authService))
	breathing.GET("/state", handlers.Breathing.GetState)
	breathing.POST("/start", handlers.Breathing.Start)
	breathing.POST("/pause", handlers.Breathing.Pause)
	breathing.POST("/reset", handlers.Breathing.Reset)
	breathing.POST("/finish", handlers.Breathing.Finish)
	breathing.PUT("/pattern", handlers.Breathing.SelectPattern)
	breathing.POST("/sessions", handlers.Session.Record)
	breathing.GET("/sessions", handlers.Session.History)
	breathing.GET("/sessions/:id", handlers.Session.Get)
	breathing.GET("/stats", handlers.Session.Stats)

	return engine
}
