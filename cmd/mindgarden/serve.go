package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mindgarden/backend/internal/handler"
	"mindgarden/backend/internal/metrics"
	"mindgarden/backend/internal/repository"
	"mindgarden/backend/internal/router"
	"mindgarden/backend/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	database, err := openDatabase(a)
	if err != nil {
		return err
	}
	defer database.Close()

	if a.logger.GetLevel() > log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	userRepo := repository.NewUserRepository(database)
	stateRepo := repository.NewBreathingStateRepository(database)
	sessionRepo := repository.NewBreathingSessionRepository(database)

	authService := service.NewAuthService(userRepo, stateRepo, a.cfg.JWTSecret, a.cfg.TokenTTL, a.logger)
	sessionService := service.NewSessionService(sessionRepo, m, a.logger)
	breathingService := service.NewBreathingService(stateRepo, sessionService, a.logger)
	profileService := service.NewProfileService(userRepo, sessionRepo, a.logger)

	engine := router.New(authService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, profileService),
		Breathing: handler.NewBreathingHandler(breathingService),
		Session:   handler.NewSessionHandler(sessionService),
		Garden:    handler.NewGardenHandler(nil),
	}, m, a.logger, a.cfg.CORSOrigins)

	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("backend listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down", "timeout", a.cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})
	return g.Wait()
}
