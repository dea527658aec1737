package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wardenbot/warden/admission"
	"github.com/wardenbot/warden/admission/configstore"
)

type Server struct {
	logger     *slog.Logger
	engine     *admission.Engine
	configs    *configstore.GormConfigStore
	adminToken string
}

type Config struct {
	Logger         *slog.Logger
	AdminAuthToken string
}

func NewServer(engine *admission.Engine, configs *configstore.GormConfigStore, config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return &Server{
		logger:     logger,
		engine:     engine,
		configs:    configs,
		adminToken: config.AdminAuthToken,
	}
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

// Run serves the event and admin APIs until SIGINT or SIGTERM.
func (s *Server) Run(ctx context.Context, bind string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/_health", s.handleHealth)

	// event ingestion from the platform gateway
	events := e.Group("/v1/events", s.requireAdminAuth)
	events.POST("/join", s.handleJoinEvent)
	events.POST("/reaction", s.handleReactionEvent)

	// operator API
	admin := e.Group("/v1/admin", s.requireAdminAuth)
	admin.POST("/communities/:community/verify/:user", s.handleVerify)
	admin.POST("/communities/:community/propagate", s.handlePropagate)
	admin.GET("/communities/:community/purge", s.handlePurgeScan)
	admin.POST("/communities/:community/purge", s.handlePurgeExecute)
	admin.PUT("/communities/:community/lockdown", s.handleLockdownActivate)
	admin.DELETE("/communities/:community/lockdown", s.handleLockdownDeactivate)
	admin.PUT("/communities/:community/config", s.handleConfigSet)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(bind)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-signals:
		s.logger.Info("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// requireAdminAuth checks the bearer token on operator and event routes.
// With no token configured, routes are open (local development).
func (s *Server) requireAdminAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.adminToken == "" {
			return next(c)
		}
		if c.Request().Header.Get("Authorization") != "Bearer "+s.adminToken {
			return c.String(http.StatusForbidden, "admin auth required")
		}
		return next(c)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
