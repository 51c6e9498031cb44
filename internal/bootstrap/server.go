package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Domenick1991/tripassist/api"
	"github.com/Domenick1991/tripassist/config"
)

const shutdownTimeout = 5 * time.Second

// NewRouter mounts the conversational endpoints at the root and the
// read-only inventory API under /api.
func NewRouter(app *App) *gin.Engine {
	if app.Config.HTTP.Mode != "" {
		gin.SetMode(app.Config.HTTP.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), api.RequestID(), api.RequestLogger(app.Log), cors.New(corsConfig(app.Config.HTTP)))
	if app.Tokens != nil {
		router.Use(api.CallerIdentity(app.Tokens))
	}

	api.NewQueryHandler(app.Assistant).Register(router)
	api.NewChatSocketHandler(app.Assistant, app.Tokens, app.Config.HTTP.AllowedOrigins, app.Log).Register(router)

	v1 := router.Group("/api")
	api.NewFlightHandler(app.Flights).Register(v1.Group("/flights"))
	api.NewPolicyHandler(app.Flights).Register(v1.Group("/policies"))
	api.NewBookingHandler(app.Bookings).Register(v1.Group("/bookings"), v1.Group("/customers"))

	return router
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", api.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", api.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowCredentials = true
	return c
}

// startSessionStats periodically logs how many in-process conversations are
// live. It returns nil when sessions live in Redis.
func startSessionStats(app *App) (*cron.Cron, error) {
	if app.Sessions == nil {
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(app.Config.Session.StatsSchedule, func() {
		app.Log.WithField("active_sessions", app.Sessions.Active()).Info("session store")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session stats %q: %w", app.Config.Session.StatsSchedule, err)
	}
	c.Start()
	return c, nil
}

// Run serves HTTP until ctx is canceled or the server fails, then shuts down
// gracefully.
func Run(ctx context.Context, app *App) error {
	stats, err := startSessionStats(app)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              app.Config.HTTP.Address,
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Log.WithField("address", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Log.Info("shutting down")
		if stats != nil {
			<-stats.Stop().Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	app.Log.Info("server stopped")
	return nil
}
