package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agroinnova-backend/database"
	"agroinnova-backend/internal/api"
	"agroinnova-backend/internal/logger"
	"agroinnova-backend/internal/services"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.log.Sync()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.EnableRollbar(a.cfg.RollbarToken, a.cfg.Environment, Version)
	defer logger.CloseRollbar()

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if res, err := database.Seed(db); err != nil {
		return err
	} else if res.Countries+res.Tipos+res.Subtipos > 0 {
		a.log.Info("catalog seeded",
			zap.Int("countries", res.Countries), zap.Int("tipos", res.Tipos), zap.Int("subtipos", res.Subtipos))
	}

	var redisClient *redis.Client
	if a.cfg.RedisURL != "" {
		redisClient, err = services.NewRedisClient(ctx, a.cfg.RedisURL)
		if err != nil {
			a.log.Warn("redis unavailable, using in-memory blacklist and limits", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	deps, err := api.Build(ctx, api.Options{
		Config: a.cfg,
		DB:     db,
		Log:    a.log,
		Redis:  redisClient,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	worker := services.NewCleanupWorker(services.DefaultCleanupInterval, a.log.Named("cleanup"), deps.CleanupTasks()...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.log.Info("server starting", zap.String("addr", server.Addr), zap.String("environment", a.cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("server shutdown complete")
	return nil
}
