package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mahberhub/internal/cache"
	"mahberhub/internal/config"
	"mahberhub/internal/database"
	"mahberhub/internal/middleware"
	"mahberhub/internal/realtime"
	"mahberhub/internal/repositories"
	"mahberhub/internal/response"
	"mahberhub/internal/router"
	"mahberhub/internal/services"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting server",
		zap.String("environment", cfg.Server.Environment),
		zap.String("addr", cfg.Server.Addr()),
	)

	db, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	cacheStore, err := cache.New(&cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer cacheStore.Close()

	hub := realtime.NewHub(cfg.Server.CORSOrigins, logger)
	defer hub.Close()

	repos := repositories.NewCollection(db, logger)

	svcs, err := services.NewCollection(repos, cacheStore, cfg, hub, logger)
	if err != nil {
		return fmt.Errorf("init services: %w", err)
	}

	writer := response.NewWriter(logger)
	authMW := middleware.NewAuthMiddleware(svcs.Auth, writer, logger)

	handler := router.New(&router.Dependencies{
		Config:   cfg,
		Services: svcs,
		Auth:     authMW,
		Writer:   writer,
		Hub:      hub,
		DB:       db,
		Cache:    cacheStore,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
