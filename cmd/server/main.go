package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/config"
	"github.com/mcoot/boardgametracker/internal/factory"
	redisstorage "github.com/mcoot/boardgametracker/internal/storage/redis"
	"github.com/mcoot/boardgametracker/internal/web"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	backendCfg := backend.DefaultConfig()
	backendCfg.BaseURL = cfg.Backend.URL
	backendCfg.Timeout = cfg.Backend.Timeout

	factoryCfg := factory.Config{
		Logger:      logger,
		Backend:     backendCfg,
		StorageType: cfg.Cache.Type,
	}
	if cfg.Cache.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Cache.RedisURL
		redisCfg.PoolSize = cfg.Cache.PoolSize
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	server := web.NewServer(app.Router(cfg.Server.StaticDir), cfg.Server, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("backend", cfg.Backend.URL),
		slog.String("cache", cfg.Cache.Type))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			_ = app.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}
