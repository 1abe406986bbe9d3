package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/netplay-go/internal/api"
	"github.com/mcoot/netplay-go/internal/config"
	"github.com/mcoot/netplay-go/internal/factory"
	"github.com/mcoot/netplay-go/internal/services/identity"
	"github.com/mcoot/netplay-go/internal/services/room"
	redisstorage "github.com/mcoot/netplay-go/internal/storage/redis"
	"github.com/mcoot/netplay-go/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if cfg.Auth.Secret == "" {
		logger.Warn("no auth secret configured, running in guest-only mode")
	}

	// Build factory config
	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		SQLitePath:  cfg.Storage.SQLitePath,
		IdentityConfig: identity.Config{
			Secret:   cfg.Auth.Secret,
			Audience: cfg.Auth.Audience,
		},
		RoomConfig: room.Config{
			MaxRooms:     cfg.Rooms.Max,
			DefaultLabel: cfg.Rooms.DefaultLabel,
		},
	}

	if cfg.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create websocket handler
	wsHandler := ws.NewHandler(app.RoomController, app.IdentityService, app.Clock, logger, ws.Config{
		AllowedOrigins:   cfg.AllowedOrigins,
		HandshakeTimeout: cfg.Auth.HandshakeTimeout,
	})

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		RoomController:  app.RoomController,
		IdentityService: app.IdentityService,
		WSHandler:       wsHandler,
		AdminToken:      cfg.AdminToken,
		AllowedOrigins:  cfg.AllowedOrigins,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// parseLogLevel maps the configured level name onto a slog level, falling
// back to info for anything unrecognized
func parseLogLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
