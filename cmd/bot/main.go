package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"community-bot-backend/internal/bot"
	"community-bot-backend/internal/common/config"
	"community-bot-backend/internal/common/logger"
	adminservice "community-bot-backend/internal/features/admin/service"
	broadcastservice "community-bot-backend/internal/features/broadcast/service"
	userservice "community-bot-backend/internal/features/user/service"
	verifservice "community-bot-backend/internal/features/verification/service"
	apphttp "community-bot-backend/internal/http"
	"community-bot-backend/internal/platform/storage"
	"community-bot-backend/internal/platform/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("community-bot-backend", cfg.Debug)

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open record store")
	}

	users := userservice.NewRegistryService(store)
	verifications := verifservice.NewQueueService(store)
	sessions := adminservice.NewSessionService(store, cfg.Admin.AccessCode)

	client := telegram.NewClient(cfg.Telegram.BotToken)

	engine := bot.NewEngine(client, users, verifications, sessions, bot.Options{
		AdminContact:    cfg.Admin.Contact,
		ChannelLink:     cfg.Community.ChannelLink,
		PromoCode:       cfg.Community.PromoCode,
		SessionDuration: time.Duration(cfg.Admin.SessionMinutes) * time.Minute,
	})

	broadcasts := broadcastservice.NewBroadcastService(store, users, client, broadcastservice.Window{
		StartHour: cfg.Community.ActiveStartHour,
		EndHour:   cfg.Community.ActiveEndHour,
	})
	broadcasts.Start(time.Duration(cfg.Broadcast.IntervalSec) * time.Second)
	defer broadcasts.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      apphttp.NewRouter(cfg, store, verifications),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting ops HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start ops HTTP server")
		}
	}()

	logger.Info().Msg("Bot is running")
	engine.Run(ctx, client, cfg.Telegram.PollTimeout)

	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Ops HTTP server forced to shut down")
	}

	logger.Info().Msg("Bot stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "redis":
		return storage.NewRedisStore(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	case "file":
		return storage.NewFileStore(cfg.Storage.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}
