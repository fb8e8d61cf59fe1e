// @title        Healthcare Portal API
// @version      1.0
// @description  Multi-role healthcare scheduling portal with realtime targeted notifications.
// @BasePath     /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careconnect/healthcare-portal/internal/api"
	"github.com/careconnect/healthcare-portal/internal/infrastructure/config"
	mongodb "github.com/careconnect/healthcare-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/careconnect/healthcare-portal/internal/infrastructure/db/redis"
	"github.com/careconnect/healthcare-portal/internal/realtime"
	"github.com/careconnect/healthcare-portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	userRepo := mongodb.NewUserRepository(db)
	notificationRepo := mongodb.NewNotificationRepository(db)
	appointmentRepo := mongodb.NewAppointmentRepository(db)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes failed")
	}
	if err := notificationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure notification indexes failed")
	}
	if err := appointmentRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure appointment indexes failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Realtime delivery layer ---
	registry := realtime.NewRegistry()
	backfill := realtime.NewBackfill(notificationRepo, cfg.Notify.RetentionWindow(), cfg.Notify.BackfillLimit, log)
	hub := realtime.NewHub(registry, userRepo, backfill, cfg.Notify.JoinTimeout, log)

	e := api.NewRouter(db, rdb, hub, cfg, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Shutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("server stopped cleanly")
}
