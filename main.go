package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"fuellock/internal/app"
	"fuellock/internal/config"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := sqlx.Open("postgres", cfg.Postgres.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open postgres connection")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg, db, redisClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build app")
	}

	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Msg("app stopped with error")
	}
}
