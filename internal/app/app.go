// Package app assembles the service: repositories, event processor, timer
// worker and HTTP server, all supervised together.
package app

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"fuellock/internal/application/services"
	"fuellock/internal/config"
	"fuellock/internal/infrastructure/clients"
	"fuellock/internal/interfaces/events"
	httpapi "fuellock/internal/interfaces/http"
	"fuellock/internal/observability"
	"fuellock/internal/repository"
	"fuellock/internal/scheduler"
)

type App struct {
	logger    zerolog.Logger
	router    *message.Router
	srv       *httpapi.Server
	scheduler *scheduler.RedisScheduler
	db        *sqlx.DB
}

func New(
	cfg *config.Config,
	db *sqlx.DB,
	redisClient *redis.Client,
	logger zerolog.Logger,
) (*App, error) {
	watermillLogger := observability.NewWatermillLogger(logger)

	bookingsRepo := repository.NewBookingsRepo(db)
	customersRepo := repository.NewCustomersRepo(db)
	stationsRepo := repository.NewStationsRepo(db)
	dealersRepo := repository.NewDealersRepo(db)

	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, err
	}

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, watermillLogger)
	if err != nil {
		return nil, err
	}

	marshaler := cqrs.JSONMarshaler{
		GenerateName: cqrs.StructName,
	}
	timers := scheduler.NewRedisScheduler(
		redisClient,
		publisher,
		marshaler,
		logger,
		cfg.Scheduler.PollInterval,
	)

	notifications := clients.NewNotificationsClient(
		cfg.Notifications.BaseURL,
		cfg.Notifications.APIKey,
		cfg.Notifications.From,
		cfg.Notifications.Enabled,
	)

	locksService := services.NewLocksService(
		bookingsRepo, customersRepo, stationsRepo, dealersRepo,
		timers, cfg.Booking.LockTTL, logger,
	)
	pricesService := services.NewPricesService(stationsRepo, timers, logger)
	stationsService := services.NewStationsService(stationsRepo, customersRepo, dealersRepo, logger)
	dealersService := services.NewDealersService(dealersRepo, logger)
	customersService := services.NewCustomersService(customersRepo, notifications, logger)

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(events.CorrelationIDMiddleware(logger))
	router.AddMiddleware(events.LoggingMiddleware)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)
	router.AddMiddleware(events.SkipMarshallingErrorsMiddleware)

	processor, err := events.NewEventProcessor(router, redisClient, marshaler, watermillLogger)
	if err != nil {
		return nil, err
	}
	err = processor.AddHandlers(
		events.ExpireLockHandler(locksService),
		events.ApplyScheduledPriceHandler(pricesService),
	)
	if err != nil {
		return nil, err
	}

	srv := httpapi.NewServer(
		echo.New(),
		cfg.HTTP.Addr,
		locksService,
		pricesService,
		stationsService,
		dealersService,
		customersService,
		logger,
		router.IsRunning,
	)

	return &App{
		logger:    logger,
		router:    router,
		srv:       srv,
		scheduler: timers,
		db:        db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := repository.InitializeDBSchema(a.db); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Msg("starting router")
		return a.router.Run(ctx)
	})

	g.Go(func() error {
		<-a.router.Running()
		a.logger.Info().Msg("starting timer worker")
		return a.scheduler.RunWorker(ctx)
	})

	g.Go(func() error {
		<-a.router.Running()
		a.logger.Info().Msg("starting server")
		return a.srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		if err := a.srv.Stop(context.Background()); err != nil {
			a.logger.Err(err).Msg("error stopping server")
			return err
		}
		return nil
	})

	return g.Wait()
}
