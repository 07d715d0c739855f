package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-service/internal/api/http"
	"github.com/spec-kit/sla-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/persistence"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/sla"
	"github.com/spec-kit/sla-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := persistence.Connect(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	ticketRepo := repository.NewTicketRepository(pool)
	levelRepo := repository.NewServiceLevelRepository(pool)
	holidayRepo := repository.NewHolidayListRepository(pool, redis.Client, cfg.SLA.HolidayCacheTTL(), logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()
	clock := sla.SystemClock()

	slaService := service.NewSLAService(service.SLADependencies{
		TicketRepo:    ticketRepo,
		ServiceLevels: levelRepo,
		HolidayLists:  holidayRepo,
		Clock:         clock,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		SLA:        slaService,
		Dispatcher: dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	autoClose := worker.NewAutoCloseWorker(ticketRepo, ticketService, dispatcher, clock, cfg.Worker, logger)
	go autoClose.Run(ctx)

	tokenManager := auth.NewTokenManager(cfg.Auth.ServiceTokenSecret, cfg.Auth.ServiceTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pool, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		ServiceLevels:  handlers.NewServiceLevelsHandler(levelRepo, slaService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
