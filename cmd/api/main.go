package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	personRepo := repository.NewPersonRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	collaboratorRepo := repository.NewCollaboratorRepository(pool)
	analystRepo := repository.NewAnalystRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	referenceRepo := repository.NewReferenceRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	identityService := service.NewIdentityService(cfg.Support, service.IdentityDependencies{
		PersonRepo:       personRepo,
		ClientRepo:       clientRepo,
		CollaboratorRepo: collaboratorRepo,
		AnalystRepo:      analystRepo,
	}, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:       ticketRepo,
		ConversationRepo: conversationRepo,
		ClientRepo:       clientRepo,
		Identity:         identityService,
		Dispatcher:       dispatcher,
	})
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		TicketRepo:     ticketRepo,
		AnalystRepo:    analystRepo,
		EscalationRepo: escalationRepo,
		Cache:          redis,
		Dispatcher:     dispatcher,
	})
	hydrationService := service.NewHydrationService(referenceRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, collaboratorRepo, analystRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(identityService, tokenManager),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Analyst:        handlers.NewAnalystHandler(ticketService, escalationService, hydrationService),
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
