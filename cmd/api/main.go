package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/agent-gateway/internal/api/http"
	"github.com/spec-kit/agent-gateway/internal/api/http/handlers"
	"github.com/spec-kit/agent-gateway/internal/auth"
	"github.com/spec-kit/agent-gateway/internal/config"
	"github.com/spec-kit/agent-gateway/internal/events"
	"github.com/spec-kit/agent-gateway/internal/observability"
	"github.com/spec-kit/agent-gateway/internal/persistence"
	"github.com/spec-kit/agent-gateway/internal/repository"
	"github.com/spec-kit/agent-gateway/internal/service"
	"github.com/spec-kit/agent-gateway/internal/worker"
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

	metrics := observability.NewMetrics()

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

	var auditRepo repository.AuditRepository
	if pool := pg.PoolHandle(); pool != nil {
		auditRepo = repository.NewAuditRepository(pool)
	}

	dispatcher := events.NewInMemoryDispatcher(logger)

	auditService := service.NewAuditService(auditRepo, metrics, logger, cfg.Audit.HistoryLimit)
	auditService.RegisterHandlers(dispatcher)

	alertService := service.NewAlertService(redis, cfg.Audit.DenialStream, logger)
	alertService.RegisterHandlers(dispatcher)

	decisionQueue := worker.NewDecisionQueue(cfg.Audit.QueueSize, dispatcher, logger)

	validator, err := auth.NewTokenValidator(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to build token validator", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(validator, decisionQueue)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	identityHandler := handlers.NewIdentityHandler(auditService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Identity:       identityHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	decisionQueue.Close()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
