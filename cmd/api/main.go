package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/conversation"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/routing"
	"github.com/spec-kit/support-desk/internal/search"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/taxonomy"
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

	catalog, err := taxonomy.Load(cfg.Taxonomy.Path, logger)
	if err != nil {
		logger.Fatal("failed to load taxonomy", zap.Error(err))
	}
	if cfg.Taxonomy.Watch {
		go func() {
			if err := catalog.Watch(ctx); err != nil {
				logger.Warn("taxonomy watcher stopped", zap.Error(err))
			}
		}()
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)
	ruleRepo := repository.NewPriorityRuleRepository(pool)
	slaRepo := repository.NewSLARepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	router := routing.NewEngine(routing.Dependencies{
		Rules:           ruleRepo,
		Policies:        slaRepo,
		Technicians:     technicianRepo,
		DefaultSLAHours: cfg.Routing.DefaultSLAHours,
		Logger:          logger,
	})

	ticketService := service.NewTicketService(service.TicketServiceDependencies{
		Tickets:     ticketRepo,
		Technicians: technicianRepo,
		Users:       userRepo,
		Router:      router,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	feedbackService := service.NewFeedbackService(service.FeedbackServiceDependencies{
		Repo:       feedbackRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	slaWorker := worker.NewSLABreachWorker(ticketRepo, dispatcher, cfg.Routing.SLASweepInterval(), logger)
	go slaWorker.Run(ctx)

	sessionStore := conversation.NewStore(cfg.Session.TTL(), redis.ClientHandle(), logger)
	go sessionStore.Run(ctx, cfg.Session.EvictionInterval())

	var responder search.Responder
	if cfg.Chat.FallbackURL != "" {
		responder = search.NewHTTPResponder(cfg.Chat.FallbackURL, cfg.Chat.FallbackTimeout())
	}

	engine := conversation.NewEngine(conversation.Dependencies{
		Store:      sessionStore,
		Catalog:    catalog,
		Searcher:   search.NewTaxonomySearcher(catalog, "Incident"),
		Responder:  responder,
		Tickets:    ticketService,
		Feedback:   feedbackService,
		Approvals:  service.NewManagerApprovalGate(cfg.Chat.ApproverName),
		Users:      userRepo,
		Dispatcher: dispatcher,
		Config:     cfg.Chat,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	chatHandler := handlers.NewChatHandler(engine, metrics)
	ticketsHandler := handlers.NewTicketsHandler(ticketService)
	rulesHandler := handlers.NewRulesHandler(ruleRepo)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   healthHandler,
		Chat:     chatHandler,
		Tickets:  ticketsHandler,
		Rules:    rulesHandler,
		Feedback: feedbackHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = app.ShutdownWithContext(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
