/**
 * @description
 * This is the main entry point for the ai-agent-manager API server.
 * It initializes and wires together all the components of the application:
 * configuration, database connection and migrations, vendor adapters, the
 * billing gateway, background jobs, and the HTTP router. Finally, it starts
 * the HTTP server and handles graceful shutdown.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/jleboube/ai-agent-manager/internal/ai"
	"github.com/jleboube/ai-agent-manager/internal/api"
	"github.com/jleboube/ai-agent-manager/internal/app"
	"github.com/jleboube/ai-agent-manager/internal/auth"
	"github.com/jleboube/ai-agent-manager/internal/billing"
	"github.com/jleboube/ai-agent-manager/internal/config"
	"github.com/jleboube/ai-agent-manager/internal/mailer"
	"github.com/jleboube/ai-agent-manager/internal/store"
	"github.com/jleboube/ai-agent-manager/pkg/rabbitmq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env in development; in production the environment is already set
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Apply database migrations before opening the pool
	if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = 25
	poolCfg.MinConns = 5
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Use simple protocol so the pool works behind PgBouncer transaction pooling
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	repository := store.NewPostgresRepository(dbpool)

	// Vendor adapters
	gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error("failed to initialize gemini client", "error", err)
		os.Exit(1)
	}
	claude := ai.NewClaudeClient(cfg.ClaudeAPIKey, cfg.ClaudeModel, "")
	openai := ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, "")
	orchestrator := ai.NewOrchestrator([]ai.Provider{gemini, claude, openai}, gemini, logger)

	// Event producer; fall back to a no-op publisher when the broker is down
	var publisher rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.AMQPURL, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events will be dropped", "error", err)
			publisher = &rabbitmq.NoopPublisher{Logger: logger}
		} else {
			publisher = producer
		}
	} else {
		publisher = &rabbitmq.NoopPublisher{Logger: logger}
	}
	defer publisher.Close()

	// Google sign-in and session tokens
	google, err := auth.NewGoogleAuthenticator(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	if err != nil {
		logger.Error("failed to initialize google authenticator", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	// Billing
	gateway := billing.NewStripeGateway(cfg.StripeSecretKey)
	webhooks := billing.NewWebhookParser(cfg.StripeWebhookSecret)

	// Application services
	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	monitor := app.NewUsageMonitor(repository, mail, publisher, cfg.AdminEmail, logger)
	generations := app.NewGenerationService(repository, orchestrator, monitor, publisher, logger)
	subscriptions := app.NewSubscriptionService(repository, gateway, cfg.StripeMonthlyPriceID, cfg.StripeYearlyPriceID, cfg.FrontendURL, logger)
	sync := app.NewBillingSync(repository, gateway, logger)
	users := app.NewUserService(repository, logger)

	// Weekly usage sweep
	scheduler := app.NewScheduler(monitor, cfg.UsageSweepSchedule, logger)
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	router := api.NewRouter(api.RouterConfig{
		Auth:           api.NewAuthHandler(google, tokens, users, cfg.FrontendURL, logger),
		AI:             api.NewAIHandler(generations),
		Subscriptions:  api.NewSubscriptionHandler(subscriptions, sync, webhooks, repository, logger),
		Users:          api.NewUserHandler(users),
		Tokens:         tokens,
		FrontendURL:    cfg.FrontendURL,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
