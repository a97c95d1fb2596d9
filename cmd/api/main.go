package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/fechouapp/fechou-backend/api/routes"
	"github.com/fechouapp/fechou-backend/internal/aichat"
	"github.com/fechouapp/fechou-backend/internal/billing"
	"github.com/fechouapp/fechou-backend/internal/checkout"
	"github.com/fechouapp/fechou-backend/internal/contracts"
	"github.com/fechouapp/fechou-backend/internal/entitlements"
	"github.com/fechouapp/fechou-backend/internal/proposals"
	stripewebhook "github.com/fechouapp/fechou-backend/internal/webhooks/stripe"
	"github.com/fechouapp/fechou-backend/pkg/config"
	"github.com/fechouapp/fechou-backend/pkg/db"
	"github.com/fechouapp/fechou-backend/pkg/logger"
	"github.com/fechouapp/fechou-backend/pkg/metrics"
	"github.com/fechouapp/fechou-backend/pkg/migrate"
	"github.com/fechouapp/fechou-backend/pkg/openai"
	"github.com/fechouapp/fechou-backend/pkg/redis"
	"github.com/fechouapp/fechou-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	usageMetrics := metrics.NewUsageMetrics(prometheus.DefaultRegisterer)

	billingService, err := billing.NewService(billing.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	entitlementService, err := entitlements.NewService(entitlements.ServiceParams{
		Repo:                entitlements.NewRepository(dbClient.DB()),
		Catalog:             billingService,
		TransactionRunner:   dbClient,
		Logger:              logg,
		Metrics:             usageMetrics,
		BusinessAmountCents: cfg.Billing.BusinessAmountCents,
		CycleLength:         cfg.Entitlements.CycleLength,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create entitlement service", err)
		os.Exit(1)
	}

	proposalService, err := proposals.NewService(proposals.ServiceParams{
		Repo:         proposals.NewRepository(dbClient.DB()),
		Entitlements: entitlementService,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create proposal service", err)
		os.Exit(1)
	}

	contractService, err := contracts.NewService(contracts.ServiceParams{
		Repo:         contracts.NewRepository(dbClient.DB()),
		Entitlements: entitlementService,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create contract service", err)
		os.Exit(1)
	}

	aiClient, err := openai.NewClient(cfg.AI.APIKey,
		openai.WithBaseURL(cfg.AI.BaseURL),
		openai.WithModel(cfg.AI.Model),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.AI.Timeout}),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create ai client", err)
		os.Exit(1)
	}

	chatService, err := aichat.NewService(aichat.ServiceParams{
		Repo:         aichat.NewRepository(dbClient.DB()),
		Responder:    aiClient,
		Entitlements: entitlementService,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Billing:  billingService,
		Sessions: checkout.NewStripeSessionClient(),
		Config:   cfg.Billing,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Entitlements: entitlementService,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Billing.WebhookEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			DBPinger:     dbClient,
			RedisPinger:  redisClient,
			Proposals:    proposalService,
			Contracts:    contractService,
			Chat:         chatService,
			Plans:        billingService,
			Usage:        entitlementService,
			Checkout:     checkoutService,
			StripeHook:   webhookService,
			StripeClient: stripeClient,
			StripeGuard:  webhookGuard,
		}),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
