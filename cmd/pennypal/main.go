package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"pennypal/internal/amqp"
	"pennypal/internal/auth"
	"pennypal/internal/backend"
	"pennypal/internal/cache"
	"pennypal/internal/cli"
	apphttp "pennypal/internal/http"
	"pennypal/internal/log"
	"pennypal/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)
	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid storage configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	store := result.Store

	// A nil interface keeps publishing disabled; a typed nil pointer would not.
	var events services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", log.FieldError, err)
			os.Exit(1)
		}
		events = amqpClient
		logger.Info("Domain event publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP_URL not set, domain events disabled")
	}

	categories := services.NewCategoryService(store, events)
	svc := apphttp.Services{
		Users:      services.NewUserService(store),
		Categories: categories,
		Expenses:   services.NewExpenseService(store, categories, events),
		Incomes:    services.NewIncomeService(store, categories, events),
		Reports:    services.NewReportService(store, store, categories),
		Summary:    services.NewSummaryService(store, store, cfg.RecurringPolicy()),
		Activity:   services.NewActivityService(store),
	}

	caches := cache.NewManager(logger.Logger.With(log.FieldComponent, log.ComponentCache))
	caches.Register(categories.Cache())
	caches.StartCleanup(time.Minute)

	opts := apphttp.Options{
		Logger:         logger,
		Sessions:       auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL, cfg.SecureCookies),
		LoginRedirect:  cfg.LoginRedirectURL,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		RateLimit:      cfg.RateLimit,
		Ready:          store.Ping,
	}
	if cfg.GoogleSignInEnabled() {
		opts.Google = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.SecureCookies)
		logger.Info("Google sign-in enabled")
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, opts)

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if err := result.Cleanup(); err != nil {
			logger.Warn("Storage close error", log.FieldError, err)
		}
	})

	logger.Info("Starting pennypal server",
		"port", cfg.Port,
		"backend", backendCfg.Type,
		"summary_policy", cfg.RecurringPolicy())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
