package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/feeledger/internal/api"
	v1 "github.com/flexprice/feeledger/internal/api/v1"
	"github.com/flexprice/feeledger/internal/auth"
	"github.com/flexprice/feeledger/internal/cache"
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/events"
	"github.com/flexprice/feeledger/internal/integration/registry"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	entrepo "github.com/flexprice/feeledger/internal/repository/ent"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Fee Ledger API
// @version 1.0
// @description Invoice generation, adjustment and reversal for institutional fee billing.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,
			func(c *postgres.Client) postgres.IClient { return c },

			// Auth
			auth.NewProvider,

			// Cache
			cache.Initialize,

			// Repositories
			entrepo.NewInvoiceRepository,
			entrepo.NewSequenceRepository,
			entrepo.NewFeeDefinitionRepository,
			entrepo.NewDiscountRepository,
			entrepo.NewAuditRepository,
			entrepo.NewPaymentRepository,

			// Collaborators
			registry.NewDirectory,
			events.NewPublisher,

			// Services
			service.NewServiceParams,
			service.NewInvoiceService,

			// Handlers
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			initSentry,
			migrate,
			startServer,
		),
	)

	app.Run()
}

func provideHandlers(svc service.InvoiceService, client *postgres.Client, log *logger.Logger) api.Handlers {
	return api.Handlers{
		Invoice: v1.NewInvoiceHandler(svc, log),
		Health:  v1.NewHealthHandler(client),
	}
}

func initSentry(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		SampleRate:       cfg.Sentry.SampleRate,
		EnableTracing:    true,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		return err
	}
	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		},
	})
	return nil
}

func migrate(lc fx.Lifecycle, cfg *config.Configuration, client *postgres.Client, log *logger.Logger) {
	if !cfg.Postgres.AutoMigrate {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("applying database migrations")
			return client.Migrate(ctx)
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	db *sql.DB,
	publisher events.Publisher,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalw("server stopped unexpectedly", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Errorw("server shutdown failed", "error", err)
			}
			if err := publisher.Close(); err != nil {
				log.Errorw("failed to close event publisher", "error", err)
			}
			return db.Close()
		},
	})
}
