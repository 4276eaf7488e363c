package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/teklifbul/mukayese-backend/api/middleware"
	"github.com/teklifbul/mukayese-backend/api/routes"
	"github.com/teklifbul/mukayese-backend/internal/comparison"
	"github.com/teklifbul/mukayese-backend/internal/cron"
	"github.com/teklifbul/mukayese-backend/internal/export"
	"github.com/teklifbul/mukayese-backend/internal/fx"
	"github.com/teklifbul/mukayese-backend/internal/offers"
	"github.com/teklifbul/mukayese-backend/internal/reports"
	"github.com/teklifbul/mukayese-backend/pkg/config"
	"github.com/teklifbul/mukayese-backend/pkg/db"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
	"github.com/teklifbul/mukayese-backend/pkg/metrics"
	"github.com/teklifbul/mukayese-backend/pkg/migrate"
	"github.com/teklifbul/mukayese-backend/pkg/redis"
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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured; fx rates stay local and export limits are per instance")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	normalizer, err := fx.NewNormalizerFromConfig(cfg.FX)
	if err != nil {
		logg.Error(ctx, "failed to build fx normalizer", err)
		os.Exit(1)
	}
	engine, err := comparison.NewEngine(normalizer)
	if err != nil {
		logg.Error(ctx, "failed to build comparison engine", err)
		os.Exit(1)
	}

	template, err := export.NewFileTemplate(cfg.Export.TemplatePath, cfg.Export.TemplateTimeout)
	if err != nil {
		logg.Error(ctx, "failed to configure export template", err)
		os.Exit(1)
	}
	renderer, err := export.NewRenderer(template)
	if err != nil {
		logg.Error(ctx, "failed to build export renderer", err)
		os.Exit(1)
	}

	offerRepo, err := offers.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(ctx, "failed to build offer repository", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(reports.ServiceParams{
		Offers:            offerRepo,
		Engine:            engine,
		Renderer:          renderer,
		Membership:        cfg.Membership,
		MaxExportProducts: cfg.Export.MaxProducts,
		Metrics:           metrics.NewExportMetrics(registry),
		Logger:            logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to build report service", err)
		os.Exit(1)
	}

	deps := routes.Dependencies{
		DB:             dbClient,
		Reports:        reportService,
		Rates:          normalizer,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		MetricsHandler: metrics.Handler(registry),
	}
	if cfg.Export.RateLimitLimit > 0 {
		deps.ExportLimiter = middleware.NewLocalRateLimiter(cfg.Export.RateLimitLimit, cfg.Export.RateLimitWindow)
	}

	var schedulers []*cron.Service
	if redisClient != nil {
		rateStore, err := fx.NewRedisStore(redisClient, cfg.FX.RedisKey)
		if err != nil {
			logg.Error(ctx, "failed to build fx rate store", err)
			os.Exit(1)
		}
		deps.RedisPinger = redisClient
		deps.RateStore = rateStore
		if cfg.Export.RateLimitLimit > 0 {
			deps.ExportLimiter = middleware.NewRedisRateLimiter(redisClient, "export", cfg.Export.RateLimitLimit, cfg.Export.RateLimitWindow)
		}

		schedulers, err = fxSchedulers(cfg, logg, redisClient, rateStore, normalizer, metrics.NewCronJobMetrics(registry))
		if err != nil {
			logg.Error(ctx, "failed to build fx schedulers", err)
			os.Exit(1)
		}
	}

	for _, scheduler := range schedulers {
		go func(s *cron.Service) {
			if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "scheduler stopped unexpectedly", err)
			}
		}(scheduler)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	srvCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(srvCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(srvCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(srvCtx, "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	errs := server.Shutdown(shutdownCtx)
	errs = multierr.Append(errs, dbClient.Close())
	if redisClient != nil {
		errs = multierr.Append(errs, redisClient.Close())
	}
	if errs != nil {
		logg.Error(srvCtx, "error during shutdown", errs)
		exitCode = 1
	}
	os.Exit(exitCode)
}

// fxSchedulers builds the seed scheduler, which one replica runs per cycle,
// and the reload scheduler, which every replica runs.
func fxSchedulers(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, store *fx.RedisStore, normalizer *fx.Normalizer, cronMetrics *metrics.CronJobMetrics) ([]*cron.Service, error) {
	defaults, err := fx.ParseTable(cfg.FX.Rates)
	if err != nil {
		return nil, err
	}
	seedJob, err := cron.NewFXSeedJob(cron.FXSeedJobParams{Logger: logg, Store: store, Default: defaults})
	if err != nil {
		return nil, err
	}
	reloadJob, err := cron.NewFXReloadJob(cron.FXReloadJobParams{
		Logger:        logg,
		Store:         store,
		Normalizer:    normalizer,
		DeriveInverse: cfg.FX.DeriveInverse,
	})
	if err != nil {
		return nil, err
	}

	seedLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("fx-seed"), 0)
	if err != nil {
		return nil, err
	}
	seed, err := cron.NewService(cron.ServiceParams{
		Name:     "fx-seed",
		Logger:   logg,
		Registry: cron.NewRegistry(seedJob),
		Lock:     seedLock,
		Metrics:  cronMetrics,
		Interval: cfg.FX.RefreshInterval,
	})
	if err != nil {
		return nil, err
	}
	reload, err := cron.NewService(cron.ServiceParams{
		Name:     "fx-reload",
		Logger:   logg,
		Registry: cron.NewRegistry(reloadJob),
		Lock:     &cron.LocalLock{},
		Metrics:  cronMetrics,
		Interval: cfg.FX.RefreshInterval,
	})
	if err != nil {
		return nil, err
	}
	return []*cron.Service{seed, reload}, nil
}
