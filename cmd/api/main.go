package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/brewhouse-backend/api/controllers"
	"github.com/angelmondragon/brewhouse-backend/api/routes"
	"github.com/angelmondragon/brewhouse-backend/internal/beers"
	"github.com/angelmondragon/brewhouse-backend/internal/customers"
	"github.com/angelmondragon/brewhouse-backend/internal/orders"
	"github.com/angelmondragon/brewhouse-backend/internal/shipments"
	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	"github.com/angelmondragon/brewhouse-backend/pkg/db"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
	"github.com/angelmondragon/brewhouse-backend/pkg/metrics"
	"github.com/angelmondragon/brewhouse-backend/pkg/migrate"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox"
	"github.com/angelmondragon/brewhouse-backend/pkg/redis"
)

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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		beerCache   = beers.NoopCache()
		redisPinger controllers.Pinger
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		beerCache = beers.NewRedisCache(redisClient, cfg.Redis.BeerCacheTTL)
		redisPinger = redisClient
	} else {
		logg.Info(context.Background(), "redis not configured, beer cache disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	domainMetrics := metrics.NewDomainMetrics(registry)
	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	beerRepo := beers.NewRepository(dbClient.DB())
	beerService, err := beers.NewService(beerRepo, beerCache, logg, cfg.Pagination)
	if err != nil {
		return err
	}
	customerService, err := customers.NewService(customers.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		beerRepo,
		dbClient,
		events,
		domainMetrics,
		logg,
		cfg.Pagination,
	)
	if err != nil {
		return err
	}
	shipmentService, err := shipments.NewService(
		shipments.NewRepository(dbClient.DB()),
		dbClient,
		events,
		domainMetrics,
		shipments.Rules{CancelledExempt: cfg.FeatureFlags.CancelledShipmentExempt},
		logg,
	)
	if err != nil {
		return err
	}

	obs := routes.Observability{
		DBPinger:    dbClient,
		RedisPinger: redisPinger,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, obs, beerService, customerService, orderService, shipmentService),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logg.Info(ctx, "api server stopped")
	return nil
}
