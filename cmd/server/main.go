package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	appmetrics "onboarding/internal/application/metrics"
	apphandler "onboarding/internal/application/handler"
	"onboarding/internal/application/notifier"
	appservice "onboarding/internal/application/service"
	appstore "onboarding/internal/application/store/application"
	customerstore "onboarding/internal/application/store/customer"
	platformaws "onboarding/internal/platform/aws"
	"onboarding/internal/platform/config"
	"onboarding/internal/platform/httpserver"
	"onboarding/internal/platform/kafka"
	"onboarding/internal/platform/logger"
	"onboarding/internal/platform/metrics"
	"onboarding/internal/platform/postgres"
	"onboarding/internal/platform/redis"
	reghandler "onboarding/internal/registration/handler"
	regservice "onboarding/internal/registration/service"
	regstore "onboarding/internal/registration/store"
	httptransport "onboarding/internal/transport/http"
	"onboarding/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and runs the
// expiry sweeper. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("onboarding stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	health := map[string]httptransport.HealthCheck{}

	applications, closeDB, err := buildApplicationStore(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer closeDB()

	customers, closeRedis, err := buildCustomerDirectory(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer closeRedis()

	sender, closeNotifier, err := buildNotifier(ctx, cfg.Notifier, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	lifecycle, err := appservice.New(appservice.Dependencies{
		Applications: applications,
		Customers:    customers,
		Notifier:     sender,
		Clock:        time.Now,
	},
		appservice.WithLogger(log),
		appservice.WithMetrics(appmetrics.New(reg)),
	)
	if err != nil {
		return fmt.Errorf("build lifecycle service: %w", err)
	}
	regOpts := []regservice.Option{
		regservice.WithLogger(log),
		regservice.WithAllowedDomainSuffix(cfg.Registration.DomainSuffix),
	}
	if len(cfg.Registration.BlockedWords) > 0 {
		regOpts = append(regOpts, regservice.WithBlockedWords(cfg.Registration.BlockedWords...))
	}
	registrations := regservice.New(regstore.NewInMemory(), regOpts...)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Health:   health,
		Features: []httptransport.RouteRegistrar{
			reghandler.New(registrations, log),
			apphandler.New(lifecycle, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting onboarding", "addr", cfg.Addr, "notifier", cfg.Notifier.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	if cfg.ExpirySweepInterval > 0 {
		sweeper := appservice.NewSweeper(lifecycle, cfg.ExpirySweepInterval, log)
		g.Go(func() error {
			sweeper.Run(gctx)
			return nil
		})
	}
	return g.Wait()
}

func buildApplicationStore(ctx context.Context, cfg config.Server, log *slog.Logger, health map[string]httptransport.HealthCheck) (appservice.ApplicationStore, func(), error) {
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		log.Info("DATABASE_URL not set, keeping applications in memory")
		return appstore.NewInMemoryStore(), func() {}, nil
	}
	store := appstore.NewPostgres(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	health["postgres"] = db.PingContext
	return store, func() { _ = db.Close() }, nil
}

func buildCustomerDirectory(ctx context.Context, cfg config.Server, log *slog.Logger, health map[string]httptransport.HealthCheck) (appservice.CustomerDirectory, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("REDIS_URL not set, keeping customers in memory")
		return customerstore.NewInMemoryStore(), func() {}, nil
	}
	health["redis"] = client.Health
	return customerstore.NewRedis(client.UniversalClient), func() { _ = client.Close() }, nil
}

func buildNotifier(ctx context.Context, cfg config.NotifierConfig, log *slog.Logger) (appservice.NotificationSender, func(), error) {
	sender, closeFn, err := buildBackend(ctx, cfg, log)
	if err != nil || cfg.Backend == config.NotifierMemory {
		return sender, closeFn, err
	}
	breaker := circuit.New(cfg.Backend,
		circuit.WithFailureThreshold(cfg.BreakerThreshold),
		circuit.WithCooldown(cfg.BreakerCooldown),
	)
	return notifier.NewGuarded(sender, breaker, log), closeFn, nil
}

func buildBackend(ctx context.Context, cfg config.NotifierConfig, log *slog.Logger) (notifier.Sender, func(), error) {
	switch cfg.Backend {
	case config.NotifierSNS:
		awsCfg, err := platformaws.LoadConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		return notifier.NewSNS(platformaws.NewSNSClient(awsCfg), cfg.SNSTopicARN), func() {}, nil
	case config.NotifierSES:
		awsCfg, err := platformaws.LoadConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		return notifier.NewSES(platformaws.NewSESClient(awsCfg), cfg.SESFrom, cfg.SESTo), func() {}, nil
	case config.NotifierKafka:
		client, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return notifier.NewKafka(client, cfg.KafkaTopic), client.Close, nil
	default:
		log.Warn("using in-memory notifier, notifications are not delivered")
		return notifier.NewInMemory(), func() {}, nil
	}
}
