package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	abtesthandler "storefront/internal/abtest/handler"
	abtestservice "storefront/internal/abtest/service"
	abteststore "storefront/internal/abtest/store"
	countryhandler "storefront/internal/country/handler"
	countryservice "storefront/internal/country/service"
	currencyhandler "storefront/internal/currency/handler"
	currencyservice "storefront/internal/currency/service"
	currencystore "storefront/internal/currency/store"
	exporthandler "storefront/internal/export/handler"
	exportservice "storefront/internal/export/service"
	httpapi "storefront/internal/http"
	jwttoken "storefront/internal/jwt_token"
	loyaltyhandler "storefront/internal/loyalty/handler"
	loyaltyservice "storefront/internal/loyalty/service"
	loyaltystore "storefront/internal/loyalty/store"
	notificationhandler "storefront/internal/notification/handler"
	"storefront/internal/notification/publisher"
	notificationservice "storefront/internal/notification/service"
	notificationstore "storefront/internal/notification/store"
	orderhandler "storefront/internal/order/handler"
	orderservice "storefront/internal/order/service"
	orderstore "storefront/internal/order/store"
	"storefront/internal/platform/config"
	"storefront/internal/platform/httpserver"
	"storefront/internal/platform/kafka"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/metrics"
	"storefront/internal/platform/postgres"
	"storefront/internal/platform/redis"
	ratelimitmw "storefront/internal/ratelimit/middleware"
	ratelimitmodels "storefront/internal/ratelimit/models"
	ratelimitstore "storefront/internal/ratelimit/store"
	schedulerhandler "storefront/internal/scheduler/handler"
	schedulerservice "storefront/internal/scheduler/service"
	searchhandler "storefront/internal/search/handler"
	searchservice "storefront/internal/search/service"
	searchstore "storefront/internal/search/store"
	taxhandler "storefront/internal/tax/handler"
	taxservice "storefront/internal/tax/service"
	taxstore "storefront/internal/tax/store"
	vendorhandler "storefront/internal/vendors/handler"
	vendorservice "storefront/internal/vendors/service"
	vendorstore "storefront/internal/vendors/store"
	"storefront/pkg/platform/circuit"
)

const shutdownGrace = 10 * time.Second

// orderStore is satisfied by both order stores; vendor metrics read the same
// rows the order service writes.
type orderStore interface {
	orderservice.Store
	vendorservice.SalesSource
}

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// infra holds the optional backing services. Nil fields mean the in-memory
// adapter is used instead.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func (i *infra) close(log *slog.Logger) {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("closing postgres", "error", err)
		}
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	var (
		in  infra
		err error
	)
	if in.db, err = postgres.Open(ctx, cfg.Database); err != nil {
		return nil, err
	}
	if in.db != nil {
		if err := postgres.Migrate(ctx, in.db); err != nil {
			in.close(log)
			return nil, err
		}
		log.Info("postgres connected")
	}
	if in.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		in.close(log)
		return nil, err
	}
	if in.redis != nil {
		log.Info("redis connected")
	}
	if in.kafka, err = kafka.New(cfg.Kafka); err != nil {
		in.close(log)
		return nil, err
	}
	if in.kafka != nil {
		if err := kafka.EnsureTopics(ctx, in.kafka, cfg.Kafka.NotificationTopic, cfg.Kafka.EmailTopic); err != nil {
			// The breaker takes over if the broker stays unreachable.
			log.Warn("ensuring kafka topics", "error", err)
		}
		log.Info("kafka configured", "brokers", cfg.Kafka.Brokers)
	}
	return &in, nil
}

func run(cfg config.Server, log *slog.Logger) error {
	if cfg.Auth.JWTSigningKey == "" {
		return errors.New("JWT_SIGNING_KEY is required in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	in, err := connect(startCtx, cfg, log)
	cancel()
	if err != nil {
		return err
	}
	defer in.close(log)

	m := metrics.New(prometheus.DefaultRegisterer)

	// Vendors, orders and notifications move to Postgres when it is configured.
	var (
		vendors       vendorservice.Store        = vendorstore.NewInMemory()
		orders        orderStore                 = orderstore.NewInMemory()
		notifications notificationservice.Store  = notificationstore.NewInMemory()
		tracker       searchservice.QueryTracker = searchstore.NewMemoryTracker()
		rateCache     currencyservice.RateCache  = currencystore.NewMemoryRateCache(cfg.Currency.RateCacheTTL)
		pub           publisher.Publisher        = publisher.NewOutbox(0)
	)
	if in.db != nil {
		vendors = vendorstore.NewPostgres(in.db)
		orders = orderstore.NewPostgres(in.db)
		notifications = notificationstore.NewPostgres(in.db)
	}
	if in.redis != nil {
		tracker = searchstore.NewRedisTracker(in.redis.Client)
		rateCache = currencystore.NewRedisRateCache(in.redis.Client, cfg.Currency.RateCacheTTL)
	}
	if in.kafka != nil {
		pub = publisher.NewResilient(
			publisher.NewKafka(in.kafka),
			publisher.NewOutbox(0),
			circuit.New("kafka", circuit.WithSuccessThreshold(1)),
			publisher.WithLogger(log),
			publisher.WithMetrics(m),
		)
	}

	abtestSvc := abtestservice.New(abteststore.NewInMemory(), abtestservice.WithLogger(log), abtestservice.WithMetrics(m))
	searchSvc := searchservice.New(searchstore.NewCatalog(), tracker, searchservice.WithLogger(log))
	loyaltySvc := loyaltyservice.New(loyaltystore.NewInMemory(), loyaltyservice.WithLogger(log), loyaltyservice.WithMetrics(m))
	vendorSvc := vendorservice.New(vendors, orders, vendorservice.WithLogger(log))
	taxSvc := taxservice.New(taxstore.NewInMemory(), taxservice.WithLogger(log))
	currencySvc := currencyservice.New(currencystore.NewInMemory(), rateCache,
		currencyservice.WithLogger(log), currencyservice.WithMetrics(m))
	countrySvc := countryservice.New(countryservice.WithLogger(log))
	notificationSvc := notificationservice.New(notifications, pub,
		notificationservice.Topics{Notifications: cfg.Kafka.NotificationTopic, Emails: cfg.Kafka.EmailTopic},
		notificationservice.WithLogger(log))
	orderSvc := orderservice.New(orders, vendorSvc,
		orderservice.WithLogger(log),
		orderservice.WithMetrics(m),
		orderservice.WithPoints(loyaltySvc),
		orderservice.WithNotifier(notificationSvc))
	exportSvc := exportservice.New(orderSvc, searchSvc, loyaltySvc, exportservice.WithLogger(log), exportservice.WithMetrics(m))

	registry := schedulerservice.New(schedulerservice.WithLogger(log), schedulerservice.WithMetrics(m))
	if err := schedulerservice.RegisterDefaults(registry, currencySvc, notificationSvc, notificationservice.ReadRetention); err != nil {
		return err
	}
	if cfg.Scheduler.Enabled {
		if err := registry.StartAll(); err != nil {
			return err
		}
	}

	jwtSvc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)

	router := httpapi.New(httpapi.Config{
		Logger:         log,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		Tokens:         jwttoken.NewJWTServiceAdapter(jwtSvc),
		Limiter:        limiter(cfg.RateLimit, in, log, m),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		HealthChecks:   healthChecks(in),
	}, httpapi.Handlers{
		ABTests:       abtesthandler.New(abtestSvc, log),
		Search:        searchhandler.New(searchSvc, log),
		Loyalty:       loyaltyhandler.New(loyaltySvc, log),
		Vendors:       vendorhandler.New(vendorSvc, log),
		Taxes:         taxhandler.New(taxSvc, log),
		Currencies:    currencyhandler.New(currencySvc, log),
		Countries:     countryhandler.New(countrySvc, log),
		Orders:        orderhandler.New(orderSvc, log),
		Export:        exporthandler.New(exportSvc, log),
		Notifications: notificationhandler.New(notificationSvc, log),
		Scheduler:     schedulerhandler.New(registry, log),
	})

	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting storefront", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := registry.Shutdown(shutdownCtx); err != nil {
		log.Error("scheduler shutdown failed", "error", err)
	}
	return nil
}

// limiter returns nil when rate limiting is disabled.
func limiter(cfg config.RateLimitConfig, in *infra, log *slog.Logger, m *metrics.Metrics) *ratelimitmw.Middleware {
	if !cfg.Enabled {
		return nil
	}
	var st ratelimitmw.Store = ratelimitstore.NewInMemory()
	if in.redis != nil {
		st = ratelimitstore.NewRedis(in.redis.Client)
	}
	return ratelimitmw.New(st, map[ratelimitmodels.Class]ratelimitmodels.Policy{
		ratelimitmodels.ClassRead:  {Limit: cfg.ReadPerWindow, Window: cfg.Window},
		ratelimitmodels.ClassWrite: {Limit: cfg.WritePerWindow, Window: cfg.Window},
	}, ratelimitmw.WithLogger(log), ratelimitmw.WithMetrics(m))
}

func healthChecks(in *infra) []httpapi.HealthCheck {
	checks := []httpapi.HealthCheck{{Name: "postgres"}, {Name: "redis"}, {Name: "kafka"}}
	if in.db != nil {
		checks[0].Check = func(ctx context.Context) error { return postgres.Health(ctx, in.db) }
	}
	if in.redis != nil {
		checks[1].Check = in.redis.Health
	}
	if in.kafka != nil {
		checks[2].Check = func(ctx context.Context) error { return kafka.Health(ctx, in.kafka) }
	}
	return checks
}
