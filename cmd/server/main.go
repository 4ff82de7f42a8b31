package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/bizledger/internal/adapter/http"
	"github.com/iho/bizledger/internal/adapter/http/handler"
	"github.com/iho/bizledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/bizledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bizledger/internal/adapter/repository/redis"
	"github.com/iho/bizledger/internal/infrastructure/config"
	"github.com/iho/bizledger/internal/infrastructure/eventpublisher"
	"github.com/iho/bizledger/internal/infrastructure/logger"
	"github.com/iho/bizledger/internal/infrastructure/metrics"
	"github.com/iho/bizledger/internal/infrastructure/postgres"
	"github.com/iho/bizledger/internal/infrastructure/redis"
	"github.com/iho/bizledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "bizledger",
	})
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// run wires the service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		MaxConnLifetime: cfg.DatabaseMaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return err
		}
	}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(connectCtx, cfg.RedisURL, redis.Options{
			PoolSize: cfg.RedisPoolSize,
			Timeout:  cfg.RedisTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := newServices(cfg, pool, redisClient, m, log)

	ctx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	if cfg.OutboxEnabled {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: svc.outboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(log),
			Metrics:    m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		})
		go func() {
			if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		go rateLimiter.RunCleanup(ctx, 10*time.Minute, time.Hour)
	}

	go recordPoolStats(ctx, pool, m, 15*time.Second)

	routerCfg := svc.routerConfig(pool, redisClient)
	routerCfg.Logger = log
	routerCfg.Metrics = m
	routerCfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	routerCfg.RateLimiter = rateLimiter
	routerCfg.IdempotencyTTL = cfg.IdempotencyTTL

	server := newHTTPServer(cfg, httpAdapter.NewRouter(routerCfg))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// services holds the wired use cases.
type services struct {
	clientUC      *usecase.ClientUseCase
	invoiceUC     *usecase.InvoiceUseCase
	transactionUC *usecase.TransactionUseCase
	historyUC     *usecase.HistoryUseCase
	reconUC       *usecase.ReconciliationUseCase

	outboxRepo       usecase.OutboxRepository
	idempotencyStore usecase.IdempotencyStore
}

func newServices(cfg *config.Config, pool *pgxpool.Pool, redisClient *goredis.Client, m *metrics.Metrics, log zerolog.Logger) *services {
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(cfg.MaxRetries, log)
	uow := usecase.NewUnitOfWork(txManager, retrier).WithTimeout(cfg.TransactionTimeout)
	idGen := postgresRepo.NewULIDGenerator()

	clientRepo := postgresRepo.NewClientRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	historyRepo := postgresRepo.NewBalanceHistoryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	outboxRepo := selectOutbox(cfg, pool)

	mutator := usecase.NewBalanceMutator(clientRepo, historyRepo, outboxRepo, idGen, m)

	svc := &services{
		clientUC:      usecase.NewClientUseCase(uow, clientRepo, outboxRepo, auditRepo, idGen, m),
		invoiceUC:     usecase.NewInvoiceUseCase(uow, invoiceRepo, txnRepo, mutator, idGen, m),
		transactionUC: usecase.NewTransactionUseCase(uow, txnRepo, invoiceRepo, mutator, idGen, m),
		historyUC:     usecase.NewHistoryUseCase(clientRepo, historyRepo),
		reconUC: usecase.NewReconciliationUseCase(
			uow, clientRepo, invoiceRepo, txnRepo, historyRepo, ledgerRepo, auditRepo, idGen, m,
		),
		outboxRepo: outboxRepo,
	}

	if redisClient != nil {
		svc.idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		svc.reconUC.WithReportCache(redisRepo.NewCache(redisClient), cfg.ReportCacheTTL)
	}

	return svc
}

// selectOutbox returns the Postgres outbox, or a no-op one when publishing
// is disabled so no rows accumulate.
func selectOutbox(cfg *config.Config, pool *pgxpool.Pool) usecase.OutboxRepository {
	if !cfg.OutboxEnabled {
		return postgresRepo.NewNullOutboxRepository()
	}
	return postgresRepo.NewOutboxRepository(pool)
}

func (s *services) routerConfig(pool *pgxpool.Pool, redisClient *goredis.Client) httpAdapter.RouterConfig {
	var redisPinger handler.Pinger
	if redisClient != nil {
		redisPinger = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	return httpAdapter.RouterConfig{
		ClientHandler:         handler.NewClientHandler(s.clientUC),
		InvoiceHandler:        handler.NewInvoiceHandler(s.invoiceUC),
		TransactionHandler:    handler.NewTransactionHandler(s.transactionUC),
		HistoryHandler:        handler.NewHistoryHandler(s.historyUC),
		ReconciliationHandler: handler.NewReconciliationHandler(s.reconUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisPinger),
		IdempotencyStore:      s.idempotencyStore,
	}
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

type poolStatter interface {
	Stat() *pgxpool.Stat
}

func recordPoolStats(ctx context.Context, pool poolStatter, m *metrics.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.DBConnections.Set(float64(pool.Stat().AcquiredConns()))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
