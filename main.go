package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"financing-ledger/config"
	"financing-ledger/events"
	httpLayer "financing-ledger/http"
	"financing-ledger/ledger"
	"financing-ledger/lock"
	"financing-ledger/repository"
	"financing-ledger/service"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
	logger.Info("server exited")
}

func run(cfg config.Config, logger *logrus.Logger) error {
	ctx := context.Background()

	financingRepo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var (
		cache  repository.CacheRepository = repository.NewMockCacheWithTTL(cfg.CacheTTL)
		locker lock.Locker                = lock.NewKeyedMutex()
	)
	rdb, redisLocker, err := config.ConnectRedis(ctx, cfg.RedisAddress)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable; using in-process cache and locks")
	} else if rdb != nil {
		defer rdb.Close()
		cache = repository.NewRedisCache(rdb, cfg.CacheTTL)
		locker = lock.NewRedisLocker(redisLocker, cfg.LockTTL, logger)
		logger.WithField("addr", cfg.RedisAddress).Info("connected to redis")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	var invoker service.LedgerInvoker = ledger.NewCLIInvoker(cfg.Ledger, logger)
	if cfg.LedgerBreakerFailures > 0 {
		invoker = ledger.NewBreakerInvoker(invoker, uint32(cfg.LedgerBreakerFailures), cfg.LedgerBreakerTimeout, logger)
	}
	if cfg.Ledger.SecretKey == "" {
		logger.Warn("STELLAR_SECRET_KEY not set; approvals will fail")
	}

	financingService := service.NewFinancingService(financingRepo, cache, invoker, locker, publisher, logger)
	financingHandler := httpLayer.NewFinancingHandler(financingService, logger)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer rateLimiter.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpLayer.NewRouter(financingHandler, rateLimiter, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Ledger.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", server.Addr).Info("financing API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func newRepository(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.FinancingRepository, error) {
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		logger.Warn("DB_DRIVER=memory; records are lost on restart")
		return repository.NewFinancingRepositoryMemory(), nil
	}

	repo := repository.NewFinancingRepositoryGorm(db)
	if cfg.DBMigrateOnStartup {
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	logger.WithField("driver", cfg.DBDriver).Info("connected to database")
	return repo, nil
}
