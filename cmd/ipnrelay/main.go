package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ipn-relay/config"
	httpHandler "ipn-relay/internal/adapter/http/handler"
	"ipn-relay/internal/adapter/http/middleware"
	"ipn-relay/internal/adapter/storage/memory"
	pgStorage "ipn-relay/internal/adapter/storage/postgres"
	redisStorage "ipn-relay/internal/adapter/storage/redis"
	sqliteStorage "ipn-relay/internal/adapter/storage/sqlite"
	"ipn-relay/internal/adapter/telegram"
	"ipn-relay/internal/core/domain"
	"ipn-relay/internal/core/ports"
	"ipn-relay/internal/metrics"
	"ipn-relay/internal/service"
	"ipn-relay/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("store", cfg.Store.Driver).
		Str("lock", cfg.Lock.Driver).
		Msg("Starting IPN relay")

	ctx := context.Background()

	// Initialize deposit store
	store, healthCheckers, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open deposit store")
	}
	defer closeStore()

	// Initialize Redis client when the lock or rate limiter needs it
	var rdb *goredis.Client
	if cfg.UsesRedis() {
		rdb, err = redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	var locker ports.Locker = service.NewLocalLocker()
	if cfg.Lock.Driver == config.LockDriverRedis {
		locker = redisStorage.NewReconcileLock(rdb, cfg.Lock.Key, cfg.Lock.TTL, logger.Component(log, "lock"))
	}

	// Initialize Telegram notifier
	tgBot, err := telegram.NewBot(cfg.Telegram.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	notifier := telegram.NewNotifier(tgBot, cfg.Telegram.Timeout, logger.Component(log, "telegram"))

	// Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize services
	sigSvc := service.NewHMACSignatureService(cfg.IPN.Secret)
	announcer := service.NewAnnounceService(notifier, cfg.Telegram.AdminChatIDs, m, logger.Component(log, "announce"))
	reconcileSvc := service.NewReconcileService(
		store,
		locker,
		announcer,
		m,
		domain.DefaultCurrencyTable().WithOverrides(cfg.IPN.CurrencyAliases),
		cfg.Lock.WaitTimeout,
		logger.Component(log, "reconcile"),
	)

	deps := httpHandler.RouterDeps{
		SigSvc:         sigSvc,
		ReconcileSvc:   reconcileSvc,
		Recorder:       m,
		SignatureHdr:   cfg.IPN.SignatureHeader,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Mode:           cfg.Server.Mode,
		Observer:       m,
		Gatherer:       reg,
		HealthCheckers: healthCheckers,
		Logger:         log,
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimitStore = redisStorage.NewRateLimitStore(rdb, logger.Service+":")
		deps.RateLimitRule = middleware.RateLimitRule{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window}
	}

	router := httpHandler.SetupRouter(deps)

	// HTTP Server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore builds the configured deposit store with its health checks and
// a close func.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.DepositStore, []ports.HealthChecker, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Database.Migrate {
			if err := pgStorage.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, nil, nil, fmt.Errorf("migrating database: %w", err)
			}
		}
		return pgStorage.NewTransactor(pool), []ports.HealthChecker{pgStorage.NewHealthCheck(pool)}, pool.Close, nil

	case config.StoreDriverSQLite:
		s, err := sqliteStorage.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("path", cfg.Store.SQLitePath).Msg("SQLite store opened")
		return s, []ports.HealthChecker{sqliteStorage.NewHealthCheck(s)}, func() { s.Close() }, nil

	default:
		log.Warn().Msg("Using in-memory store; balances are lost on restart")
		return memory.New(), nil, func() {}, nil
	}
}
