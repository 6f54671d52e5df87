package main

// GET    /api/products       - list the catalog
// GET    /api/cart           - list a user's cart with its total
// POST   /api/cart           - add a product, merging into an existing line
// POST   /api/cart/{cartId}  - set a line's quantity (zero kept)
// PUT    /api/cart/{cartId}  - set a line's quantity (zero removes)
// DELETE /api/cart/{cartId}  - remove a line
// POST   /api/checkout       - price items, return a receipt, clear the cart
// POST   /api/users          - find or create a user by email
// GET    /api/users/{id}     - fetch a user
// GET    /health, /metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"minishop/cache"
	"minishop/config"
	"minishop/events"
	"minishop/handler"
	"minishop/logging"
	"minishop/metrics"
	"minishop/remote"
	"minishop/service"
	"minishop/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log, "minishop")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// --- Store ---
	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer st.Close()
	if cfg.Database.Driver == store.DriverPostgres {
		st.DB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	if err := st.RunMigrations(cfg.Database.Driver); err != nil {
		logger.Fatal("Failed running migrations", zap.Error(err))
	}
	logger.Info("Database ready", zap.String("driver", cfg.Database.Driver))

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Service ---
	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithClearScope(service.ClearScope(cfg.Checkout.ClearScope)),
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, catalog reads will fall through to the store", zap.Error(err))
		}
		catalogCache := cache.NewRedisCache(rdb, cfg.Redis.TTL)
		// the catalog source may have changed since the last run
		if err := catalogCache.Invalidate(context.Background()); err != nil {
			logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
		opts = append(opts, service.WithCache(catalogCache))
	}

	if cfg.FakeStore.Enabled {
		opts = append(opts, service.WithRemoteCatalog(remote.NewClient(cfg.FakeStore.BaseURL, cfg.FakeStore.Timeout, logger)))
		logger.Info("Serving catalog from remote store", zap.String("url", cfg.FakeStore.BaseURL))
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ReceiptsTopic, logger)
	}
	defer publisher.Close()
	opts = append(opts, service.WithPublisher(publisher))

	svc := service.NewService(st, opts...)
	var serviceInterface service.ServiceInterface = svc

	// --- Handlers ---
	h := handler.NewHandler(serviceInterface, logger, m)

	// --- Server ---
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(h, reg, cfg.CORS.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("redis", cfg.Redis.Enabled),
			zap.Bool("kafka", cfg.Kafka.Enabled),
			zap.Bool("fake_store", cfg.FakeStore.Enabled),
			zap.String("checkout_clear_scope", cfg.Checkout.ClearScope))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
