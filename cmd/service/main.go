package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // localhost-only ${PPROF_PORT}
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	application "storefront/internal/app"
	"storefront/internal/cache/redis"
	"storefront/internal/feed"
	"storefront/internal/handlers/kafka-consumer/order_changed"
	"storefront/internal/handlers/rest/healthcheck_head"
	"storefront/internal/handlers/rest/notification_failures_get"
	"storefront/internal/handlers/rest/order_get"
	"storefront/internal/handlers/rest/order_post"
	"storefront/internal/handlers/rest/order_transition_post"
	"storefront/internal/handlers/rest/orders_get"
	"storefront/internal/handlers/rest/orders_stream_get"
	"storefront/internal/handlers/rest/ping_get"
	"storefront/internal/handlers/rest/queue_get"
	"storefront/internal/handlers/rest/queue_stream_get"
	"storefront/internal/handlers/rest/queue_viewed_post"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/dotenv"
	"storefront/internal/pkg/kafka"
	metrics_system "storefront/internal/pkg/metrics"
	"storefront/internal/pkg/middlewares/graceful_shutdown"
	"storefront/internal/pkg/middlewares/metrics"
	"storefront/internal/pkg/middlewares/rate_limiter"
	"storefront/internal/pkg/middlewares/timeout"
	"storefront/internal/pkg/postgres"
	"storefront/internal/reconciler"
	orderService "storefront/internal/service/order"
	"storefront/pkg/logger"
	"storefront/pkg/logger/zap_adapter"
	"storefront/pkg/token_bucket"
)

func main() {
	zapLogger, err := zap_adapter.NewFromEnv()
	if err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			stdlog.Printf("failed to sync logger: %v", err)
		}
	}()

	var appLogger logger.Logger = zapLogger
	mainLog := appLogger.With()

	mainLog.Info("starting storefront application")

	if err := dotenv.Load(); err != nil {
		mainLog.Error("failed to load .env file", logger.NewField("error", err))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		mainLog.Error("load config", logger.NewField("error", err))
		return
	}

	err = run(context.Background(), cfg, appLogger)
	if err != nil {
		mainLog.Error("application failed", logger.NewField("error", err))
		return
	}
}

// changeFeed транспорт изменений заказов: публикатор для сервиса и локальный Hub для потоков.
type changeFeed struct {
	hub       *feed.Hub
	publisher orderService.Publisher
	relayErr  chan error
	close     func()
}

//nolint:contextcheck // Получаю предупреждения от линтера в местах де наследуюсь от context.Background(), хотя это часть gracefull shutdown
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	const (
		shutdownPeriod      = 15 * time.Second
		shutdownHardPeriod  = 3 * time.Second
		readinessDrainDelay = 5 * time.Second
	)

	// https://victoriametrics.com/blog/go-graceful-shutdown/#b-use-basecontext-to-provide-a-global-context-to-all-connections
	var isShuttingDown atomic.Bool

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	runLog := log.With()

	pool, err := postgres.NewConnPool(ctx, log, &cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	err = postgres.Migrate(ctx, log, pool)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	rdb, err := redis.NewClient(ctx, log, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() {
		err := rdb.Close()
		if err != nil {
			runLog.Error("failed to close redis client",
				logger.NewField("error", err),
			)
		}
	}()

	// ongoingCtx используется для BaseContext и не должен отменяться при SIGTERM.
	// Он отменяется только после server.Shutdown() для завершения in-flight запросов.
	// https://victoriametrics.com/blog/go-graceful-shutdown/#b-use-basecontext-to-provide-a-global-context-to-all-connections
	ongoingCtx, stopOngoingGracefully := context.WithCancel(context.Background())
	defer stopOngoingGracefully()

	changes, err := initChangeFeed(ctx, ongoingCtx, log, cfg)
	if err != nil {
		return fmt.Errorf("change feed: %w", err)
	}
	defer changes.close()

	businessApp, err := application.InitializeApplication(ctx, log, pool, pgxv5.DefaultCtxGetter, rdb, changes.publisher, cfg)
	if err != nil {
		return fmt.Errorf("business logic: %w", err)
	}

	businessApp.Notifications.Start(ongoingCtx)

	metrics_system.StartSystemMetricsCollector(ongoingCtx, metrics_system.DefaultCollectInterval)

	// основной http сервер
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: initRouter(ongoingCtx, log, &isShuttingDown, pool, changes.hub, businessApp, cfg.Server),
		BaseContext: func(_ net.Listener) context.Context {
			return ongoingCtx
		},

		ReadHeaderTimeout: 5 * time.Second, // Slowloris DoS gosec G112
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second, // потоки SSE снимают дедлайн сами
		IdleTimeout:       60 * time.Second,
	}
	// Shutdown не ждет долгоживущие потоки: закрытый Hub завершает их
	server.RegisterOnShutdown(changes.hub.Close)

	serverErr := make(chan error, 1)
	go func() {
		defer close(serverErr)
		runLog.Info("server starting",
			logger.NewField("port", cfg.Server.Port),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	// основной http сервер

	// pprof http сервер
	var pprofServer *http.Server
	var pprofServerErr chan error
	if cfg.Server.PprofEnabled {
		pprofServer = &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.PprofPort),
			Handler: initPprofRouter(&isShuttingDown, pool),
			BaseContext: func(_ net.Listener) context.Context {
				return ongoingCtx
			},

			ReadHeaderTimeout: 5 * time.Second, // Slowloris DoS gosec G112
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		pprofServerErr = make(chan error, 1)
		go func() {
			defer close(pprofServerErr)
			runLog.Info("pprof server starting",
				logger.NewField("port", cfg.Server.PprofPort),
			)
			if err := pprofServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				pprofServerErr <- err
			}
		}()
	}
	// pprof http сервер

	select {
	case <-ctx.Done():
		runLog.Info("Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case err := <-pprofServerErr: // if !cfg.Server.PprofEnabled будет nil по умолчанию, и данный кейс будет проигнорирован
		return fmt.Errorf("pprof server: %w", err)
	case err := <-changes.relayErr: // nil для локального транспорта
		return fmt.Errorf("change feed relay: %w", err)
	}

	stop()
	isShuttingDown.Store(true)

	time.Sleep(readinessDrainDelay)
	runLog.Info("draining requests")

	// shutdownCtx должен быть независим от ctx, который уже отменен на этом этапе.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)

	defer cancel()

	var shutdownErr error
	err = server.Shutdown(shutdownCtx)
	if pprofServer != nil {
		shutdownErr = pprofServer.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			runLog.Error("pprof server shutdown error", logger.NewField("error", shutdownErr))
		} else {
			runLog.Info("pprof server stopped")
		}
	}

	// уведомления, принятые до остановки, дописываются в журнал
	notifyErr := businessApp.Notifications.Shutdown(shutdownCtx)
	if notifyErr != nil {
		runLog.Error("notification dispatcher shutdown error", logger.NewField("error", notifyErr))
	}

	stopOngoingGracefully()
	businessApp.BackgroundWorkers.Wait()

	if err != nil || shutdownErr != nil || notifyErr != nil {
		runLog.Info("Graceful shutdown timeout, forcing close")
		time.Sleep(shutdownHardPeriod)
	}

	runLog.Info("Server stopped")
	return nil
}

// initChangeFeed в режиме kafka сервис публикует в топик, а каждый инстанс
// читает топик своей группой и раздает события локальным подписчикам.
func initChangeFeed(ctx, ongoingCtx context.Context, log logger.Logger, cfg *config.Config) (*changeFeed, error) {
	hub := feed.NewHub(cfg.Feed.BufferSize, log)

	if cfg.Feed.Transport != config.FeedTransportKafka {
		return &changeFeed{
			hub:       hub,
			publisher: hub,
			close:     hub.Close,
		}, nil
	}

	brokers := cfg.Kafka.BrokerList()

	producer, err := kafka.NewSyncProducer(ctx, log, &cfg.Kafka, brokers)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	// своя группа на инстанс: каждый инстанс должен получить все события
	groupID := fmt.Sprintf("%s-%s", cfg.Kafka.ConsumerGroup, uuid.NewString())

	consumer, err := kafka.NewConsumer(
		ctx,
		log,
		&cfg.Kafka,
		brokers,
		groupID,
		[]string{cfg.Kafka.Topic},
		sarama.OffsetNewest,
		order_changed.New(log, hub),
	)
	if err != nil {
		closeErr := producer.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("kafka consumer: %w (failed to close producer: %w)", err, closeErr)
		}
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	relayLog := log.With(logger.NewField("group", groupID))
	relayErr := make(chan error, 1)
	go func() {
		defer close(relayErr)

		err := consumer.Start(ongoingCtx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, sarama.ErrClosedConsumerGroup) {
				relayLog.Info("change feed relay stopped gracefully")
			} else {
				relayErr <- err
			}
		}
	}()

	return &changeFeed{
		hub:       hub,
		publisher: feed.NewKafkaPublisher(producer, cfg.Kafka.Topic, log),
		relayErr:  relayErr,
		close: func() {
			hub.Close()
			if err := consumer.Close(); err != nil {
				relayLog.Error("failed to close Kafka consumer", logger.NewField("error", err))
			}
			if err := producer.Close(); err != nil {
				relayLog.Error("failed to close Kafka producer", logger.NewField("error", err))
			}
		},
	}, nil
}

const rateLimiterIdleTTL = 10 * time.Minute

func initRouter(
	ongoingCtx context.Context,
	log logger.Logger,
	isShuttingDown *atomic.Bool,
	database healthcheck_head.Pinger,
	hub *feed.Hub,
	app *application.Application,
	cfg config.HTTPServer,
) http.Handler {
	router := mux.NewRouter()

	router.Use(graceful_shutdown.Middleware(isShuttingDown, ongoingCtx))

	router.Use(timeout.Middleware(cfg.RequestTimeout))
	router.Use(metrics.Middleware(log))
	router.Use(rate_limiter.Middleware(log, cfg.RateLimiterQPS, token_bucket.NewKeyed(cfg.RateLimiterQPS, float64(cfg.RateLimiterBurst), rateLimiterIdleTTL)))
	router.Handle("/metrics", promhttp.Handler())

	router.Handle("/healthcheck", healthcheck_head.New(isShuttingDown, database)).Methods("HEAD")
	router.Handle("/ping", ping_get.New(log)).Methods("GET")

	heartbeat := cfg.StreamHeartbeat
	if heartbeat <= 0 {
		heartbeat = orders_stream_get.DefaultHeartbeat
	}

	router.Handle("/orders", order_post.New(log, app.Orders)).Methods("POST")
	router.Handle("/orders/{id}", order_get.New(log, app.Orders)).Methods("GET")
	router.Handle("/orders/{id}/transition", order_transition_post.New(log, app.Transitions)).Methods("POST")

	router.Handle("/stores/{store_id}/orders", orders_get.New(log, app.Orders)).Methods("GET")
	router.Handle("/stores/{store_id}/orders/stream", orders_stream_get.New(log, app.Orders, hub, heartbeat)).Methods("GET")
	queueViews := reconciler.NewViews()
	router.Handle("/stores/{store_id}/queue", queue_get.New(log, app.Queue)).Methods("GET")
	router.Handle("/stores/{store_id}/queue/stream", queue_stream_get.New(log, app.Orders, hub, queueViews, heartbeat)).Methods("GET")
	router.Handle("/stores/{store_id}/queue/viewed", queue_viewed_post.New(log, queueViews)).Methods("POST")
	router.Handle("/stores/{store_id}/notifications/failures", notification_failures_get.New(log, app.Notifications)).Methods("GET")

	return router
}

func initPprofRouter(isShuttingDown *atomic.Bool, database healthcheck_head.Pinger) http.Handler {
	router := mux.NewRouter()

	router.Handle("/healthcheck", healthcheck_head.New(isShuttingDown, database)).Methods("HEAD")
	router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return router
}
