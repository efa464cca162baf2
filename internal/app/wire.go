//go:build wireinject
// +build wireinject

package app

import (
	"context"
	"net/http"

	"storefront/internal/cache/redis"
	"storefront/internal/gateway/http/messaging"
	"storefront/internal/handlers/tasks/notification_retry"
	"storefront/internal/pkg/config"
	notificationRepo "storefront/internal/repository/notification"
	orderRepo "storefront/internal/repository/order"
	"storefront/internal/service/notification"
	orderService "storefront/internal/service/order"
	"storefront/internal/service/queue"
	"storefront/internal/service/transition"

	"storefront/pkg/background"
	"storefront/pkg/logger"
	"storefront/pkg/querier"
	"storefront/pkg/tx"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

type Application struct {
	Orders            *orderService.Service
	Transitions       *transition.Engine
	Queue             *queue.Projector
	Notifications     *notification.Dispatcher
	BackgroundWorkers *background.Worker
}

var repositorySet = wire.NewSet(
	provideTxManager,
	provideQuerier,
	provideOrderRepository,
	provideNotificationRepository,

	wire.Bind(new(orderService.Repository), new(*orderRepo.Repository)),
	wire.Bind(new(orderService.TxManager), new(*tx.Manager)),
	wire.Bind(new(notification.DeliveryRepository), new(*notificationRepo.Repository)),
)

var notificationSet = wire.NewSet(
	provideClaimStore,
	provideMessagingGateway,
	provideDispatcherConfig,
	provideDispatcher,
	provideNotificationRetryTask,

	wire.Bind(new(notification.Gateway), new(*messaging.Gateway)),
	wire.Bind(new(notification.ClaimStore), new(*redis.ClaimStore)),
	wire.Bind(new(notification.OrderGetter), new(*orderService.Service)),
	wire.Bind(new(notification_retry.Service), new(*notification.Dispatcher)),
)

// InitializeApplication для HTTP сервиса (cmd/service)
func InitializeApplication(
	ctx context.Context,
	log logger.Logger,
	pool *pgxpool.Pool,
	getter *pgxv5.CtxGetter,
	rdb *goredis.Client,
	publisher orderService.Publisher,
	cfg *config.Config,
) (*Application, error) {
	wire.Build(
		repositorySet,
		notificationSet,

		provideOrderService,
		provideTransitionEngine,
		provideQueueProjector,

		provideTaskList,
		provideBackgroundWorkers,

		wire.Struct(new(Application), "*"),

		wire.Bind(new(transition.OrderService), new(*orderService.Service)),
		wire.Bind(new(transition.Notifier), new(*notification.Dispatcher)),
		wire.Bind(new(queue.OrderLister), new(*orderService.Service)),
	)
	return &Application{}, nil
}

type RetryWorkerApp struct {
	Notifications     *notification.Dispatcher
	BackgroundWorkers *background.Worker
}

// InitializeRetryWorkerApp для воркера повторной отправки (cmd/worker-notification-retry)
func InitializeRetryWorkerApp(
	ctx context.Context,
	log logger.Logger,
	pool *pgxpool.Pool,
	getter *pgxv5.CtxGetter,
	rdb *goredis.Client,
	publisher orderService.Publisher,
	cfg *config.Config,
) (*RetryWorkerApp, error) {
	wire.Build(
		repositorySet,
		notificationSet,

		provideOrderService,

		provideWorkerTaskList,
		provideBackgroundWorkers,

		wire.Struct(new(RetryWorkerApp), "*"),
	)
	return nil, nil
}

func provideTxManager(pool *pgxpool.Pool) *tx.Manager {
	return tx.New(pool)
}

func provideQuerier(pool *pgxpool.Pool, getter *pgxv5.CtxGetter) *querier.Querier {
	return querier.New(pool, getter)
}

func provideOrderRepository(querier *querier.Querier) *orderRepo.Repository {
	return orderRepo.New(querier)
}

func provideNotificationRepository(querier *querier.Querier) *notificationRepo.Repository {
	return notificationRepo.New(querier)
}

func provideOrderService(
	repository orderService.Repository,
	publisher orderService.Publisher,
	txManager orderService.TxManager,
	log logger.Logger,
) *orderService.Service {
	return orderService.New(repository, publisher, txManager, log)
}

func provideTransitionEngine(
	orders transition.OrderService,
	notifier transition.Notifier,
	log logger.Logger,
) *transition.Engine {
	return transition.New(orders, notifier, log)
}

func provideQueueProjector(orders queue.OrderLister) *queue.Projector {
	return queue.NewProjector(orders)
}

func provideClaimStore(rdb *goredis.Client) *redis.ClaimStore {
	return redis.NewClaimStore(rdb)
}

func provideMessagingGateway(cfg *config.Config) *messaging.Gateway {
	return messaging.New(messaging.Config{
		BaseURL:        cfg.Messaging.URL,
		Token:          cfg.Messaging.Token,
		Timeout:        cfg.Messaging.Timeout,
		MaxElapsedTime: cfg.Messaging.MaxElapsedTime,
	}, &http.Client{})
}

func provideDispatcherConfig(cfg *config.Config) notification.Config {
	return notification.Config{
		Workers:     cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		ClaimTTL:    cfg.Notification.ClaimTTL,
		MaxAttempts: cfg.Notification.MaxAttempts,
		JobTimeout:  cfg.Notification.JobTimeout,
	}
}

func provideDispatcher(
	cfg notification.Config,
	gateway notification.Gateway,
	claims notification.ClaimStore,
	deliveries notification.DeliveryRepository,
	orders notification.OrderGetter,
	log logger.Logger,
) *notification.Dispatcher {
	return notification.New(cfg, gateway, claims, deliveries, orders, log)
}

func provideNotificationRetryTask(
	log logger.Logger,
	service notification_retry.Service,
	cfg *config.Config,
) *notification_retry.NotificationRetry {
	return notification_retry.NewNotificationRetry(
		log,
		service,
		cfg.Tasks.NotificationRetryInterval,
		cfg.Tasks.NotificationRetryBatch,
	)
}

// provideTaskList повторы уходят из сервиса, если их выполняет отдельный воркер
func provideTaskList(
	cfg *config.Config,
	retryTask *notification_retry.NotificationRetry,
) []background.Task {
	if cfg.Tasks.NotificationRetryInWorker {
		return []background.Task{}
	}
	return []background.Task{
		retryTask,
	}
}

func provideWorkerTaskList(retryTask *notification_retry.NotificationRetry) []background.Task {
	return []background.Task{
		retryTask,
	}
}

func provideBackgroundWorkers(ctx context.Context, log logger.Logger, tasks []background.Task) (*background.Worker, error) {
	return background.New(ctx, log, tasks)
}
