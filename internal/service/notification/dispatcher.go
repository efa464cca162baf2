package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"storefront/internal/entities"
	"storefront/pkg/logger"
)

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultClaimTTL    = 24 * time.Hour
	defaultMaxAttempts = 5
	defaultJobTimeout  = 30 * time.Second
)

type Config struct {
	Workers     int
	QueueSize   int
	ClaimTTL    time.Duration
	MaxAttempts int
	JobTimeout  time.Duration
}

type job struct {
	order entities.Order
	kind  entities.TemplateKind
}

// Dispatcher отправляет уведомления вне пути перехода заказа: Enqueue не блокируется,
// результат доставки пишется в журнал и никогда не возвращается в вызывающий код перехода.
type Dispatcher struct {
	cfg        Config
	gateway    Gateway
	claims     ClaimStore
	deliveries DeliveryRepository
	orders     OrderGetter
	log        handlerLogger

	mu      sync.RWMutex
	jobs    chan job
	closed  bool
	started bool
	group   errgroup.Group
	drops   sync.WaitGroup
}

func New(
	cfg Config,
	gateway Gateway,
	claims ClaimStore,
	deliveries DeliveryRepository,
	orders OrderGetter,
	log handlerLogger,
) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = defaultClaimTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}

	return &Dispatcher{
		cfg:        cfg,
		gateway:    gateway,
		claims:     claims,
		deliveries: deliveries,
		orders:     orders,
		log:        log.With(logger.NewField("component", "notification-dispatcher")),
		jobs:       make(chan job, cfg.QueueSize),
	}
}

// Start запускает пул воркеров. Воркеры работают до Shutdown.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.closed {
		return
	}
	d.started = true

	ctx = context.WithoutCancel(ctx)
	for i := range d.cfg.Workers {
		d.group.Go(func() error {
			d.work(ctx, i)
			return nil
		})
	}

	d.log.Info("notification workers started", logger.NewField("workers", d.cfg.Workers))
}

// Enqueue ставит задачу в очередь без ожидания. При переполненной очереди задача
// записывается в журнал как неудачная и подхватывается ретраем.
func (d *Dispatcher) Enqueue(order entities.Order, kind entities.TemplateKind) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		NotificationDispatchTotal.WithLabelValues(kind.String(), "dropped").Inc()
		d.log.Error("notification dispatcher is shut down, notification dropped",
			logger.NewField("order", order.ID),
			logger.NewField("template", kind.String()),
		)
		return
	}

	select {
	case d.jobs <- job{order: order, kind: kind}:
		NotificationQueueDepth.Inc()
		return
	default:
	}

	NotificationDispatchTotal.WithLabelValues(kind.String(), "deferred").Inc()
	d.log.Warn("notification queue is full, deferring to retry",
		logger.NewField("order", order.ID),
		logger.NewField("template", kind.String()),
	)

	d.drops.Add(1)
	go func() {
		defer d.drops.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.JobTimeout)
		defer cancel()

		_ = d.record(ctx, order, kind, entities.DeliveryResult{
			Success:     false,
			ErrorReason: "dispatch queue is full",
		})
	}()
}

// Shutdown закрывает очередь и ждет, пока воркеры разберут оставшиеся задачи.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		d.drops.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("notification workers stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) work(ctx context.Context, worker int) {
	for j := range d.jobs {
		NotificationQueueDepth.Dec()

		jobCtx, cancel := context.WithTimeout(ctx, d.cfg.JobTimeout)
		result, err := d.Dispatch(jobCtx, j.order, j.kind)
		cancel()

		switch {
		case errors.Is(err, ErrAlreadyDispatched):
		case err != nil:
			d.log.Warn("notification not dispatched",
				logger.NewField("worker", worker),
				logger.NewField("order", j.order.ID),
				logger.NewField("template", j.kind.String()),
				logger.NewField("error", err),
			)
		case !result.Success:
			d.log.Warn("notification delivery failed",
				logger.NewField("worker", worker),
				logger.NewField("order", j.order.ID),
				logger.NewField("template", j.kind.String()),
				logger.NewField("reason", result.ErrorReason),
			)
		}
	}
}

// Dispatch отправляет шаблон по ребру перехода не больше одного раза на (заказ, шаблон).
// Ошибка означает, что отправка не выполнялась; неудачная доставка возвращается
// в DeliveryResult и пишется в журнал.
func (d *Dispatcher) Dispatch(ctx context.Context, order entities.Order, kind entities.TemplateKind) (entities.DeliveryResult, error) {
	message, err := buildMessage(order, kind)
	if err != nil {
		NotificationDispatchTotal.WithLabelValues(kind.String(), "invalid").Inc()
		return entities.DeliveryResult{}, err
	}

	key := claimKey(order.ID, kind)
	claimed, err := d.claims.Claim(ctx, key, d.cfg.ClaimTTL)
	switch {
	case err != nil:
		// без дедупликации лучше отправить, чем потерять уведомление
		d.log.Warn("notification claim unavailable, dispatching without dedupe",
			logger.NewField("order", order.ID),
			logger.NewField("template", kind.String()),
			logger.NewField("error", err),
		)
	case !claimed:
		NotificationDispatchTotal.WithLabelValues(kind.String(), "duplicate").Inc()
		return entities.DeliveryResult{}, ErrAlreadyDispatched
	}

	result := d.send(ctx, message)
	err = d.record(ctx, order, kind, result)
	if err != nil && claimed && !result.Success {
		// сбой не попал в журнал и фоновый повтор его не увидит:
		// снимаем claim, чтобы ребро можно было отправить заново
		d.release(ctx, key)
	}
	return result, nil
}

func (d *Dispatcher) release(ctx context.Context, key string) {
	err := d.claims.Release(ctx, key)
	if err != nil {
		d.log.Warn("failed to release notification claim",
			logger.NewField("key", key),
			logger.NewField("error", err),
		)
	}
}

// RetryFailed повторяет неудачные доставки, у которых остались попытки.
// Возвращает число успешно доставленных.
func (d *Dispatcher) RetryFailed(ctx context.Context, limit uint64) (int, error) {
	failed, err := d.deliveries.ListFailed(ctx, d.cfg.MaxAttempts, limit)
	if err != nil {
		return 0, fmt.Errorf("list failed deliveries: %w", err)
	}

	var delivered int
	for _, delivery := range failed {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}

		order, err := d.orders.Get(ctx, delivery.OrderID)
		if err != nil {
			d.log.Warn("retry skipped, order unavailable",
				logger.NewField("order", delivery.OrderID),
				logger.NewField("error", err),
			)
			continue
		}

		if !isCurrent(*order, delivery.TemplateKind) {
			// заказ уже ушел дальше, старое сообщение вводит клиента в заблуждение
			_ = d.record(ctx, *order, delivery.TemplateKind, entities.DeliveryResult{
				ErrorReason: fmt.Sprintf("%s: order is %s", ErrTemplateMismatch, order.Status),
			})
			continue
		}

		message, err := buildMessage(*order, delivery.TemplateKind)
		if err != nil {
			_ = d.record(ctx, *order, delivery.TemplateKind, entities.DeliveryResult{ErrorReason: err.Error()})
			continue
		}

		result := d.send(ctx, message)
		_ = d.record(ctx, *order, delivery.TemplateKind, result)
		if result.Success {
			delivered++
		}
	}

	return delivered, nil
}

// Failures неудачные доставки магазина для предупреждения в консоли персонала.
func (d *Dispatcher) Failures(ctx context.Context, storeID string) ([]entities.NotificationDelivery, error) {
	if storeID == "" {
		return nil, ErrMissingStoreID
	}

	failures, err := d.deliveries.ListFailedByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list store failures: %w", err)
	}
	return failures, nil
}

func (d *Dispatcher) send(ctx context.Context, message entities.Message) entities.DeliveryResult {
	start := time.Now()

	result, err := d.gateway.Send(ctx, message)
	if err != nil {
		result = entities.DeliveryResult{
			Success:     false,
			ErrorReason: fmt.Errorf("%w: %w", ErrDeliveryFailed, err).Error(),
		}
	}

	NotificationDispatchDuration.WithLabelValues(message.Template.String()).Observe(time.Since(start).Seconds())

	outcome := "sent"
	if !result.Success {
		outcome = "failed"
	}
	NotificationDispatchTotal.WithLabelValues(message.Template.String(), outcome).Inc()

	return result
}

func (d *Dispatcher) record(ctx context.Context, order entities.Order, kind entities.TemplateKind, result entities.DeliveryResult) error {
	status := entities.DeliverySent
	if !result.Success {
		status = entities.DeliveryFailed
	}

	_, err := d.deliveries.Record(ctx, entities.NotificationDelivery{
		OrderID:      order.ID,
		StoreID:      order.StoreID,
		TemplateKind: kind,
		Status:       status,
		LastError:    result.ErrorReason,
	})
	if err != nil {
		d.log.Error("failed to record notification delivery",
			logger.NewField("order", order.ID),
			logger.NewField("template", kind.String()),
			logger.NewField("error", err),
		)
	}
	return err
}

func buildMessage(order entities.Order, kind entities.TemplateKind) (entities.Message, error) {
	if order.Phone == "" {
		return entities.Message{}, ErrMissingPhone
	}

	params, err := templateParams(order, kind)
	if err != nil {
		return entities.Message{}, err
	}

	return entities.Message{
		To:       order.Phone,
		Template: kind,
		Params:   params,
	}, nil
}

// isCurrent шаблон соответствует текущему статусу заказа.
func isCurrent(order entities.Order, kind entities.TemplateKind) bool {
	expected, ok := entities.TemplateForStatus(order.Status)
	return ok && expected == kind
}
