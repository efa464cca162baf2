package notification_retry

import (
	"context"
	"time"

	"storefront/pkg/logger"
)

const defaultBatch = 100

type NotificationRetry struct {
	log      handlerLogger
	service  Service
	interval time.Duration
	batch    uint64
}

func NewNotificationRetry(log handlerLogger, service Service, interval time.Duration, batch int) *NotificationRetry {
	if batch <= 0 {
		batch = defaultBatch
	}
	return &NotificationRetry{
		log:      log,
		service:  service,
		interval: interval,
		batch:    uint64(batch),
	}
}

func (n *NotificationRetry) TTL() time.Duration {
	return n.interval
}

func (n *NotificationRetry) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, n.interval)
	defer cancel()

	delivered, err := n.service.RetryFailed(ctxWithTimeout, n.batch)

	if delivered > 0 {
		n.log.With(
			logger.NewField("delivered", delivered),
		).Info("notification retry")
	}

	return err
}

func (n *NotificationRetry) Info() string {
	return "notification retry"
}
