//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=notification_test
package notification

import (
	"context"
	"time"

	"storefront/internal/entities"
	"storefront/pkg/logger"
)

type Gateway interface {
	Send(ctx context.Context, message entities.Message) (entities.DeliveryResult, error)
}

// ClaimStore отмечает ребро перехода как уже отправленное.
type ClaimStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type DeliveryRepository interface {
	Record(ctx context.Context, delivery entities.NotificationDelivery) (*entities.NotificationDelivery, error)
	ListFailed(ctx context.Context, maxAttempts int, limit uint64) ([]entities.NotificationDelivery, error)
	ListFailedByStore(ctx context.Context, storeID string) ([]entities.NotificationDelivery, error)
}

type OrderGetter interface {
	Get(ctx context.Context, orderID string) (*entities.Order, error)
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
