//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=transition_test
package transition

import (
	"context"

	"storefront/internal/entities"
	"storefront/pkg/logger"
)

type OrderService interface {
	Get(ctx context.Context, orderID string) (*entities.Order, error)
	TransitionIfStatus(
		ctx context.Context,
		orderID string,
		expected entities.OrderStatusType,
		next entities.OrderStatusType,
		transition entities.OrderTransition,
	) (*entities.Order, error)
}

// Notifier принимает задачу на отправку и не ждет доставки.
type Notifier interface {
	Enqueue(order entities.Order, kind entities.TemplateKind)
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
