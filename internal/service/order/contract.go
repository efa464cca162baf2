//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=order_test
package order

import (
	"context"

	"storefront/internal/entities"
	"storefront/pkg/logger"
)

type Repository interface {
	NextOrderNumber(ctx context.Context, storeID string) (int64, error)
	Create(ctx context.Context, order entities.Order) (*entities.Order, error)
	UpdateStatusIfCurrent(
		ctx context.Context,
		orderID string,
		expected entities.OrderStatusType,
		next entities.OrderStatusType,
		transition entities.OrderTransition,
	) (*entities.Order, error)
	GetByID(ctx context.Context, orderID string) (*entities.Order, error)
	ListByStore(ctx context.Context, storeID string, statuses []entities.OrderStatusType) ([]entities.Order, error)
}

type Publisher interface {
	Publish(ctx context.Context, event entities.ChangeEvent) error
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
