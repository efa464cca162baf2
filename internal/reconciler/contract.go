//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=reconciler_test
package reconciler

import (
	"context"

	"storefront/internal/entities"
	"storefront/internal/feed"
	"storefront/pkg/logger"
)

type OrderLister interface {
	ListByStore(ctx context.Context, storeID string, statuses ...entities.OrderStatusType) ([]entities.Order, error)
}

type Feed interface {
	Subscribe(storeID string) (*feed.Subscription, error)
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
