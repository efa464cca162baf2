//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=queue_test
package queue

import (
	"context"

	"storefront/internal/entities"
)

type OrderLister interface {
	ListByStore(ctx context.Context, storeID string, statuses ...entities.OrderStatusType) ([]entities.Order, error)
}
