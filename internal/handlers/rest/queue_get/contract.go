//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=queue_get_test
package queue_get

import (
	"context"

	"storefront/internal/entities"
	"storefront/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Projector interface {
	Snapshot(ctx context.Context, storeID string) (entities.QueueSnapshot, error)
}
