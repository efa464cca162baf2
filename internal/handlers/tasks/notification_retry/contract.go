//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=notification_retry_test
package notification_retry

import (
	"context"

	"storefront/pkg/logger"
)

type Service interface {
	RetryFailed(ctx context.Context, limit uint64) (int, error)
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
