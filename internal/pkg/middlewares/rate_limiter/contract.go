//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=rate_limiter_test
package rate_limiter

import (
	"time"

	"storefront/pkg/logger"
)

// Limiter лимит на клиента; при отказе возвращает, через сколько повторить.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
