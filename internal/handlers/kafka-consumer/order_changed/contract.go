//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=order_changed_test
package order_changed

import (
	"storefront/internal/entities"
	"storefront/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

// Broadcaster локальная раздача событий подписчикам инстанса.
type Broadcaster interface {
	Broadcast(event entities.ChangeEvent)
	DropAll(err error) int
}
