//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=queue_viewed_post_test
package queue_viewed_post

import (
	"storefront/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Views interface {
	MarkViewed(storeID string) int
}
