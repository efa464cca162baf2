//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=feed_test
package feed

import (
	"github.com/IBM/sarama"
	"storefront/pkg/logger"
)

type producer interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
