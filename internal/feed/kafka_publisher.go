package feed

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"storefront/internal/entities"
	"storefront/pkg/logger"
)

// KafkaPublisher публикует изменения в топик, из которого каждый инстанс
// сервиса ретранслирует их в свой Hub. Ключ сообщения - id заказа, поэтому
// события одного заказа попадают в одну партицию и не переупорядочиваются.
type KafkaPublisher struct {
	producer producer
	topic    string
	log      handlerLogger
}

func NewKafkaPublisher(producer producer, topic string, log handlerLogger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log.With(logger.NewField("topic", topic)),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event entities.ChangeEvent) error {
	if event.Order.StoreID == "" {
		FeedPublishTotal.WithLabelValues("kafka", "rejected").Inc()
		return ErrMissingStore
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	payload, err := EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Order.ID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("store_id"), Value: []byte(event.Order.StoreID)},
			{Key: []byte("type"), Value: []byte(event.Type.String())},
		},
	})
	if err != nil {
		FeedPublishTotal.WithLabelValues("kafka", "error").Inc()
		return fmt.Errorf("send change event: %w", err)
	}

	FeedPublishTotal.WithLabelValues("kafka", "ok").Inc()
	p.log.Info("change event published",
		logger.NewField("order", event.Order.ID),
		logger.NewField("type", event.Type.String()),
		logger.NewField("partition", partition),
		logger.NewField("offset", offset),
	)
	return nil
}
