package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"storefront/internal/pkg/config"
	"storefront/pkg/logger"
	retrierconfig "storefront/pkg/retrier"
	"storefront/pkg/retrier/backoff_adapter"
)

const (
	consumeInitialInterval = 500 * time.Millisecond
	consumeMaxInterval     = 15 * time.Second
)

type Consumer struct {
	log     logger.Logger
	client  sarama.ConsumerGroup
	topics  []string
	handler sarama.ConsumerGroupHandler
	retrier *backoff_adapter.Retrier
}

func NewConsumerConfig(versionStr string, autoCommit bool, initialOffset int64) (*sarama.Config, error) {
	cfg := sarama.NewConfig()

	version, err := sarama.ParseKafkaVersion(versionStr)
	if err != nil {
		return nil, fmt.Errorf("parse kafka version %q: %w", versionStr, err)
	}
	cfg.Version = version

	cfg.Consumer.Offsets.Initial = initialOffset
	cfg.Consumer.Offsets.AutoCommit.Enable = autoCommit
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	cfg.Consumer.Return.Errors = false

	return cfg, nil
}

// NewConsumer initialOffset - sarama.OffsetOldest или sarama.OffsetNewest для новой группы.
func NewConsumer(
	ctx context.Context,
	log logger.Logger,
	cfg *config.Kafka,
	brokers []string,
	groupID string,
	topics []string,
	initialOffset int64,
	handler sarama.ConsumerGroupHandler,
) (*Consumer, error) {
	saramaConfig, err := NewConsumerConfig(cfg.Sarama.Version, cfg.Sarama.ConsumerOffsetsAutocommit, initialOffset)
	if err != nil {
		return nil, fmt.Errorf("build consumer config: %w", err)
	}

	kafkaLog := log.With(
		logger.NewField("brokers", brokers),
		logger.NewField("group", groupID),
		logger.NewField("topics", topics),
	)

	err = pingKafka(ctx, kafkaLog, brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("kafka connection: %w", err)
	}

	client, err := sarama.NewConsumerGroup(brokers, groupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	consumer := &Consumer{
		log:     kafkaLog,
		client:  client,
		topics:  topics,
		handler: handler,
	}
	consumer.retrier = backoff_adapter.New(retrierconfig.Config{
		InitialInterval: consumeInitialInterval,
		MaxInterval:     consumeMaxInterval,
		MaxElapsedTime:  0, // до остановки группы или отмены ctx
		Randomization:   randomization,
		Multiplier:      multiplier,
		ShouldRetry:     isRecoverable,
		Notify: func(err error, next time.Duration) {
			kafkaLog.Warn("consumer session failed, rejoining group",
				logger.NewField("error", err),
				logger.NewField("next", next.String()),
			)
		},
	})

	return consumer, nil
}

// Start блокируется до отмены ctx или Close. Сессия заканчивается на каждом
// ребалансе, после чего группа подключается заново; ошибки брокера ретраятся.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info("Kafka consumer starting")

	err := c.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		for {
			err := c.client.Consume(ctx, c.topics, c.handler)
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	})
	if ctx.Err() != nil {
		c.log.Info("Context cancelled, stopping consumer")
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("consumer error: %w", err)
	}
	return nil
}

func (c *Consumer) Close() error {
	return c.client.Close()
}

func isRecoverable(err error) bool {
	return !errors.Is(err, sarama.ErrClosedConsumerGroup) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
