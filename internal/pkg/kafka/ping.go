package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"storefront/pkg/logger"
	retrierconfig "storefront/pkg/retrier"
	"storefront/pkg/retrier/backoff_adapter"
)

const (
	initialInterval = 1 * time.Second
	maxInterval     = 30 * time.Second
	maxElapsedTime  = 2 * time.Minute
	randomization   = 0.5
	multiplier      = 2
)

// pingKafka ждет, пока брокеры отдадут метаданные топиков.
func pingKafka(ctx context.Context, log logger.Logger, brokers []string, cfg *sarama.Config) error {
	retrier := backoff_adapter.New(retrierconfig.Config{
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
		MaxElapsedTime:  maxElapsedTime,
		Randomization:   randomization,
		Multiplier:      multiplier,
		Notify: func(err error, next time.Duration) {
			log.Warn("kafka is not ready, retrying",
				logger.NewField("error", err),
				logger.NewField("next", next.String()),
			)
		},
	})

	var attempts uint64
	err := retrier.ExecuteWithContext(ctx, func(context.Context) error {
		attempts++

		client, err := sarama.NewClient(brokers, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close Kafka probe client", logger.NewField("error", err))
			}
		}()

		_, err = client.Topics()
		return err
	})
	if err != nil {
		log.Error("kafka connection failed after retries",
			logger.NewField("error", err),
			logger.NewField("attempts", attempts),
		)
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}

	log.Info("kafka connection established", logger.NewField("attempts", attempts))
	return nil
}
