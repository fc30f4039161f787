package kafka_middleware

import (
	"context"
	"time"

	"stablebook/pkg/kafka"
	"stablebook/pkg/metrics"
)

const (
	directionPublish = "publish"
	directionConsume = "consume"
)

func MetricsProducerMiddleware(m *metrics.KafkaMetrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.Observe(directionPublish, msg.Topic, err, time.Since(start))
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.KafkaMetrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.Observe(directionConsume, msg.Topic, err, time.Since(start))
		return err
	}
}
