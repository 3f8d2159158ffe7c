package kafka_middleware

import (
	"context"
	"time"

	"equiprent/pkg/kafka"
	"equiprent/pkg/metrics"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveKafka("produce", msg.Topic, err, time.Since(start))
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveKafka("consume", msg.Topic, err, time.Since(start))
		return err
	}
}
