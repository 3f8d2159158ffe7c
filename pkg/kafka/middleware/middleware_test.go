package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"equiprent/pkg/kafka"
	"equiprent/pkg/logger"
	"equiprent/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLoggingConsumerMiddleware_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Format: logger.JSON, Output: &buf, Service: "test"})

	mw := LoggingConsumerMiddleware(log)
	err := mw(context.Background(), kafka.Message{Topic: "t", Headers: map[string]string{}}, func(ctx context.Context, msg kafka.Message) error {
		return errors.New("calendar down")
	})

	if err == nil {
		t.Fatal("expected handler error to propagate")
	}
	if !strings.Contains(buf.String(), "Failed to process kafka message") || !strings.Contains(buf.String(), "calendar down") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestMetricsProducerMiddleware_CountsResult(t *testing.T) {
	m := metrics.New("test")
	mw := MetricsProducerMiddleware(m)

	_ = mw(context.Background(), kafka.Message{Topic: "equiprent.reservations"}, func(ctx context.Context, msg kafka.Message) error {
		return nil
	})
	_ = mw(context.Background(), kafka.Message{Topic: "equiprent.reservations"}, func(ctx context.Context, msg kafka.Message) error {
		return errors.New("broker down")
	})

	count, err := testutil.GatherAndCount(m.Registry(), "equiprent_kafka_messages_total")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected ok and error series, got %d", count)
	}
}
