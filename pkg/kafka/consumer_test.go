package kafka

import (
	"context"
	"errors"
	"testing"

	"equiprent/pkg/logger"
)

func newTestConsumer(handler MessageHandler, maxRetries int) *Consumer {
	return &Consumer{
		topic:      "equiprent.calendar-mirror",
		groupID:    "test",
		maxRetries: maxRetries,
		handler:    handler,
		log:        logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}),
	}
}

func testMessage() Message {
	msg, _ := NewMessage().WithKey("r1").WithValue(map[string]string{"id": "r1"}).Build()
	return msg
}

func TestConsumerProcess_RetriesTransientErrors(t *testing.T) {
	calls := 0
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("calendar unavailable", errors.New("503"))
		}
		return nil
	}, 3)

	if err := c.process(context.Background(), testMessage()); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestConsumerProcess_StopsAtMaxRetries(t *testing.T) {
	calls := 0
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		calls++
		return NewTransientError("still down", nil)
	}, 2)

	if err := c.process(context.Background(), testMessage()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected 1 attempt plus 2 retries, got %d", calls)
	}
}

func TestConsumerProcess_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		calls++
		return NewPermanentError("deserialization failed", nil)
	}, 5)

	if err := c.process(context.Background(), testMessage()); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestConsumerProcess_MiddlewareOrder(t *testing.T) {
	var order []string
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		order = append(order, "handler")
		return nil
	}, 0)
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "first")
		return next(ctx, msg)
	})
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "second")
		return next(ctx, msg)
	})

	if err := c.process(context.Background(), testMessage()); err != nil {
		t.Fatal(err)
	}
	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "handler" {
		t.Errorf("unexpected middleware order %v", order)
	}
}
