package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("order-1").
		WithEventType("order.created").
		WithSource("booking-api").
		WithValue(map[string]string{"orderId": "order-1"}).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("expected timestamp header")
	}
	if msg.GetEventType() != "order.created" {
		t.Errorf("unexpected event type %q", msg.GetEventType())
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["orderId"] != "order-1" {
		t.Errorf("unexpected payload %v", decoded)
	}
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("expected 12 retries, got %d", got)
	}

	msg.Headers[HeaderRetryCount] = "garbage"
	if got := msg.GetRetryCount(); got != 0 {
		t.Errorf("expected malformed count to read as 0, got %d", got)
	}
}

func TestDecodeValue_Permanent(t *testing.T) {
	msg := Message{Value: []byte("{not json")}
	var v map[string]any
	err := msg.DecodeValue(&v)
	if ClassifyError(err) != ErrorTypePermanent {
		t.Errorf("expected permanent error, got %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"tagged transient", NewTransientError("x", nil), ErrorTypeTransient},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("bad payload"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
