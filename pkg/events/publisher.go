package events

import (
	"context"
	"fmt"

	"equiprent/pkg/config"
	"equiprent/pkg/kafka"
	kafka_config "equiprent/pkg/kafka/config"
	kafka_middleware "equiprent/pkg/kafka/middleware"
	"equiprent/pkg/logger"
	"equiprent/pkg/metrics"
	"equiprent/pkg/model"
)

type Publisher interface {
	ReservationChanged(ctx context.Context, eventType string, r *model.Reservation) error
	OrderChanged(ctx context.Context, eventType string, o *model.Order, previousStatus string) error
	RequestCalendarMirror(ctx context.Context, req CalendarMirrorRequest) error
	Close() error
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	reservations producer
	mirror       producer
	source       string
}

// NewKafkaPublisher opens one producer per topic, each with logging and metrics middleware.
func NewKafkaPublisher(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics, source string) (Publisher, error) {
	log := cfg.Log.Component("events")

	reservations, err := kafka.NewProducer(kafkaCfg, log, cfg.ReservationsTopic, cfg.ReservationsDLQTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservations producer: %w", err)
	}
	mirror, err := kafka.NewProducer(kafkaCfg, log, cfg.CalendarMirrorTopic, cfg.CalendarMirrorDLQTopic)
	if err != nil {
		_ = reservations.Close()
		return nil, fmt.Errorf("failed to create calendar mirror producer: %w", err)
	}

	for _, p := range []*kafka.Producer{reservations, mirror} {
		p.Use(kafka_middleware.LoggingProducerMiddleware(log))
		p.Use(kafka_middleware.MetricsProducerMiddleware(m))
	}

	return newPublisher(reservations, mirror, source), nil
}

func newPublisher(reservations, mirror producer, source string) *kafkaPublisher {
	return &kafkaPublisher{reservations: reservations, mirror: mirror, source: source}
}

func (p *kafkaPublisher) ReservationChanged(ctx context.Context, eventType string, r *model.Reservation) error {
	return p.publish(ctx, p.reservations, r.EquipmentType+":"+r.EquipmentID, eventType, NewReservationEvent(r))
}

func (p *kafkaPublisher) OrderChanged(ctx context.Context, eventType string, o *model.Order, previousStatus string) error {
	return p.publish(ctx, p.reservations, o.ID, eventType, NewOrderEvent(o, previousStatus))
}

func (p *kafkaPublisher) RequestCalendarMirror(ctx context.Context, req CalendarMirrorRequest) error {
	return p.publish(ctx, p.mirror, req.ReservationID, CalendarMirror, req)
}

func (p *kafkaPublisher) publish(ctx context.Context, to producer, key, eventType string, payload any) error {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		WithValue(payload).
		Build()
	if err != nil {
		return err
	}
	return to.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	err := p.reservations.Close()
	if mirrorErr := p.mirror.Close(); err == nil {
		err = mirrorErr
	}
	return err
}

type nopPublisher struct{}

// NewNopPublisher is used when events are disabled.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) ReservationChanged(context.Context, string, *model.Reservation) error {
	return nil
}

func (nopPublisher) OrderChanged(context.Context, string, *model.Order, string) error {
	return nil
}

func (nopPublisher) RequestCalendarMirror(context.Context, CalendarMirrorRequest) error {
	return nil
}

func (nopPublisher) Close() error {
	return nil
}
