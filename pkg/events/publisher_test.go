package events

import (
	"context"
	"testing"

	"equiprent/pkg/kafka"
	"equiprent/pkg/logger"
	"equiprent/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	messages []kafka.Message
	closed   bool
}

func (p *recordingProducer) Publish(ctx context.Context, msg kafka.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingProducer) Close() error {
	p.closed = true
	return nil
}

func TestReservationChanged(t *testing.T) {
	reservations, mirror := &recordingProducer{}, &recordingProducer{}
	pub := newPublisher(reservations, mirror, "booking-api")

	ctx := logger.WithRequestID(context.Background(), "req-1")
	err := pub.ReservationChanged(ctx, ReservationCreated, &model.Reservation{
		ID:            "r1",
		OrderID:       "o1",
		EquipmentType: model.EquipmentExcavators,
		EquipmentID:   "TB145",
		Date:          "2025-06-10",
		StartTime:     "09:00",
		EndTime:       "10:00",
		Status:        model.ReservationActive,
	})
	require.NoError(t, err)
	require.Len(t, reservations.messages, 1)
	assert.Empty(t, mirror.messages)

	msg := reservations.messages[0]
	assert.Equal(t, "excavators:TB145", msg.Key)
	assert.Equal(t, ReservationCreated, msg.GetEventType())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.Equal(t, "booking-api", msg.Headers[kafka.HeaderSource])

	var decoded ReservationEvent
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, "r1", decoded.ReservationID)
	assert.Equal(t, "09:00", decoded.StartTime)
}

func TestRequestCalendarMirror_UsesMirrorTopic(t *testing.T) {
	reservations, mirror := &recordingProducer{}, &recordingProducer{}
	pub := newPublisher(reservations, mirror, "booking-api")

	require.NoError(t, pub.RequestCalendarMirror(context.Background(), CalendarMirrorRequest{
		Action:        MirrorCreate,
		ReservationID: "r1",
		EquipmentType: model.EquipmentContainers,
	}))

	require.Len(t, mirror.messages, 1)
	assert.Equal(t, "r1", mirror.messages[0].Key)
	assert.Empty(t, mirror.messages[0].GetCorrelationID())

	require.NoError(t, pub.Close())
	assert.True(t, reservations.closed)
	assert.True(t, mirror.closed)
}
