package calendarsync

import (
	"context"
	"io"
	"testing"
	"time"

	"equiprent/internal/reservations/reservationstest"
	reservationsservice "equiprent/internal/reservations/service"
	"equiprent/pkg/calendar"
	"equiprent/pkg/config"
	"equiprent/pkg/events"
	"equiprent/pkg/kafka"
	"equiprent/pkg/logger"
	"equiprent/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workerFixture struct {
	ledger *reservationstest.ReservationRepo
	cal    *reservationstest.Calendar
	worker *Worker
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	cfg := &config.Config{Location: time.UTC, CalendarTimeout: time.Second, Log: log}

	f := &workerFixture{
		ledger: reservationstest.NewReservationRepo(),
		cal:    reservationstest.NewCalendar(),
	}
	mirror := reservationsservice.NewCalendarMirror(cfg, f.cal, f.ledger, nil)
	f.worker = NewWorker(f.ledger, mirror, log)
	return f
}

func (f *workerFixture) seed() *model.Reservation {
	return f.ledger.Seed(&model.Reservation{
		EquipmentType: model.EquipmentExcavators,
		EquipmentID:   "TB145",
		OrderID:       "665f1c2b9d3e4a0012345678",
		Date:          "2025-07-01",
		StartTime:     "09:00",
		EndTime:       "10:00",
	})
}

func message(t *testing.T, req events.CalendarMirrorRequest) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey(req.ReservationID).
		WithEventType(events.CalendarMirror).
		WithValue(req).
		Build()
	require.NoError(t, err)
	return msg
}

func TestHandle_CreateMirrorsAndLinks(t *testing.T) {
	f := newWorkerFixture(t)
	r := f.seed()

	err := f.worker.Handle(context.Background(), message(t, events.CalendarMirrorRequest{
		Action:        events.MirrorCreate,
		ReservationID: r.ID,
		EquipmentType: r.EquipmentType,
	}))
	require.NoError(t, err)

	stored, err := f.ledger.FindByID(context.Background(), r.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.CalendarEventID)

	event, ok := f.cal.Event(stored.CalendarEventID)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), event.Start)
	assert.Equal(t, r.ID, event.ReservationID)
}

func TestHandle_CreateSkipsLinkedOrCancelled(t *testing.T) {
	f := newWorkerFixture(t)
	linked := f.seed()
	require.NoError(t, f.ledger.SetCalendarEventID(context.Background(), linked.ID, "evt-existing"))
	cancelled := f.seed()
	require.NoError(t, f.ledger.Cancel(context.Background(), cancelled.ID))

	for _, id := range []string{linked.ID, cancelled.ID, "missing"} {
		err := f.worker.Handle(context.Background(), message(t, events.CalendarMirrorRequest{
			Action:        events.MirrorCreate,
			ReservationID: id,
		}))
		assert.NoError(t, err, id)
	}
	assert.Equal(t, 0, f.cal.Count())
}

func TestHandle_CalendarFailureIsRetried(t *testing.T) {
	f := newWorkerFixture(t)
	r := f.seed()
	f.cal.CreateErr = reservationstest.ErrBoom

	err := f.worker.Handle(context.Background(), message(t, events.CalendarMirrorRequest{
		Action:        events.MirrorCreate,
		ReservationID: r.ID,
	}))
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
}

func TestHandle_CalendarDisabledIsDropped(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	cfg := &config.Config{Location: time.UTC, CalendarTimeout: time.Second, Log: log}
	ledger := reservationstest.NewReservationRepo()
	mirror := reservationsservice.NewCalendarMirror(cfg, calendar.NewDisabledClient(), ledger, nil)
	worker := NewWorker(ledger, mirror, log)

	r := ledger.Seed(&model.Reservation{
		EquipmentType: model.EquipmentContainers,
		EquipmentID:   "C-7",
		OrderID:       "665f1c2b9d3e4a0012345679",
		Date:          "2025-07-01",
		StartTime:     "09:00",
		EndTime:       "10:00",
	})

	err := worker.Handle(context.Background(), message(t, events.CalendarMirrorRequest{
		Action:        events.MirrorCreate,
		ReservationID: r.ID,
	}))
	assert.NoError(t, err)
}

func TestHandle_Delete(t *testing.T) {
	f := newWorkerFixture(t)

	err := f.worker.Handle(context.Background(), message(t, events.CalendarMirrorRequest{
		Action:        events.MirrorDelete,
		ReservationID: "r1",
		EquipmentType: model.EquipmentExcavators,
		EventID:       "evt9",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"evt9"}, f.cal.Deleted)

	f.cal.DeleteErr = reservationstest.ErrBoom
	err = f.worker.Handle(context.Background(), message(t, events.CalendarMirrorRequest{
		Action:  events.MirrorDelete,
		EventID: "evt10",
	}))
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
}

func TestHandle_MalformedRequestsArePermanent(t *testing.T) {
	f := newWorkerFixture(t)

	tests := []struct {
		name string
		msg  kafka.Message
	}{
		{"not json", kafka.Message{Value: []byte("{")}},
		{"unknown action", message(t, events.CalendarMirrorRequest{Action: "update", ReservationID: "r1"})},
		{"create without id", message(t, events.CalendarMirrorRequest{Action: events.MirrorCreate})},
		{"delete without event", message(t, events.CalendarMirrorRequest{Action: events.MirrorDelete})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.worker.Handle(context.Background(), tt.msg)
			require.Error(t, err)
			assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
		})
	}
}
