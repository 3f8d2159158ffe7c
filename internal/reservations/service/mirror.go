package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "equiprent/internal/reservations/errors"
	"equiprent/internal/reservations/schedule"
	"equiprent/pkg/calendar"
	"equiprent/pkg/config"
	"equiprent/pkg/logger"
	"equiprent/pkg/metrics"
	"equiprent/pkg/model"
)

// EventLinker stores the calendar event ID on a ledger entry.
type EventLinker interface {
	SetCalendarEventID(ctx context.Context, id, eventID string) error
}

// CalendarMirror copies ledger reservations into the external calendar.
// The ledger is authoritative; a calendar copy that cannot be linked is deleted.
type CalendarMirror struct {
	calendar calendar.Client
	linker   EventLinker
	metrics  *metrics.Metrics
	log      *logger.Logger
	loc      *time.Location
	timeout  time.Duration
}

func NewCalendarMirror(cfg *config.Config, cal calendar.Client, linker EventLinker, m *metrics.Metrics) *CalendarMirror {
	timeout := cfg.CalendarTimeout
	if timeout <= 0 {
		timeout = config.DefaultCalendarTimeout
	}
	return &CalendarMirror{
		calendar: cal,
		linker:   linker,
		metrics:  m,
		log:      componentLogger(cfg, "calendar-mirror"),
		loc:      cfg.LocationOrUTC(),
		timeout:  timeout,
	}
}

// Mirror creates the calendar event for r and links it. On success r.CalendarEventID is set.
// calendar.ErrDisabled is returned untouched so callers can tell "off" from "failed".
func (m *CalendarMirror) Mirror(ctx context.Context, r *model.Reservation) error {
	interval, err := schedule.ReservationInterval(r, m.loc)
	if err != nil {
		return err
	}

	event := &calendar.Event{
		Summary:       r.Summary,
		Description:   describe(r),
		Start:         interval.Start,
		End:           interval.End,
		EquipmentID:   r.EquipmentID,
		OrderID:       r.OrderID,
		ReservationID: r.ID,
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	eventID, err := m.calendar.CreateEvent(callCtx, r.EquipmentType, event)
	cancel()
	if err != nil {
		if errors.Is(err, calendar.ErrDisabled) {
			return err
		}
		m.metrics.CalendarFailure("create")
		return fmt.Errorf("%w: %v", reservationserrors.ErrCalendarWriteFailed, err)
	}

	if err := m.linker.SetCalendarEventID(ctx, r.ID, eventID); err != nil {
		m.log.Error("Failed to link calendar event, deleting it",
			"reservation_id", r.ID,
			"event_id", eventID,
			"error", err,
		)
		if delErr := m.Remove(context.WithoutCancel(ctx), r.EquipmentType, eventID); delErr != nil {
			m.log.Error("Failed to delete unlinked calendar event",
				"reservation_id", r.ID,
				"event_id", eventID,
				"error", delErr,
			)
		}
		return fmt.Errorf("%w: link: %v", reservationserrors.ErrCalendarWriteFailed, err)
	}

	r.CalendarEventID = eventID
	return nil
}

// Remove deletes a calendar event. Missing events count as removed.
func (m *CalendarMirror) Remove(ctx context.Context, equipmentType, eventID string) error {
	if eventID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.calendar.DeleteEvent(ctx, equipmentType, eventID); err != nil {
		m.metrics.CalendarFailure("delete")
		return fmt.Errorf("%w: %v", reservationserrors.ErrCalendarWriteFailed, err)
	}
	return nil
}

func describe(r *model.Reservation) string {
	end := r.Date + " " + r.EndTime
	if r.EndDate != "" {
		end = r.EndDate + " " + r.EndTime
	}
	kind := r.ReservationType
	if kind == "" {
		kind = model.ReservationTypeTime
	}
	return fmt.Sprintf("Order: %s\nReservation: %s\nEquipment: %s %s\nType: %s\nFrom: %s %s\nTo: %s",
		r.OrderID, r.ID, r.EquipmentType, r.EquipmentID, kind, r.Date, r.StartTime, end)
}

// Summary is the calendar title of a reservation.
func Summary(equipmentType, equipmentID, customerName string) string {
	if customerName == "" {
		return fmt.Sprintf("%s %s", equipmentType, equipmentID)
	}
	return fmt.Sprintf("%s %s - %s", equipmentType, equipmentID, customerName)
}

func componentLogger(cfg *config.Config, name string) *logger.Logger {
	log := cfg.Log
	if log == nil {
		log = logger.New(logger.Config{Level: logger.ERROR})
	}
	return log.Component(name)
}
