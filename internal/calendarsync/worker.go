// Package calendarsync consumes calendar mirror requests and repairs the
// calendar copy of ledger reservations that could not be written inline.
package calendarsync

import (
	"context"
	"errors"
	"fmt"

	reservationserrors "equiprent/internal/reservations/errors"
	"equiprent/pkg/calendar"
	"equiprent/pkg/events"
	"equiprent/pkg/kafka"
	"equiprent/pkg/logger"
	"equiprent/pkg/model"
)

type ReservationFinder interface {
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
}

// Mirror is satisfied by the reservations calendar mirror.
type Mirror interface {
	Mirror(ctx context.Context, r *model.Reservation) error
	Remove(ctx context.Context, equipmentType, eventID string) error
}

type Worker struct {
	reservations ReservationFinder
	mirror       Mirror
	log          *logger.Logger
}

func NewWorker(reservations ReservationFinder, mirror Mirror, log *logger.Logger) *Worker {
	return &Worker{
		reservations: reservations,
		mirror:       mirror,
		log:          log.Component("calendar-sync"),
	}
}

// Handle is a kafka.MessageHandler. Calendar failures are returned as transient
// so the consumer retries them; malformed requests go straight to the DLQ.
func (w *Worker) Handle(ctx context.Context, msg kafka.Message) error {
	var req events.CalendarMirrorRequest
	if err := msg.DecodeValue(&req); err != nil {
		return err
	}

	switch req.Action {
	case events.MirrorCreate:
		return w.create(ctx, req)
	case events.MirrorDelete:
		return w.remove(ctx, req)
	default:
		return kafka.NewPermanentError(fmt.Sprintf("unknown mirror action %q", req.Action), nil)
	}
}

func (w *Worker) create(ctx context.Context, req events.CalendarMirrorRequest) error {
	if req.ReservationID == "" {
		return kafka.NewPermanentError("mirror request without reservation id", nil)
	}

	r, err := w.reservations.FindByID(ctx, req.ReservationID)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) || errors.Is(err, reservationserrors.ErrInvalidID) {
			w.log.Warn("Dropping mirror request for unknown reservation", "reservation_id", req.ReservationID)
			return nil
		}
		return kafka.NewTransientError("failed to load reservation", err)
	}

	if r.Status != model.ReservationActive || r.CalendarEventID != "" {
		w.log.Debug("Reservation needs no calendar repair",
			"reservation_id", r.ID,
			"status", r.Status,
			"event_id", r.CalendarEventID,
		)
		return nil
	}

	if err := w.mirror.Mirror(ctx, r); err != nil {
		if errors.Is(err, calendar.ErrDisabled) {
			w.log.Warn("Calendar disabled, dropping mirror request", "reservation_id", r.ID)
			return nil
		}
		return kafka.NewTransientError("failed to mirror reservation", err)
	}

	w.log.Info("Reservation mirrored to calendar",
		"reservation_id", r.ID,
		"event_id", r.CalendarEventID,
		"reason", req.Reason,
	)
	return nil
}

func (w *Worker) remove(ctx context.Context, req events.CalendarMirrorRequest) error {
	if req.EventID == "" {
		return kafka.NewPermanentError("delete request without event id", nil)
	}
	if err := w.mirror.Remove(ctx, req.EquipmentType, req.EventID); err != nil {
		return kafka.NewTransientError("failed to delete calendar event", err)
	}

	w.log.Info("Calendar event removed",
		"reservation_id", req.ReservationID,
		"event_id", req.EventID,
	)
	return nil
}
