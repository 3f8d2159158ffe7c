package service

import (
	"errors"
	"fmt"

	"equiprent/internal/reservations/availability"
	reservationserrors "equiprent/internal/reservations/errors"
	apperrors "equiprent/pkg/errors"
)

// toAppError maps reservation sentinels to HTTP-facing errors. AppErrors pass through.
func toAppError(err error, action string) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, reservationserrors.ErrInvalidScheduleWindow):
		return apperrors.InvalidScheduleWindow(err.Error(), err)
	case errors.Is(err, reservationserrors.ErrInvalidReservationType):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, reservationserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid reservation ID format")
	case errors.Is(err, reservationserrors.ErrSlotUnavailable):
		return apperrors.SlotUnavailable("The requested slot is no longer available", nil)
	case errors.Is(err, reservationserrors.ErrCalendarReadFailed):
		return apperrors.Unavailable("External calendar")
	case errors.Is(err, reservationserrors.ErrAvailabilityTimeout):
		return apperrors.Timeout("Availability check timed out")
	case errors.Is(err, reservationserrors.ErrLedgerWriteFailed):
		return apperrors.Internal("Failed to write reservation", err)
	}
	return apperrors.Internal(fmt.Sprintf("Failed to %s", action), err)
}

// slotUnavailable reports the blocks that caused a conflict so operators can see why.
func slotUnavailable(conflicts []availability.BusyBlock) error {
	blocking := make([]map[string]any, 0, len(conflicts))
	for _, c := range conflicts {
		blocking = append(blocking, map[string]any{
			"source": string(c.Source),
			"ref":    c.Ref,
			"start":  c.Start,
			"end":    c.End,
		})
	}
	return apperrors.SlotUnavailable("The requested slot is no longer available", map[string]any{
		"conflicts": blocking,
	})
}
