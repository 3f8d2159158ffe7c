package service

import (
	"errors"
	"fmt"

	orderserrors "equiprent/internal/orders/errors"
	reservationserrors "equiprent/internal/reservations/errors"
	apperrors "equiprent/pkg/errors"
)

func toAppError(err error, id, action string) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, orderserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Order", id)
	case errors.Is(err, orderserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid order ID format")
	case errors.Is(err, orderserrors.ErrStatusChanged):
		return apperrors.Conflict("Order status was changed by another request")
	case errors.Is(err, reservationserrors.ErrInvalidScheduleWindow):
		return apperrors.InvalidScheduleWindow(err.Error(), err)
	case errors.Is(err, reservationserrors.ErrInvalidReservationType):
		return apperrors.InvalidInput(err.Error())
	}
	return apperrors.Internal(fmt.Sprintf("Failed to %s", action), err)
}
