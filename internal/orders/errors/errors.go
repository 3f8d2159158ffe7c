package errors

import "errors"

var (
	ErrNotFound = errors.New("order not found")

	ErrInvalidID = errors.New("invalid order ID format")

	ErrInvalidTransition = errors.New("invalid order status transition")

	ErrStatusChanged = errors.New("order status changed concurrently")
)
