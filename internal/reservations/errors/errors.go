package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrInvalidScheduleWindow = errors.New("invalid schedule window")

	ErrInvalidReservationType = errors.New("invalid reservation type")

	ErrSlotUnavailable = errors.New("requested slot is unavailable")

	ErrLockBusy = errors.New("equipment unit is being reserved by another request")

	ErrLedgerWriteFailed = errors.New("ledger write failed")

	ErrLedgerReadFailed = errors.New("ledger read failed")

	ErrCalendarWriteFailed = errors.New("calendar write failed")

	ErrCalendarReadFailed = errors.New("calendar read failed")

	ErrAvailabilityTimeout = errors.New("availability check timed out")
)
