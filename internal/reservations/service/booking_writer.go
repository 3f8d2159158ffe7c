package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"equiprent/internal/reservations/availability"
	reservationserrors "equiprent/internal/reservations/errors"
	"equiprent/internal/reservations/repository"
	"equiprent/internal/reservations/schedule"
	"equiprent/pkg/calendar"
	"equiprent/pkg/config"
	apperrors "equiprent/pkg/errors"
	"equiprent/pkg/events"
	"equiprent/pkg/logger"
	"equiprent/pkg/metrics"
	"equiprent/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const calendarWarning = "Reservation saved but the external calendar could not be updated; it will be retried"

type ReserveRequest struct {
	EquipmentType   string
	EquipmentID     string
	OrderID         string
	CustomerName    string
	Date            string
	StartTime       string
	EndTime         string
	ReservationType string
	Quantity        int
}

type ReserveResult struct {
	Reservation      *model.Reservation
	Superseded       bool
	CalendarMirrored bool
	Warnings         []string
}

// BookingWriter keeps the ledger and the external calendar in step.
type BookingWriter interface {
	// Reserve writes the order's reservation, superseding its active one in place.
	Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResult, error)
	// Release cancels the order's active reservation. A missing reservation is not an error.
	Release(ctx context.Context, orderID string) (*model.Reservation, error)
}

type bookingWriter struct {
	repo      repository.ReservationRepository
	locks     repository.ReservationLockRepository
	checker   *availability.Checker
	mirror    *CalendarMirror
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *logger.Logger
	lockTTL   time.Duration
	backoff   time.Duration
}

func NewBookingWriter(
	cfg *config.Config,
	repo repository.ReservationRepository,
	locks repository.ReservationLockRepository,
	checker *availability.Checker,
	mirror *CalendarMirror,
	publisher events.Publisher,
	m *metrics.Metrics,
) BookingWriter {
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = config.DefaultLockTTL
	}
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &bookingWriter{
		repo:      repo,
		locks:     locks,
		checker:   checker,
		mirror:    mirror,
		publisher: publisher,
		metrics:   m,
		log:       componentLogger(cfg, "booking-writer"),
		lockTTL:   lockTTL,
		backoff:   cfg.LockRetryBackoff,
	}
}

// ledgerWrite is the outcome of the locked part of Reserve.
type ledgerWrite struct {
	reservation     *model.Reservation
	superseded      bool
	previousEventID string
}

func (w *bookingWriter) Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResult, error) {
	if req.EquipmentType != model.EquipmentContainers && req.EquipmentType != model.EquipmentExcavators {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Equipment type %q cannot be reserved", req.EquipmentType))
	}
	if req.EquipmentID == "" || req.OrderID == "" {
		return nil, apperrors.InvalidInput("Equipment ID and order ID are required")
	}

	bounds, err := schedule.DeriveBounds(req.ReservationType, req.Date, req.StartTime, req.EndTime, req.Quantity)
	if err != nil {
		return nil, toAppError(err, "derive reservation bounds")
	}

	written, err := w.writeLedger(ctx, req, bounds)
	if err != nil {
		w.log.Warn("Reservation rejected",
			"order_id", req.OrderID,
			"equipment_type", req.EquipmentType,
			"equipment_id", req.EquipmentID,
			"date", bounds.Date,
			"start_time", bounds.StartTime,
			"error", err,
		)
		return nil, err
	}

	reservation := written.reservation
	result := &ReserveResult{Reservation: reservation, Superseded: written.superseded}

	action := "created"
	eventType := events.ReservationCreated
	if written.superseded {
		action = "superseded"
		eventType = events.ReservationSuperseded
	}
	w.metrics.ReservationWritten(reservation.EquipmentType, action)

	if written.previousEventID != "" {
		if err := w.mirror.Remove(ctx, reservation.EquipmentType, written.previousEventID); err != nil {
			w.log.Warn("Failed to delete superseded calendar event",
				"reservation_id", reservation.ID,
				"event_id", written.previousEventID,
				"error", err,
			)
			w.requestMirror(ctx, events.MirrorDelete, reservation, written.previousEventID, err)
		}
	}

	switch err := w.mirror.Mirror(ctx, reservation); {
	case err == nil:
		result.CalendarMirrored = true
	case errors.Is(err, calendar.ErrDisabled):
	default:
		w.log.Warn("Calendar mirror failed, ledger entry kept",
			"reservation_id", reservation.ID,
			"order_id", reservation.OrderID,
			"error", err,
		)
		result.Warnings = append(result.Warnings, calendarWarning)
		w.requestMirror(ctx, events.MirrorCreate, reservation, "", err)
	}

	if err := w.publisher.ReservationChanged(ctx, eventType, reservation); err != nil {
		w.log.Warn("Failed to publish reservation event", "reservation_id", reservation.ID, "error", err)
	}

	w.log.Info("Reservation "+action+" successfully",
		"id", reservation.ID,
		"order_id", reservation.OrderID,
		"equipment_type", reservation.EquipmentType,
		"equipment_id", reservation.EquipmentID,
		"date", reservation.Date,
		"start_time", reservation.StartTime,
		"end_time", reservation.EndTime,
		"end_date", reservation.EndDate,
		"calendar_mirrored", result.CalendarMirrored,
	)
	return result, nil
}

// writeLedger holds the per-unit lock across the availability check and the ledger write.
// The locked section must finish before the lock expires, so it runs under a deadline at
// the lock's expiry.
func (w *bookingWriter) writeLedger(ctx context.Context, req *ReserveRequest, bounds schedule.Bounds) (*ledgerWrite, error) {
	lockID := repository.LockID(req.EquipmentType, req.EquipmentID)
	owner := uuid.NewString()
	acquiredAt, err := w.acquireLock(ctx, lockID, owner, req.EquipmentType)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := w.locks.Release(context.WithoutCancel(ctx), lockID, owner); err != nil {
			w.log.Warn("Failed to release reservation lock", "lock_id", lockID, "error", err)
		}
	}()

	parent := ctx
	ctx, cancel := context.WithDeadline(ctx, acquiredAt.Add(w.lockTTL))
	defer cancel()
	lockExpired := func() bool {
		return errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil
	}

	query := availability.IntervalQuery{
		EquipmentType:   req.EquipmentType,
		EquipmentID:     req.EquipmentID,
		Date:            bounds.Date,
		StartTime:       bounds.StartTime,
		EndTime:         bounds.EndTime,
		EndDate:         bounds.EndDate,
		ReservationType: bounds.ReservationType,
		ExcludeOrderID:  req.OrderID,
	}

	conflicts, err := w.checker.Conflicts(ctx, query)
	if err != nil {
		if lockExpired() {
			return nil, w.lockExpiredError(lockID)
		}
		return nil, toAppError(err, "check availability")
	}
	if len(conflicts) > 0 {
		w.metrics.ReservationConflict(req.EquipmentType)
		return nil, slotUnavailable(conflicts)
	}

	var written *ledgerWrite
	err = w.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		written = &ledgerWrite{reservation: &model.Reservation{
			EquipmentType:   req.EquipmentType,
			EquipmentID:     req.EquipmentID,
			OrderID:         req.OrderID,
			Date:            bounds.Date,
			StartTime:       bounds.StartTime,
			EndTime:         bounds.EndTime,
			EndDate:         bounds.EndDate,
			ReservationType: bounds.ReservationType,
			Status:          model.ReservationActive,
			Summary:         Summary(req.EquipmentType, req.EquipmentID, req.CustomerName),
		}}

		conflicts, err := w.checker.LedgerConflicts(sessCtx, query)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			w.metrics.ReservationConflict(req.EquipmentType)
			return slotUnavailable(conflicts)
		}

		existing, err := w.repo.FindActiveByOrder(sessCtx, req.OrderID)
		switch {
		case err == nil:
			written.superseded = true
			written.previousEventID = existing.CalendarEventID
			written.reservation.CreatedAt = existing.CreatedAt
			written.reservation.UpdatedAt = time.Now().UTC()
			return w.repo.Supersede(sessCtx, existing.ID, written.reservation)
		case errors.Is(err, reservationserrors.ErrNotFound):
			return w.repo.Create(sessCtx, written.reservation)
		default:
			return err
		}
	})
	if err != nil {
		if lockExpired() {
			return nil, w.lockExpiredError(lockID)
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, toAppError(fmt.Errorf("%w: %v", reservationserrors.ErrLedgerWriteFailed, err), "write reservation")
	}
	return written, nil
}

func (w *bookingWriter) lockExpiredError(lockID string) error {
	w.log.Error("Reservation lock expired before the ledger write finished",
		"lock_id", lockID,
		"lock_ttl", w.lockTTL,
	)
	return apperrors.Timeout("Reservation could not be written before the equipment lock expired")
}

// acquireLock retries once after the configured backoff before giving up. It returns the
// time the successful attempt started, which the lock's expiry is counted from.
func (w *bookingWriter) acquireLock(ctx context.Context, lockID, owner, equipmentType string) (time.Time, error) {
	attempt := time.Now()
	err := w.locks.Acquire(ctx, lockID, owner, w.lockTTL)
	if errors.Is(err, reservationserrors.ErrLockBusy) {
		w.metrics.LockContended(equipmentType)
		select {
		case <-time.After(w.backoff):
		case <-ctx.Done():
			return time.Time{}, apperrors.Timeout("Request cancelled while waiting for the equipment lock")
		}
		attempt = time.Now()
		err = w.locks.Acquire(ctx, lockID, owner, w.lockTTL)
	}
	if errors.Is(err, reservationserrors.ErrLockBusy) {
		w.log.Info("Equipment unit is locked by another request", "lock_id", lockID)
		return time.Time{}, apperrors.SlotUnavailable("The equipment is being reserved by another request", map[string]any{
			"lock": lockID,
		})
	}
	if err != nil {
		return time.Time{}, apperrors.Internal("Failed to acquire reservation lock", err)
	}
	return attempt, nil
}

func (w *bookingWriter) Release(ctx context.Context, orderID string) (*model.Reservation, error) {
	reservation, err := w.repo.FindActiveByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, nil
		}
		return nil, toAppError(err, "find reservation")
	}

	if err := w.repo.Cancel(ctx, reservation.ID); err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, nil
		}
		return nil, toAppError(err, "cancel reservation")
	}
	reservation.Status = model.ReservationCancelled
	w.metrics.ReservationWritten(reservation.EquipmentType, "released")

	if err := w.mirror.Remove(ctx, reservation.EquipmentType, reservation.CalendarEventID); err != nil {
		w.log.Warn("Failed to delete calendar event of released reservation",
			"reservation_id", reservation.ID,
			"event_id", reservation.CalendarEventID,
			"error", err,
		)
		w.requestMirror(ctx, events.MirrorDelete, reservation, reservation.CalendarEventID, err)
	}

	if err := w.publisher.ReservationChanged(ctx, events.ReservationReleased, reservation); err != nil {
		w.log.Warn("Failed to publish reservation event", "reservation_id", reservation.ID, "error", err)
	}

	w.log.Info("Reservation released successfully", "id", reservation.ID, "order_id", orderID)
	return reservation, nil
}

func (w *bookingWriter) requestMirror(ctx context.Context, action string, r *model.Reservation, eventID string, cause error) {
	req := events.CalendarMirrorRequest{
		Action:        action,
		ReservationID: r.ID,
		EquipmentType: r.EquipmentType,
		EventID:       eventID,
		Reason:        cause.Error(),
		RequestedAt:   time.Now().UTC(),
	}
	if err := w.publisher.RequestCalendarMirror(ctx, req); err != nil {
		w.log.Error("Failed to request calendar mirror retry",
			"reservation_id", r.ID,
			"action", action,
			"error", err,
		)
	}
}
