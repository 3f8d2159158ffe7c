package service

import (
	"context"
	"errors"
	"strings"

	orderserrors "equiprent/internal/orders/errors"
	"equiprent/internal/orders/repository"
	"equiprent/internal/orders/validator"
	"equiprent/internal/reservations/availability"
	reservationsservice "equiprent/internal/reservations/service"
	"equiprent/pkg/config"
	apperrors "equiprent/pkg/errors"
	"equiprent/pkg/events"
	"equiprent/pkg/logger"
	"equiprent/pkg/model"
	"equiprent/pkg/sanitizer"
)

const releaseWarning = "Order cancelled but its reservation could not be released; the unit may still show as busy"

type OrderResult struct {
	Order       *model.Order       `json:"order"`
	Reservation *model.Reservation `json:"reservation,omitempty"`
	Warnings    []string           `json:"-"`
}

type OrderService interface {
	// Create stores a pending order. Equipment orders also get a one-hour reservation at the order time.
	Create(ctx context.Context, order *model.Order) (*OrderResult, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id string, update *model.OrderStatusUpdate) (*OrderResult, error)
}

type orderService struct {
	repo      repository.OrderRepository
	writer    reservationsservice.BookingWriter
	checker   *availability.Checker
	validator *validator.OrderValidator
	publisher events.Publisher
	log       *logger.Logger
}

func NewOrderService(
	cfg *config.Config,
	repo repository.OrderRepository,
	writer reservationsservice.BookingWriter,
	checker *availability.Checker,
	publisher events.Publisher,
) OrderService {
	log := cfg.Log
	if log == nil {
		log = logger.New(logger.Config{Level: logger.ERROR})
	}
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &orderService{
		repo:      repo,
		writer:    writer,
		checker:   checker,
		validator: validator.NewOrderValidator(log),
		publisher: publisher,
		log:       log.Component("orders"),
	}
}

func (s *orderService) Create(ctx context.Context, order *model.Order) (*OrderResult, error) {
	s.sanitize(order)
	order.ID = ""
	order.Status = model.OrderPending
	order.ReservationID = ""
	order.ReservationType = ""
	order.EndTime = ""
	order.EndDate = ""
	order.Quantity = 0

	if err := s.validate(order); err != nil {
		return nil, err
	}

	if !order.IsEquipmentBound() {
		if err := s.repo.Create(ctx, order); err != nil {
			s.log.Error("Failed to create order", "service_type", order.ServiceType, "error", err)
			return nil, apperrors.Internal("Failed to create order", err)
		}
		s.publish(ctx, events.OrderCreated, order, "")
		s.log.Info("Order created successfully", "order_id", order.ID, "service_type", order.ServiceType)
		return &OrderResult{Order: order}, nil
	}

	if err := s.checkWalkUp(order); err != nil {
		return nil, err
	}

	order.ID = s.repo.NewID()
	reserved, err := s.writer.Reserve(ctx, &reservationsservice.ReserveRequest{
		EquipmentType:   order.ServiceType,
		EquipmentID:     order.EquipmentID,
		OrderID:         order.ID,
		CustomerName:    order.CustomerName,
		Date:            order.OrderDate,
		StartTime:       order.Time,
		ReservationType: model.ReservationTypeTime,
	})
	if err != nil {
		return nil, err
	}

	order.ReservationID = reserved.Reservation.ID
	if err := s.repo.Create(ctx, order); err != nil {
		s.log.Error("Failed to create order, releasing its reservation",
			"order_id", order.ID,
			"reservation_id", order.ReservationID,
			"error", err,
		)
		if _, releaseErr := s.writer.Release(context.WithoutCancel(ctx), order.ID); releaseErr != nil {
			s.log.Error("Failed to release reservation of unsaved order",
				"order_id", order.ID,
				"reservation_id", order.ReservationID,
				"error", releaseErr,
			)
		}
		return nil, apperrors.Internal("Failed to create order", err)
	}

	s.publish(ctx, events.OrderCreated, order, "")
	s.log.Info("Order created successfully",
		"order_id", order.ID,
		"service_type", order.ServiceType,
		"equipment_id", order.EquipmentID,
		"reservation_id", order.ReservationID,
	)

	return &OrderResult{Order: order, Reservation: reserved.Reservation, Warnings: reserved.Warnings}, nil
}

// checkWalkUp rejects orders starting sooner than the service line's notice period.
func (s *orderService) checkWalkUp(order *model.Order) error {
	interval, _, err := s.checker.Candidate(availability.IntervalQuery{
		EquipmentType:   order.ServiceType,
		EquipmentID:     order.EquipmentID,
		Date:            order.OrderDate,
		StartTime:       order.Time,
		ReservationType: model.ReservationTypeTime,
	})
	if err != nil {
		return toAppError(err, "", "resolve order time")
	}
	if s.checker.IsWalkUp(order.ServiceType, interval.Start) {
		return apperrors.SlotUnavailable("The requested slot starts too soon to be booked", map[string]any{
			"start":        interval.Start,
			"walkUpNotice": s.checker.Policy(order.ServiceType).WalkUpNotice.String(),
		})
	}
	return nil
}

func (s *orderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, toAppError(err, id, "get order")
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, update *model.OrderStatusUpdate) (*OrderResult, error) {
	update.Status = sanitizer.NormalizeEnum(update.Status)
	update.ReservationType = sanitizer.NormalizeEnum(update.ReservationType)
	update.EndTime = strings.TrimSpace(update.EndTime)

	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.log.Warn("Order status update validation failed", "order_id", id, "error", err)
		return nil, apperrors.Validation("Order status update validation failed", map[string]any{"error": err.Error()})
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, toAppError(err, id, "get order")
	}

	if err := checkTransition(current.Status, update.Status); err != nil {
		if errors.Is(err, orderserrors.ErrInvalidTransition) {
			return nil, apperrors.InvalidTransition(current.Status, update.Status)
		}
		return nil, err
	}

	var result *OrderResult
	switch update.Status {
	case model.OrderInProgress:
		result, err = s.start(ctx, current, update)
	case model.OrderCancelled:
		result, err = s.cancel(ctx, current)
	default:
		result, err = s.finish(ctx, current, update.Status)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderStatusChanged, result.Order, current.Status)
	s.log.Info("Order status updated successfully",
		"order_id", id,
		"from", current.Status,
		"to", result.Order.Status,
	)
	return result, nil
}

// start confirms the rental period. For equipment the placeholder reservation is
// superseded in place, so the order keeps exactly one reservation.
func (s *orderService) start(ctx context.Context, current *model.Order, update *model.OrderStatusUpdate) (*OrderResult, error) {
	change := repository.StatusChange{
		Status:          model.OrderInProgress,
		ReservationType: update.ReservationType,
		EndTime:         update.EndTime,
		Quantity:        update.Quantity,
	}

	var reserved *reservationsservice.ReserveResult
	if current.IsEquipmentBound() {
		if update.ReservationType == "" {
			return nil, apperrors.InvalidInput("reservationType is required to start an equipment order")
		}
		if update.ReservationType == model.ReservationTypeTime && update.EndTime == "" {
			return nil, apperrors.InvalidInput("endTime is required for time reservations")
		}
		if model.IsDayScale(update.ReservationType) && change.Quantity <= 0 {
			change.Quantity = 1
		}

		var err error
		reserved, err = s.writer.Reserve(ctx, &reservationsservice.ReserveRequest{
			EquipmentType:   current.ServiceType,
			EquipmentID:     current.EquipmentID,
			OrderID:         current.ID,
			CustomerName:    current.CustomerName,
			Date:            current.OrderDate,
			StartTime:       current.Time,
			EndTime:         update.EndTime,
			ReservationType: update.ReservationType,
			Quantity:        change.Quantity,
		})
		if err != nil {
			return nil, err
		}
		change.EndTime = reserved.Reservation.EndTime
		change.EndDate = reserved.Reservation.EndDate
		change.ReservationID = reserved.Reservation.ID
	}

	updated, err := s.repo.UpdateStatus(ctx, current.ID, current.Status, change)
	if err != nil {
		if reserved != nil && errors.Is(err, orderserrors.ErrStatusChanged) {
			s.reconcile(ctx, current.ID)
		}
		return nil, toAppError(err, current.ID, "update order status")
	}

	result := &OrderResult{Order: updated}
	if reserved != nil {
		result.Reservation = reserved.Reservation
		result.Warnings = reserved.Warnings
	}
	return result, nil
}

// reconcile brings the ledger back in line with an order whose status changed under a
// concurrent start. A cancelled order loses its reservation; an order another request
// started gets its reservation rewritten to the bounds that request stored.
func (s *orderService) reconcile(ctx context.Context, orderID string) {
	ctx = context.WithoutCancel(ctx)
	latest, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		s.log.Error("Failed to load order for reconciliation", "order_id", orderID, "error", err)
		return
	}

	switch latest.Status {
	case model.OrderCancelled:
		if _, err := s.writer.Release(ctx, orderID); err != nil {
			s.log.Error("Failed to release reservation of cancelled order", "order_id", orderID, "error", err)
		}
	case model.OrderInProgress, model.OrderCompleted:
		if !latest.IsEquipmentBound() || latest.ReservationType == "" {
			return
		}
		_, err := s.writer.Reserve(ctx, &reservationsservice.ReserveRequest{
			EquipmentType:   latest.ServiceType,
			EquipmentID:     latest.EquipmentID,
			OrderID:         latest.ID,
			CustomerName:    latest.CustomerName,
			Date:            latest.OrderDate,
			StartTime:       latest.Time,
			EndTime:         latest.EndTime,
			ReservationType: latest.ReservationType,
			Quantity:        latest.Quantity,
		})
		if err != nil {
			s.log.Error("Failed to restore reservation of started order",
				"order_id", orderID,
				"reservation_type", latest.ReservationType,
				"error", err,
			)
		}
	}
}

func (s *orderService) cancel(ctx context.Context, current *model.Order) (*OrderResult, error) {
	updated, err := s.repo.UpdateStatus(ctx, current.ID, current.Status, repository.StatusChange{Status: model.OrderCancelled})
	if err != nil {
		return nil, toAppError(err, current.ID, "cancel order")
	}

	result := &OrderResult{Order: updated}
	if !updated.IsEquipmentBound() {
		return result, nil
	}

	released, err := s.writer.Release(ctx, updated.ID)
	if err != nil {
		s.log.Error("Failed to release reservation", "order_id", updated.ID, "error", err)
		result.Warnings = append(result.Warnings, releaseWarning)
		return result, nil
	}
	result.Reservation = released
	return result, nil
}

// finish completes an order. The reservation stays active as the rental record.
func (s *orderService) finish(ctx context.Context, current *model.Order, status string) (*OrderResult, error) {
	updated, err := s.repo.UpdateStatus(ctx, current.ID, current.Status, repository.StatusChange{Status: status})
	if err != nil {
		return nil, toAppError(err, current.ID, "update order status")
	}
	return &OrderResult{Order: updated}, nil
}

func (s *orderService) publish(ctx context.Context, eventType string, order *model.Order, previousStatus string) {
	if err := s.publisher.OrderChanged(ctx, eventType, order, previousStatus); err != nil {
		s.log.Warn("Failed to publish order event",
			"event_type", eventType,
			"order_id", order.ID,
			"error", err,
		)
	}
}

func (s *orderService) sanitize(order *model.Order) {
	order.CustomerName = sanitizer.NormalizeName(order.CustomerName)
	order.CustomerPhone = sanitizer.NormalizePhone(order.CustomerPhone)
	order.CustomerEmail = sanitizer.NormalizeEmail(order.CustomerEmail)
	order.Address = sanitizer.NormalizeAddress(order.Address)
	order.Notes = sanitizer.NormalizeNotes(order.Notes)
	order.ServiceType = sanitizer.NormalizeEnum(order.ServiceType)
	order.EquipmentID = sanitizer.NormalizeEquipmentID(order.EquipmentID)
	order.OrderDate = strings.TrimSpace(order.OrderDate)
	order.Time = strings.TrimSpace(order.Time)
}

func (s *orderService) validate(order *model.Order) error {
	if err := s.validator.Validate(order); err != nil {
		s.log.Warn("Order validation failed",
			"customer_name", order.CustomerName,
			"service_type", order.ServiceType,
			"error", err,
		)
		return apperrors.Validation("Order validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
