package service

import (
	"context"
	"sync"
	"testing"

	"equiprent/internal/reservations/reservationstest"
	apperrors "equiprent/pkg/errors"
	"equiprent/pkg/events"
	"equiprent/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_EquipmentOrderReservesPlaceholder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	result, err := f.svc.Create(ctx, newOrder(" tb145 ", "2025-07-01", "09:00"))
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "TB145", order.EquipmentID)
	assert.Equal(t, "Ivan Petrov", order.CustomerName)
	assert.Equal(t, "+12125551234", order.CustomerPhone)
	require.NotNil(t, result.Reservation)
	assert.Equal(t, result.Reservation.ID, order.ReservationID)
	assert.Equal(t, "09:00", result.Reservation.StartTime)
	assert.Equal(t, "10:00", result.Reservation.EndTime)
	assert.Empty(t, result.Warnings)

	active := f.ledger.ActiveForOrder(order.ID)
	require.Len(t, active, 1)
	assert.Equal(t, model.ReservationTypeTime, active[0].ReservationType)

	stored, err := f.svc.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ReservationID, stored.ReservationID)
	assert.Equal(t, []string{events.OrderCreated}, f.pub.Orders)
}

func TestCreate_ConflictingOrderRejected(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "10:00"))
	assert.Equal(t, apperrors.CodeSlotUnavailable, appCode(err))
	assert.Equal(t, 1, f.orders.count())

	_, err = f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "10:30"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, newOrder("TB146", "2025-07-01", "09:00"))
	require.NoError(t, err, "other units are independent")
}

func TestCreate_WalkUpRejected(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, newOrder("TB145", "2025-06-30", "08:30"))
	assert.Equal(t, apperrors.CodeSlotUnavailable, appCode(err))
	assert.Zero(t, f.orders.count())
	assert.Empty(t, f.pub.Reservations)

	_, err = f.svc.Create(ctx, newOrder("TB145", "2025-06-30", "09:00"))
	require.NoError(t, err)
}

func TestCreate_ConstructionOrderHasNoReservation(t *testing.T) {
	f := newOrderFixture(t)

	order := newOrder("", "2025-07-01", "09:00")
	order.ServiceType = "Constructions"

	result, err := f.svc.Create(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, model.ServiceConstructions, result.Order.ServiceType)
	assert.Nil(t, result.Reservation)
	assert.Empty(t, result.Order.ReservationID)
	assert.Empty(t, f.pub.Reservations)
	assert.Equal(t, 1, f.orders.count())
}

func TestCreate_ValidationFailure(t *testing.T) {
	f := newOrderFixture(t)

	order := newOrder("TB145", "2025-07-01", "9am")
	_, err := f.svc.Create(context.Background(), order)
	assert.Equal(t, apperrors.CodeValidation, appCode(err))
	assert.Zero(t, f.orders.count())
}

func TestCreate_OrderWriteFailureReleasesReservation(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.createErr = reservationstest.ErrBoom

	_, err := f.svc.Create(context.Background(), newOrder("TB145", "2025-07-01", "09:00"))
	assert.Equal(t, apperrors.CodeInternal, appCode(err))
	assert.Zero(t, f.cal.Count())
	assert.Equal(t, []string{events.ReservationCreated, events.ReservationReleased}, f.pub.Reservations)

	f.orders.createErr = nil
	_, err = f.svc.Create(context.Background(), newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err, "released slot can be booked again")
}

func TestCreate_ConcurrentSameSlot(t *testing.T) {
	f := newOrderFixture(t)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Create(context.Background(), newOrder("TB145", "2025-07-01", "09:00")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.orders.count())
}

func TestUpdateStatus_StartWeeksSupersedesPlaceholder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err)
	orderID := created.Order.ID

	result, err := f.svc.UpdateStatus(ctx, orderID, &model.OrderStatusUpdate{
		Status:          "In_Progress",
		ReservationType: model.ReservationTypeWeeks,
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderInProgress, result.Order.Status)
	assert.Equal(t, model.ReservationTypeWeeks, result.Order.ReservationType)
	assert.Equal(t, "2025-07-08", result.Order.EndDate)
	assert.Equal(t, 1, result.Order.Quantity)

	active := f.ledger.ActiveForOrder(orderID)
	require.Len(t, active, 1, "exactly one reservation after the extension")
	assert.Equal(t, created.Reservation.ID, active[0].ID)
	assert.Equal(t, model.EndOfDay, active[0].EndTime)
	assert.Equal(t, "2025-07-08", active[0].EndDate)
	assert.Equal(t, created.Reservation.ID, result.Order.ReservationID)

	assert.Equal(t, []string{events.ReservationCreated, events.ReservationSuperseded}, f.pub.Reservations)
	assert.Equal(t, []string{events.OrderCreated, events.OrderStatusChanged}, f.pub.Orders)
	assert.Equal(t, 1, f.cal.Count(), "superseded calendar event replaced")

	_, err = f.svc.Create(ctx, newOrder("TB145", "2025-07-05", "09:00"))
	assert.Equal(t, apperrors.CodeSlotUnavailable, appCode(err))
}

func TestUpdateStatus_StartTimeExtension(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "13:30"))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, created.Order.ID, &model.OrderStatusUpdate{
		Status: model.OrderInProgress, ReservationType: model.ReservationTypeTime, EndTime: "13:00",
	})
	assert.Equal(t, apperrors.CodeSlotUnavailable, appCode(err))

	stored, err := f.svc.GetByID(ctx, created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, stored.Status, "rejected extension leaves the order pending")

	result, err := f.svc.UpdateStatus(ctx, created.Order.ID, &model.OrderStatusUpdate{
		Status: model.OrderInProgress, ReservationType: model.ReservationTypeTime, EndTime: "12:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "12:00", result.Order.EndTime)
	assert.Equal(t, "12:00", result.Reservation.EndTime)
}

func TestUpdateStatus_StartRequiresReservationDetails(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, created.Order.ID, &model.OrderStatusUpdate{Status: model.OrderInProgress})
	assert.Equal(t, apperrors.CodeInvalidInput, appCode(err))

	_, err = f.svc.UpdateStatus(ctx, created.Order.ID, &model.OrderStatusUpdate{
		Status: model.OrderInProgress, ReservationType: model.ReservationTypeTime,
	})
	assert.Equal(t, apperrors.CodeInvalidInput, appCode(err))

	_, err = f.svc.UpdateStatus(ctx, created.Order.ID, &model.OrderStatusUpdate{Status: "archived"})
	assert.Equal(t, apperrors.CodeValidation, appCode(err))
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err)
	id := created.Order.ID

	_, err = f.svc.UpdateStatus(ctx, id, &model.OrderStatusUpdate{Status: model.OrderCompleted})
	assert.Equal(t, apperrors.CodeInvalidTransition, appCode(err))

	_, err = f.svc.UpdateStatus(ctx, id, &model.OrderStatusUpdate{Status: model.OrderInProgress, ReservationType: model.ReservationTypeDays, Quantity: 2})
	require.NoError(t, err)

	result, err := f.svc.UpdateStatus(ctx, id, &model.OrderStatusUpdate{Status: model.OrderCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, result.Order.Status)
	assert.Len(t, f.ledger.ActiveForOrder(id), 1, "completion keeps the reservation")

	_, err = f.svc.UpdateStatus(ctx, id, &model.OrderStatusUpdate{Status: model.OrderCancelled})
	assert.Equal(t, apperrors.CodeInvalidTransition, appCode(err))
}

func TestUpdateStatus_CancelReleasesReservation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err)

	result, err := f.svc.UpdateStatus(ctx, created.Order.ID, &model.OrderStatusUpdate{Status: model.OrderCancelled})
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, result.Order.Status)
	require.NotNil(t, result.Reservation)
	assert.Equal(t, model.ReservationCancelled, result.Reservation.Status)
	assert.Empty(t, f.ledger.ActiveForOrder(created.Order.ID))
	assert.Zero(t, f.cal.Count())

	_, err = f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err, "cancelled slot is free again")
}

func TestUpdateStatus_CancelReleaseFailureWarns(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err)
	f.ledger.FindErr = reservationstest.ErrBoom

	result, err := f.svc.UpdateStatus(ctx, created.Order.ID, &model.OrderStatusUpdate{Status: model.OrderCancelled})
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, result.Order.Status)
	assert.Equal(t, []string{releaseWarning}, result.Warnings)
}

func TestUpdateStatus_ConcurrentCancelReleasesNewReservation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err)
	id := created.Order.ID

	f.orders.beforeUpdate = func(orderID string) {
		f.orders.setStatus(orderID, model.OrderCancelled)
	}

	_, err = f.svc.UpdateStatus(ctx, id, &model.OrderStatusUpdate{Status: model.OrderInProgress, ReservationType: model.ReservationTypeDays})
	assert.Equal(t, apperrors.CodeConflict, appCode(err))
	assert.Empty(t, f.ledger.ActiveForOrder(id))
}

func TestUpdateStatus_ConcurrentStartRestoresWinnerReservation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newOrder("TB145", "2025-07-01", "09:00"))
	require.NoError(t, err)
	id := created.Order.ID

	// Another request started the order as a one-day rental while this one was reserving.
	f.orders.beforeUpdate = func(orderID string) {
		f.orders.mu.Lock()
		defer f.orders.mu.Unlock()
		o := f.orders.items[orderID]
		o.Status = model.OrderInProgress
		o.ReservationType = model.ReservationTypeDays
		o.Quantity = 1
		o.EndTime = model.EndOfDay
		o.EndDate = "2025-07-02"
	}

	_, err = f.svc.UpdateStatus(ctx, id, &model.OrderStatusUpdate{
		Status:          model.OrderInProgress,
		ReservationType: model.ReservationTypeWeeks,
		Quantity:        2,
	})
	assert.Equal(t, apperrors.CodeConflict, appCode(err))

	active := f.ledger.ActiveForOrder(id)
	require.Len(t, active, 1)
	assert.Equal(t, created.Reservation.ID, active[0].ID)
	assert.Equal(t, model.ReservationTypeDays, active[0].ReservationType)
	assert.Equal(t, "2025-07-02", active[0].EndDate)

	_, err = f.svc.Create(ctx, newOrder("TB145", "2025-07-10", "09:00"))
	assert.NoError(t, err, "the losing request's two-week block must not survive")
}

func TestGetByID_NotFound(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.GetByID(context.Background(), "665f1c2b9d3e4a0012345678")
	assert.Equal(t, apperrors.CodeNotFound, appCode(err))

	_, err = f.svc.UpdateStatus(context.Background(), "665f1c2b9d3e4a0012345678", &model.OrderStatusUpdate{Status: model.OrderCancelled})
	assert.Equal(t, apperrors.CodeNotFound, appCode(err))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.OrderPending, model.OrderInProgress, true},
		{model.OrderPending, model.OrderCancelled, true},
		{model.OrderPending, model.OrderCompleted, false},
		{model.OrderInProgress, model.OrderCompleted, true},
		{model.OrderInProgress, model.OrderCancelled, true},
		{model.OrderInProgress, model.OrderPending, false},
		{model.OrderCompleted, model.OrderCancelled, false},
		{model.OrderCancelled, model.OrderPending, false},
		{model.OrderPending, model.OrderPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}
