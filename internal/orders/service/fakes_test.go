package service

import (
	"context"
	"sync"
	"testing"
	"time"

	orderserrors "equiprent/internal/orders/errors"
	"equiprent/internal/orders/repository"
	"equiprent/internal/reservations/availability"
	"equiprent/internal/reservations/reservationstest"
	"equiprent/internal/reservations/schedule"
	reservationsservice "equiprent/internal/reservations/service"
	"equiprent/pkg/config"
	apperrors "equiprent/pkg/errors"
	"equiprent/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeOrderRepo struct {
	mu           sync.Mutex
	items        map[string]*model.Order
	createErr    error
	beforeUpdate func(id string)
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{items: make(map[string]*model.Order)}
}

func (f *fakeOrderRepo) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if order.ID == "" {
		order.ID = f.NewID()
	}
	order.CreatedAt = time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC)
	order.UpdatedAt = order.CreatedAt
	copied := *order
	f.items[order.ID] = &copied
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return nil, orderserrors.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id, fromStatus string, change repository.StatusChange) (*model.Order, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return nil, orderserrors.ErrNotFound
	}
	if o.Status != fromStatus {
		return nil, orderserrors.ErrStatusChanged
	}
	o.Status = change.Status
	if change.ReservationType != "" {
		o.ReservationType = change.ReservationType
	}
	if change.EndTime != "" {
		o.EndTime = change.EndTime
	}
	if change.EndDate != "" {
		o.EndDate = change.EndDate
	}
	if change.Quantity > 0 {
		o.Quantity = change.Quantity
	}
	if change.ReservationID != "" {
		o.ReservationID = change.ReservationID
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderRepo) FindOpenByEquipment(ctx context.Context, serviceType, equipmentID, fromDate, toDate string) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []*model.Order
	for _, o := range f.items {
		if o.ServiceType == serviceType && o.EquipmentID == equipmentID && o.IsOpen() &&
			o.OrderDate >= fromDate && o.OrderDate <= toDate {
			copied := *o
			found = append(found, &copied)
		}
	}
	return found, nil
}

func (f *fakeOrderRepo) setStatus(id, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].Status = status
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type orderFixture struct {
	orders *fakeOrderRepo
	ledger *reservationstest.ReservationRepo
	cal    *reservationstest.Calendar
	pub    *reservationstest.Publisher
	svc    OrderService
}

// newOrderFixture wires the real booking writer and availability checker over
// in-memory stores. The clock is fixed at 2025-06-30 08:00 UTC.
func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	cfg := &config.Config{
		Location:            time.UTC,
		AvailabilityTimeout: time.Second,
		LockTTL:             time.Second,
		LockRetryBackoff:    time.Millisecond,
		CalendarTimeout:     time.Second,
	}
	f := &orderFixture{
		orders: newFakeOrderRepo(),
		ledger: reservationstest.NewReservationRepo(),
		cal:    reservationstest.NewCalendar(),
		pub:    &reservationstest.Publisher{},
	}

	now := time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC)
	checker := availability.NewChecker(cfg, f.ledger, f.cal, f.orders, schedule.Policies{}, nil).
		WithClock(schedule.FixedClock{At: now})
	mirror := reservationsservice.NewCalendarMirror(cfg, f.cal, f.ledger, nil)
	writer := reservationsservice.NewBookingWriter(cfg, f.ledger, &reservationstest.Locks{}, checker, mirror, f.pub, nil)
	f.svc = NewOrderService(cfg, f.orders, writer, checker, f.pub)
	return f
}

func newOrder(equipmentID, date, at string) *model.Order {
	return &model.Order{
		CustomerName:  " Ivan  Petrov ",
		CustomerPhone: "+1 (212) 555-1234",
		ServiceType:   model.EquipmentExcavators,
		EquipmentID:   equipmentID,
		OrderDate:     date,
		Time:          at,
	}
}

func appCode(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.AsAppError(err).Code
}
