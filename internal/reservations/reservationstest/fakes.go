// Package reservationstest provides in-memory stand-ins for the reservation stores,
// the external calendar and the event publisher.
package reservationstest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	reservationserrors "equiprent/internal/reservations/errors"
	"equiprent/internal/reservations/repository"
	"equiprent/pkg/calendar"
	mongotx "equiprent/pkg/db/mongo"
	"equiprent/pkg/events"
	"equiprent/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationRepo struct {
	mu        sync.Mutex
	items     map[string]*model.Reservation
	seq       int
	CreateErr error
	LinkErr   error
	FindErr   error
	// BeforeTx runs ahead of every transaction body; an error aborts the transaction.
	BeforeTx func(ctx context.Context) error
}

func NewReservationRepo() *ReservationRepo {
	return &ReservationRepo{items: make(map[string]*model.Reservation)}
}

func (f *ReservationRepo) Seed(r *model.Reservation) *model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if r.ID == "" {
		r.ID = fmt.Sprintf("r%d", f.seq)
	}
	if r.Status == "" {
		r.Status = model.ReservationActive
	}
	r.CreatedAt = time.Date(2025, 6, 1, 0, 0, f.seq, 0, time.UTC)
	copied := *r
	f.items[r.ID] = &copied
	return r
}

func (f *ReservationRepo) Create(ctx context.Context, r *model.Reservation) error {
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.Seed(r)
	return nil
}

func (f *ReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *ReservationRepo) FindActiveByOrder(ctx context.Context, orderID string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	var newest *model.Reservation
	for _, r := range f.items {
		if r.OrderID == orderID && r.IsActive() && (newest == nil || r.CreatedAt.After(newest.CreatedAt)) {
			newest = r
		}
	}
	if newest == nil {
		return nil, reservationserrors.ErrNotFound
	}
	copied := *newest
	return &copied, nil
}

func (f *ReservationRepo) FindActiveInRange(ctx context.Context, equipmentType, equipmentID, fromDate, toDate string) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []*model.Reservation
	for _, r := range f.items {
		if r.EquipmentType != equipmentType || r.EquipmentID != equipmentID || !r.IsActive() {
			continue
		}
		last := r.Date
		if r.EndDate != "" {
			last = r.EndDate
		}
		if r.Date > toDate || last < fromDate {
			continue
		}
		copied := *r
		found = append(found, &copied)
	}
	return found, nil
}

func (f *ReservationRepo) Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []*model.Reservation
	for _, r := range f.items {
		if filter.EquipmentID != "" && r.EquipmentID != filter.EquipmentID {
			continue
		}
		copied := *r
		found = append(found, &copied)
	}
	return found, nil
}

func (f *ReservationRepo) Count(ctx context.Context, filter repository.SearchFilter) (int64, error) {
	found, _ := f.Search(ctx, filter, 0, 0)
	return int64(len(found)), nil
}

func (f *ReservationRepo) Supersede(ctx context.Context, id string, next *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok || !r.IsActive() {
		return reservationserrors.ErrNotFound
	}
	r.Date, r.StartTime, r.EndTime = next.Date, next.StartTime, next.EndTime
	r.EndDate, r.ReservationType, r.Summary = next.EndDate, next.ReservationType, next.Summary
	r.CalendarEventID = ""
	next.ID = id
	next.Status = model.ReservationActive
	next.CalendarEventID = ""
	return nil
}

func (f *ReservationRepo) SetCalendarEventID(ctx context.Context, id, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LinkErr != nil {
		return f.LinkErr
	}
	r, ok := f.items[id]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	r.CalendarEventID = eventID
	return nil
}

func (f *ReservationRepo) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok || !r.IsActive() {
		return reservationserrors.ErrNotFound
	}
	r.Status = model.ReservationCancelled
	return nil
}

func (f *ReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if f.BeforeTx != nil {
		if err := f.BeforeTx(ctx); err != nil {
			return err
		}
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

func (f *ReservationRepo) ActiveForOrder(orderID string) []*model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []*model.Reservation
	for _, r := range f.items {
		if r.OrderID == orderID && r.IsActive() {
			found = append(found, r)
		}
	}
	return found
}

type Locks struct {
	mu       sync.Mutex
	held     map[string]string
	Busy     int
	Acquired int
	Released int
	Err      error
}

func (f *Locks) Acquire(ctx context.Context, lockID, owner string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if f.Busy > 0 {
		f.Busy--
		return reservationserrors.ErrLockBusy
	}
	if f.held == nil {
		f.held = make(map[string]string)
	}
	if _, taken := f.held[lockID]; taken {
		return reservationserrors.ErrLockBusy
	}
	f.held[lockID] = owner
	f.Acquired++
	return nil
}

func (f *Locks) Release(ctx context.Context, lockID, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[lockID] == owner {
		delete(f.held, lockID)
	}
	f.Released++
	return nil
}

type Calendar struct {
	mu        sync.Mutex
	events    map[string]calendar.Event
	seq       int
	CreateErr error
	DeleteErr error
	ListErr   error
	Deleted   []string
}

func NewCalendar() *Calendar {
	return &Calendar{events: make(map[string]calendar.Event)}
}

func (f *Calendar) CreateEvent(ctx context.Context, equipmentType string, event *calendar.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	f.seq++
	id := fmt.Sprintf("evt%d", f.seq)
	e := *event
	e.ID = id
	f.events[id] = e
	return id, nil
}

func (f *Calendar) ListEvents(ctx context.Context, equipmentType string, from, to time.Time) ([]calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var found []calendar.Event
	for _, e := range f.events {
		if e.End.After(from) && e.Start.Before(to) {
			found = append(found, e)
		}
	}
	return found, nil
}

func (f *Calendar) DeleteEvent(ctx context.Context, equipmentType, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.events, eventID)
	f.Deleted = append(f.Deleted, eventID)
	return nil
}

func (f *Calendar) Event(id string) (calendar.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	return e, ok
}

func (f *Calendar) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// Publisher records event types in publish order.
type Publisher struct {
	mu           sync.Mutex
	Reservations []string
	Orders       []string
	Mirrors      []events.CalendarMirrorRequest
	Err          error
}

func (f *Publisher) ReservationChanged(ctx context.Context, eventType string, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reservations = append(f.Reservations, eventType)
	return f.Err
}

func (f *Publisher) OrderChanged(ctx context.Context, eventType string, o *model.Order, previousStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Orders = append(f.Orders, eventType)
	return f.Err
}

func (f *Publisher) RequestCalendarMirror(ctx context.Context, req events.CalendarMirrorRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Mirrors = append(f.Mirrors, req)
	return f.Err
}

func (f *Publisher) Close() error {
	return nil
}

var ErrBoom = errors.New("boom")
