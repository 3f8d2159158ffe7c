package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "equiprent/internal/reservations/errors"
	"equiprent/internal/reservations/schedule"
	"equiprent/pkg/calendar"
	"equiprent/pkg/config"
	"equiprent/pkg/logger"
	"equiprent/pkg/metrics"
	"equiprent/pkg/model"

	"golang.org/x/sync/errgroup"
)

// IntervalQuery describes a candidate reservation. Empty end bounds are derived the
// way the booking writer derives them.
type IntervalQuery struct {
	EquipmentType   string
	EquipmentID     string
	Date            string
	StartTime       string
	EndTime         string
	EndDate         string
	ReservationType string
	ExcludeOrderID  string
}

type Checker struct {
	ledger   LedgerReader
	calendar CalendarReader
	orders   OrderReader
	policies schedule.Policies
	metrics  *metrics.Metrics
	log      *logger.Logger
	clock    schedule.Clock
	loc      *time.Location
	timeout  time.Duration
}

func NewChecker(cfg *config.Config, ledger LedgerReader, calendar CalendarReader, orders OrderReader, policies schedule.Policies, m *metrics.Metrics) *Checker {
	timeout := cfg.AvailabilityTimeout
	if timeout <= 0 {
		timeout = config.DefaultAvailabilityTimeout
	}
	log := cfg.Log
	if log == nil {
		log = logger.New(logger.Config{Level: logger.ERROR})
	}
	return &Checker{
		ledger:   ledger,
		calendar: calendar,
		orders:   orders,
		policies: policies,
		metrics:  m,
		log:      log.Component("availability"),
		clock:    schedule.SystemClock{},
		loc:      cfg.LocationOrUTC(),
		timeout:  timeout,
	}
}

func (c *Checker) WithClock(clock schedule.Clock) *Checker {
	c.clock = clock
	return c
}

func (c *Checker) Location() *time.Location {
	return c.loc
}

func (c *Checker) Policy(equipmentType string) schedule.Policy {
	return c.policies.For(equipmentType)
}

// Candidate resolves the absolute interval a query would occupy.
func (c *Checker) Candidate(q IntervalQuery) (schedule.Interval, schedule.Bounds, error) {
	var (
		bounds schedule.Bounds
		err    error
	)
	if model.IsDayScale(q.ReservationType) && q.EndDate != "" {
		bounds, err = schedule.ExplicitDayBounds(q.ReservationType, q.Date, q.StartTime, q.EndDate)
	} else {
		bounds, err = schedule.DeriveBounds(q.ReservationType, q.Date, q.StartTime, q.EndTime, 1)
	}
	if err != nil {
		return schedule.Interval{}, schedule.Bounds{}, err
	}

	interval, err := schedule.BoundsInterval(bounds, c.loc)
	if err != nil {
		return schedule.Interval{}, schedule.Bounds{}, err
	}
	return interval, bounds, nil
}

func (c *Checker) IsIntervalFree(ctx context.Context, q IntervalQuery) (bool, error) {
	conflicts, err := c.Conflicts(ctx, q)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Conflicts returns every busy block whose buffered interval overlaps the query.
func (c *Checker) Conflicts(ctx context.Context, q IntervalQuery) ([]BusyBlock, error) {
	candidate, _, err := c.Candidate(q)
	if err != nil {
		return nil, err
	}
	policy := c.policies.For(q.EquipmentType)

	start := time.Now()
	blocks, err := c.busyBlocks(ctx, q.EquipmentType, q.EquipmentID, policy.Buffer.SearchWindow(candidate))
	if err != nil {
		c.metrics.ObserveAvailability(q.EquipmentType, "error", time.Since(start))
		return nil, err
	}

	conflicts := overlapping(blocks, candidate, policy.Buffer, q.ExcludeOrderID)
	outcome := "free"
	if len(conflicts) > 0 {
		outcome = "busy"
	}
	c.metrics.ObserveAvailability(q.EquipmentType, outcome, time.Since(start))
	return conflicts, nil
}

// LedgerConflicts re-checks only the ledger, sequentially, so it can run inside a
// Mongo session that must not be shared across goroutines.
func (c *Checker) LedgerConflicts(ctx context.Context, q IntervalQuery) ([]BusyBlock, error) {
	candidate, _, err := c.Candidate(q)
	if err != nil {
		return nil, err
	}
	policy := c.policies.For(q.EquipmentType)
	window := policy.Buffer.SearchWindow(candidate)

	reservations, err := c.ledger.FindActiveInRange(ctx, q.EquipmentType, q.EquipmentID,
		schedule.DateOf(window.Start, c.loc), schedule.DateOf(window.End, c.loc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", reservationserrors.ErrLedgerReadFailed, err)
	}
	blocks, _ := ledgerBlocks(reservations, c.loc)
	return overlapping(blocks, candidate, policy.Buffer, q.ExcludeOrderID), nil
}

// ListDaySlots classifies every slot of the working day as a one-slot-length candidate.
// Busy blocks are read once for the whole day.
func (c *Checker) ListDaySlots(ctx context.Context, equipmentType, equipmentID, date string) ([]model.Slot, error) {
	policy := c.policies.For(equipmentType)
	starts, err := policy.Slots()
	if err != nil {
		return nil, err
	}

	candidates := make([]schedule.Interval, 0, len(starts))
	for _, s := range starts {
		at, err := schedule.At(date, s, c.loc)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, schedule.Interval{Start: at, End: at.Add(policy.SlotLength)})
	}
	if len(candidates) == 0 {
		return []model.Slot{}, nil
	}

	day := schedule.Interval{Start: candidates[0].Start, End: candidates[len(candidates)-1].End}
	began := time.Now()
	blocks, err := c.busyBlocks(ctx, equipmentType, equipmentID, policy.Buffer.SearchWindow(day))
	if err != nil {
		c.metrics.ObserveAvailability(equipmentType, "error", time.Since(began))
		return nil, err
	}
	c.metrics.ObserveAvailability(equipmentType, "listed", time.Since(began))

	earliest := c.clock.Now().Add(policy.WalkUpNotice)
	slots := make([]model.Slot, 0, len(candidates))
	for i, candidate := range candidates {
		available := !candidate.Start.Before(earliest) &&
			len(overlapping(blocks, candidate, policy.Buffer, "")) == 0
		slots = append(slots, model.Slot{
			Start:       candidate.Start,
			End:         candidate.End,
			DisplayTime: starts[i],
			Available:   available,
		})
	}
	return slots, nil
}

// IsWalkUp reports whether start is too close to now to be booked.
func (c *Checker) IsWalkUp(equipmentType string, start time.Time) bool {
	return start.Before(c.clock.Now().Add(c.policies.For(equipmentType).WalkUpNotice))
}

func (c *Checker) busyBlocks(ctx context.Context, equipmentType, equipmentID string, window schedule.Interval) ([]BusyBlock, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fromDate := schedule.DateOf(window.Start, c.loc)
	toDate := schedule.DateOf(window.End, c.loc)

	var (
		reservations []*model.Reservation
		events       []calendar.Event
		orders       []*model.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := c.ledger.FindActiveInRange(gctx, equipmentType, equipmentID, fromDate, toDate)
		if err != nil {
			return fmt.Errorf("%w: %v", reservationserrors.ErrLedgerReadFailed, err)
		}
		reservations = found
		return nil
	})
	g.Go(func() error {
		found, err := c.calendar.ListEvents(gctx, equipmentType, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("%w: %v", reservationserrors.ErrCalendarReadFailed, err)
		}
		events = found
		return nil
	})
	if c.orders != nil {
		g.Go(func() error {
			found, err := c.orders.FindOpenByEquipment(gctx, equipmentType, equipmentID, fromDate, toDate)
			if err != nil {
				return fmt.Errorf("%w: orders: %v", reservationserrors.ErrLedgerReadFailed, err)
			}
			orders = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.log.Warn("Availability check timed out",
				"equipment_type", equipmentType,
				"equipment_id", equipmentID,
				"timeout", c.timeout,
			)
			return nil, fmt.Errorf("%w: %v", reservationserrors.ErrAvailabilityTimeout, err)
		}
		c.log.Error("Availability check failed",
			"equipment_type", equipmentType,
			"equipment_id", equipmentID,
			"error", err,
		)
		return nil, err
	}

	blocks, reservedOrders := ledgerBlocks(reservations, c.loc)
	blocks = append(blocks, calendarBlocks(events, equipmentID, activeIntervals(blocks))...)
	blocks = append(blocks, orderBlocks(orders, reservedOrders, c.loc)...)
	return blocks, nil
}

func overlapping(blocks []BusyBlock, candidate schedule.Interval, buffer schedule.BufferPolicy, excludeOrderID string) []BusyBlock {
	var conflicts []BusyBlock
	for _, b := range blocks {
		if excludeOrderID != "" && b.OrderID == excludeOrderID {
			continue
		}
		if buffer.Overlaps(b.Interval, candidate) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}
