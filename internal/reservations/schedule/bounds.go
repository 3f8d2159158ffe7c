package schedule

import (
	"fmt"
	"time"

	reservationserrors "equiprent/internal/reservations/errors"
	"equiprent/pkg/model"
)

const placeholderMinutes = 60

var dayMultipliers = map[string]int{
	model.ReservationTypeDays:   1,
	model.ReservationTypeWeeks:  7,
	model.ReservationTypeMonths: 30,
}

// Bounds is the authoritative stored shape of a reservation window.
type Bounds struct {
	ReservationType string
	Date            string
	StartTime       string
	EndTime         string
	EndDate         string
}

// DeriveBounds fills in the end of a reservation. Time reservations default to one hour,
// day scales end at 23:59 on date + quantity * (1|7|30) days.
func DeriveBounds(reservationType, date, startTime, endTime string, quantity int) (Bounds, error) {
	if reservationType == "" {
		reservationType = model.ReservationTypeTime
	}
	if _, err := ParseDate(date, time.UTC); err != nil {
		return Bounds{}, err
	}
	startMin, err := ParseHHMM(startTime)
	if err != nil {
		return Bounds{}, err
	}

	if reservationType == model.ReservationTypeTime {
		endMin := min(startMin+placeholderMinutes, minutesPerDay-1)
		if endTime != "" {
			if endMin, err = ParseHHMM(endTime); err != nil {
				return Bounds{}, err
			}
		}
		if endMin <= startMin {
			return Bounds{}, fmt.Errorf("%w: end %s must be after start %s", reservationserrors.ErrInvalidScheduleWindow, FormatMinutes(endMin), startTime)
		}
		return Bounds{
			ReservationType: reservationType,
			Date:            date,
			StartTime:       startTime,
			EndTime:         FormatMinutes(endMin),
		}, nil
	}

	multiplier, ok := dayMultipliers[reservationType]
	if !ok {
		return Bounds{}, fmt.Errorf("%w: %q", reservationserrors.ErrInvalidReservationType, reservationType)
	}
	if quantity <= 0 {
		quantity = 1
	}
	endDate, err := AddDays(date, quantity*multiplier)
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{
		ReservationType: reservationType,
		Date:            date,
		StartTime:       startTime,
		EndTime:         model.EndOfDay,
		EndDate:         endDate,
	}, nil
}

// ExplicitDayBounds checks a day-scale window whose end date is already known.
// The end date may equal the start date but never precede it.
func ExplicitDayBounds(reservationType, date, startTime, endDate string) (Bounds, error) {
	if _, ok := dayMultipliers[reservationType]; !ok {
		return Bounds{}, fmt.Errorf("%w: %q", reservationserrors.ErrInvalidReservationType, reservationType)
	}
	from, err := ParseDate(date, time.UTC)
	if err != nil {
		return Bounds{}, err
	}
	to, err := ParseDate(endDate, time.UTC)
	if err != nil {
		return Bounds{}, err
	}
	if to.Before(from) {
		return Bounds{}, fmt.Errorf("%w: end date %s is before start date %s", reservationserrors.ErrInvalidScheduleWindow, endDate, date)
	}
	if startTime != "" {
		if _, err := ParseHHMM(startTime); err != nil {
			return Bounds{}, err
		}
	}
	return Bounds{
		ReservationType: reservationType,
		Date:            date,
		StartTime:       startTime,
		EndTime:         model.EndOfDay,
		EndDate:         endDate,
	}, nil
}

// ReservationInterval resolves a stored reservation to absolute time in loc.
// Day-scale reservations block whole days from date 00:00 through endDate 23:59.
func ReservationInterval(r *model.Reservation, loc *time.Location) (Interval, error) {
	startTime := r.StartTime
	if r.IsDayScale() {
		startTime = "00:00"
	}
	start, err := At(r.Date, startTime, loc)
	if err != nil {
		return Interval{}, err
	}

	endDate := r.Date
	if r.EndDate != "" {
		endDate = r.EndDate
	}
	endTime := r.EndTime
	if endTime == "" {
		endTime = model.EndOfDay
	}
	end, err := At(endDate, endTime, loc)
	if err != nil {
		return Interval{}, err
	}
	if !end.After(start) {
		end = start.Add(placeholderMinutes * time.Minute)
	}
	return Interval{Start: start, End: end}, nil
}

func BoundsInterval(b Bounds, loc *time.Location) (Interval, error) {
	return ReservationInterval(&model.Reservation{
		ReservationType: b.ReservationType,
		Date:            b.Date,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		EndDate:         b.EndDate,
	}, loc)
}

// PlaceholderInterval is the implicit one-hour block of an order without a reservation.
func PlaceholderInterval(date, startTime string, loc *time.Location) (Interval, error) {
	start, err := At(date, startTime, loc)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: start.Add(placeholderMinutes * time.Minute)}, nil
}
