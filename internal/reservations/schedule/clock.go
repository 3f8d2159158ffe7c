package schedule

import (
	"fmt"
	"time"

	reservationserrors "equiprent/internal/reservations/errors"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	minutesPerDay = 24 * 60
)

// Clock abstracts "now" so walk-up rules can be tested.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// ParseHHMM returns minutes since midnight for an HH:MM wall-clock string.
func ParseHHMM(value string) (int, error) {
	t, err := time.Parse(TimeLayout, value)
	if err != nil || len(value) != len(TimeLayout) {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", reservationserrors.ErrInvalidScheduleWindow, value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func ParseDate(value string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", reservationserrors.ErrInvalidScheduleWindow, value)
	}
	return d, nil
}

// At combines an ISO date and an HH:MM time in loc.
func At(date, hhmm string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}

func AddDays(date string, days int) (string, error) {
	d, err := ParseDate(date, time.UTC)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, days).Format(DateLayout), nil
}

func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

func IsSameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
