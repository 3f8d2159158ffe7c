package schedule

import (
	"fmt"
	"math"

	reservationserrors "equiprent/internal/reservations/errors"
)

// GenerateSlots lists HH:MM slot starts from startHour in steps of granularityHours.
// endHour is included only when it falls exactly on a step; 24:00 is never emitted.
func GenerateSlots(startHour, endHour int, granularityHours float64) ([]string, error) {
	if math.IsNaN(granularityHours) || math.IsInf(granularityHours, 0) || granularityHours <= 0 {
		return nil, fmt.Errorf("%w: granularity must be positive, got %v", reservationserrors.ErrInvalidScheduleWindow, granularityHours)
	}
	if startHour < 0 || endHour > 24 || endHour <= startHour {
		return nil, fmt.Errorf("%w: working hours must satisfy 0 <= start < end <= 24, got %d-%d", reservationserrors.ErrInvalidScheduleWindow, startHour, endHour)
	}

	step := int(math.Round(granularityHours * 60))
	if step <= 0 {
		return nil, fmt.Errorf("%w: granularity %v is below one minute", reservationserrors.ErrInvalidScheduleWindow, granularityHours)
	}

	startMin, endMin := startHour*60, endHour*60
	slots := make([]string, 0, (endMin-startMin)/step+1)
	for m := startMin; m <= endMin && m < minutesPerDay; m += step {
		slots = append(slots, FormatMinutes(m))
	}
	return slots, nil
}
