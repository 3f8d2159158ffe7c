package service

import (
	"context"
	"fmt"

	"equiprent/internal/reservations/availability"
	"equiprent/internal/reservations/schedule"
	"equiprent/pkg/config"
	apperrors "equiprent/pkg/errors"
	"equiprent/pkg/logger"
	"equiprent/pkg/model"
	"equiprent/pkg/sanitizer"
)

type AvailabilityService interface {
	GetDaySlots(ctx context.Context, serviceType, equipmentID, date string) (*model.DaySlots, error)
	CheckInterval(ctx context.Context, q availability.IntervalQuery) (*model.AvailabilityResult, error)
}

type availabilityService struct {
	checker *availability.Checker
	log     *logger.Logger
}

func NewAvailabilityService(cfg *config.Config, checker *availability.Checker) AvailabilityService {
	return &availabilityService{
		checker: checker,
		log:     componentLogger(cfg, "availability-service"),
	}
}

// GetDaySlots lists the working-day slots. Construction work is not tied to a unit,
// so every slot is offered.
func (s *availabilityService) GetDaySlots(ctx context.Context, serviceType, equipmentID, date string) (*model.DaySlots, error) {
	equipmentID = sanitizer.NormalizeEquipmentID(equipmentID)
	if err := validateServiceType(serviceType); err != nil {
		return nil, err
	}
	if _, err := schedule.ParseDate(date, s.checker.Location()); err != nil {
		return nil, toAppError(err, "parse date")
	}

	if serviceType == model.ServiceConstructions {
		slots, err := s.openDay(serviceType, date)
		if err != nil {
			return nil, toAppError(err, "generate slots")
		}
		return &model.DaySlots{Date: date, AvailableSlots: slots}, nil
	}

	if equipmentID == "" {
		return nil, apperrors.InvalidInput("equipmentId is required for " + serviceType)
	}

	slots, err := s.checker.ListDaySlots(ctx, serviceType, equipmentID, date)
	if err != nil {
		s.log.Error("Failed to list day slots",
			"service_type", serviceType,
			"equipment_id", equipmentID,
			"date", date,
			"error", err,
		)
		return nil, toAppError(err, "list slots")
	}
	return &model.DaySlots{Date: date, AvailableSlots: slots}, nil
}

func (s *availabilityService) openDay(serviceType, date string) ([]model.Slot, error) {
	policy := s.checker.Policy(serviceType)
	starts, err := policy.Slots()
	if err != nil {
		return nil, err
	}
	slots := make([]model.Slot, 0, len(starts))
	for _, start := range starts {
		at, err := schedule.At(date, start, s.checker.Location())
		if err != nil {
			return nil, err
		}
		slots = append(slots, model.Slot{
			Start:       at,
			End:         at.Add(policy.SlotLength),
			DisplayTime: start,
			Available:   true,
		})
	}
	return slots, nil
}

func (s *availabilityService) CheckInterval(ctx context.Context, q availability.IntervalQuery) (*model.AvailabilityResult, error) {
	q.EquipmentID = sanitizer.NormalizeEquipmentID(q.EquipmentID)
	if q.EquipmentType != model.EquipmentContainers && q.EquipmentType != model.EquipmentExcavators {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Equipment type %q has no availability", q.EquipmentType))
	}
	if q.EquipmentID == "" {
		return nil, apperrors.InvalidInput("equipmentId is required")
	}

	_, bounds, err := s.checker.Candidate(q)
	if err != nil {
		return nil, toAppError(err, "resolve interval")
	}

	free, err := s.checker.IsIntervalFree(ctx, q)
	if err != nil {
		return nil, toAppError(err, "check availability")
	}

	return &model.AvailabilityResult{
		EquipmentType: q.EquipmentType,
		EquipmentID:   q.EquipmentID,
		Date:          bounds.Date,
		StartTime:     bounds.StartTime,
		EndTime:       bounds.EndTime,
		Available:     free,
	}, nil
}

func validateServiceType(serviceType string) error {
	switch serviceType {
	case model.EquipmentContainers, model.EquipmentExcavators, model.ServiceConstructions:
		return nil
	}
	return apperrors.InvalidInput(fmt.Sprintf("Unknown service type %q", serviceType))
}
