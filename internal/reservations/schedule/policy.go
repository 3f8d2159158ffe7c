package schedule

import (
	"time"

	"equiprent/pkg/config"
)

// Policy is the scheduling configuration of one service line.
type Policy struct {
	Buffer           BufferPolicy
	WorkStartHour    int
	WorkEndHour      int
	GranularityHours float64
	SlotLength       time.Duration
	WalkUpNotice     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Buffer:           DefaultBufferPolicy(),
		WorkStartHour:    config.DefaultWorkStartHour,
		WorkEndHour:      config.DefaultWorkEndHour,
		GranularityHours: config.DefaultSlotGranularityHours,
		SlotLength:       config.DefaultSlotLength,
		WalkUpNotice:     config.DefaultWalkUpNotice,
	}
}

func (p Policy) Slots() ([]string, error) {
	return GenerateSlots(p.WorkStartHour, p.WorkEndHour, p.GranularityHours)
}

type Policies map[string]Policy

func NewPolicies(cfg *config.Config) Policies {
	policies := make(Policies, len(cfg.Schedules))
	for serviceType, sp := range cfg.Schedules {
		policies[serviceType] = Policy{
			Buffer:           BufferPolicy{Before: sp.BufferBefore, After: sp.BufferAfter},
			WorkStartHour:    sp.WorkStartHour,
			WorkEndHour:      sp.WorkEndHour,
			GranularityHours: sp.SlotGranularityHours,
			SlotLength:       sp.SlotLength,
			WalkUpNotice:     sp.WalkUpNotice,
		}
	}
	return policies
}

// For falls back to DefaultPolicy for unknown service types.
func (p Policies) For(serviceType string) Policy {
	if policy, ok := p[serviceType]; ok {
		return policy
	}
	return DefaultPolicy()
}
