package schedule

import (
	"time"

	"equiprent/pkg/config"
)

type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// BufferPolicy widens an existing reservation by Before ahead of it and After behind it.
type BufferPolicy struct {
	Before time.Duration
	After  time.Duration
}

func DefaultBufferPolicy() BufferPolicy {
	return BufferPolicy{Before: config.DefaultBufferBefore, After: config.DefaultBufferAfter}
}

func (p BufferPolicy) Expand(existing Interval) Interval {
	return Interval{
		Start: existing.Start.Add(-p.Before),
		End:   existing.End.Add(p.After),
	}
}

// Overlaps uses strict comparison, so touching the expanded window is not a conflict.
func (p BufferPolicy) Overlaps(existing, candidate Interval) bool {
	expanded := p.Expand(existing)
	return candidate.End.After(expanded.Start) && candidate.Start.Before(expanded.End)
}

// SearchWindow is the range any existing reservation must intersect to conflict with candidate.
func (p BufferPolicy) SearchWindow(candidate Interval) Interval {
	return Interval{
		Start: candidate.Start.Add(-p.After),
		End:   candidate.End.Add(p.Before),
	}
}
