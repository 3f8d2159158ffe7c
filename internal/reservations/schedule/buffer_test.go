package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAt(t *testing.T, date, hhmm string) time.Time {
	t.Helper()
	at, err := At(date, hhmm, time.UTC)
	require.NoError(t, err)
	return at
}

func interval(t *testing.T, date, from, to string) Interval {
	t.Helper()
	return Interval{Start: mustAt(t, date, from), End: mustAt(t, date, to)}
}

func TestBufferPolicy_Expand(t *testing.T) {
	p := DefaultBufferPolicy()
	existing := interval(t, "2025-06-10", "09:00", "10:00")

	expanded := p.Expand(existing)

	assert.Equal(t, mustAt(t, "2025-06-10", "08:00"), expanded.Start)
	assert.Equal(t, mustAt(t, "2025-06-10", "10:30"), expanded.End)
}

func TestBufferPolicy_Boundaries(t *testing.T) {
	p := DefaultBufferPolicy()
	existing := interval(t, "2025-06-10", "09:00", "10:00")

	tests := []struct {
		name      string
		candidate Interval
		want      bool
	}{
		{"ends exactly at before-buffer", interval(t, "2025-06-10", "07:00", "08:00"), false},
		{"ends one minute into before-buffer", interval(t, "2025-06-10", "07:01", "08:01"), true},
		{"starts exactly at after-buffer", interval(t, "2025-06-10", "10:30", "11:30"), false},
		{"starts one minute inside after-buffer", interval(t, "2025-06-10", "10:29", "11:29"), true},
		{"identical interval", existing, true},
		{"contains existing", interval(t, "2025-06-10", "06:00", "12:00"), true},
		{"different day", interval(t, "2025-06-11", "09:00", "10:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Overlaps(existing, tt.candidate))
		})
	}
}

// Existing 09:00-10:00 on excavator TB145.
func TestBufferPolicy_ExcavatorScenario(t *testing.T) {
	p := DefaultBufferPolicy()
	existing := interval(t, "2025-06-10", "09:00", "10:00")

	assert.True(t, p.Overlaps(existing, interval(t, "2025-06-10", "10:15", "11:15")))
	assert.False(t, p.Overlaps(existing, interval(t, "2025-06-10", "10:30", "11:30")))
	assert.True(t, p.Overlaps(existing, interval(t, "2025-06-10", "07:30", "08:30")))
	assert.False(t, p.Overlaps(existing, interval(t, "2025-06-10", "07:00", "08:00")))
}

func TestBufferPolicy_SearchWindowCoversConflicts(t *testing.T) {
	p := BufferPolicy{Before: 60 * time.Minute, After: 30 * time.Minute}
	candidate := interval(t, "2025-06-10", "12:00", "13:00")
	window := p.SearchWindow(candidate)

	assert.Equal(t, mustAt(t, "2025-06-10", "11:30"), window.Start)
	assert.Equal(t, mustAt(t, "2025-06-10", "14:00"), window.End)

	// a reservation ending inside the window still conflicts
	assert.True(t, p.Overlaps(interval(t, "2025-06-10", "10:45", "11:45"), candidate))
	// and one ending at the window start does not
	assert.False(t, p.Overlaps(interval(t, "2025-06-10", "10:30", "11:30"), candidate))
}
