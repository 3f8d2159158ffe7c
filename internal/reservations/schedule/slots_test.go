package schedule

import (
	"errors"
	"math"
	"testing"

	reservationserrors "equiprent/internal/reservations/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlots_DefaultWindow(t *testing.T) {
	slots, err := GenerateSlots(6, 20, 0.5)
	require.NoError(t, err)

	require.Len(t, slots, 29)
	assert.Equal(t, "06:00", slots[0])
	assert.Equal(t, "06:30", slots[1])
	assert.Equal(t, "20:00", slots[len(slots)-1])
}

func TestGenerateSlots_MonotonicAndDeterministic(t *testing.T) {
	first, err := GenerateSlots(7, 18, 0.25)
	require.NoError(t, err)
	second, err := GenerateSlots(7, 18, 0.25)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1], first[i], "slot %d not ascending", i)
	}
}

func TestGenerateSlots_EndNotOnBoundary(t *testing.T) {
	slots, err := GenerateSlots(6, 8, 0.75)
	require.NoError(t, err)

	assert.Equal(t, []string{"06:00", "06:45", "07:30"}, slots)
}

func TestGenerateSlots_MidnightEndExcluded(t *testing.T) {
	slots, err := GenerateSlots(22, 24, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"22:00", "23:00"}, slots)
}

func TestGenerateSlots_InvalidWindow(t *testing.T) {
	tests := []struct {
		name        string
		start, end  int
		granularity float64
	}{
		{"zero granularity", 6, 20, 0},
		{"negative granularity", 6, 20, -1},
		{"NaN granularity", 6, 20, math.NaN()},
		{"sub-minute granularity", 6, 20, 0.001},
		{"end before start", 20, 6, 1},
		{"empty window", 6, 6, 1},
		{"negative start", -1, 6, 1},
		{"end past midnight", 6, 25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(tt.start, tt.end, tt.granularity)
			assert.Nil(t, slots)
			assert.True(t, errors.Is(err, reservationserrors.ErrInvalidScheduleWindow), "got %v", err)
		})
	}
}
