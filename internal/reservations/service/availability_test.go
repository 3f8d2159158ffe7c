package service

import (
	"context"
	"testing"

	"equiprent/internal/reservations/availability"
	"equiprent/internal/reservations/reservationstest"
	"equiprent/internal/reservations/repository"
	apperrors "equiprent/pkg/errors"
	"equiprent/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDaySlots_ConstructionsAlwaysAvailable(t *testing.T) {
	f := newWriterFixture(t)
	svc := NewAvailabilityService(f.cfg, f.checker)

	day, err := svc.GetDaySlots(context.Background(), model.ServiceConstructions, "", "2025-07-01")
	require.NoError(t, err)

	require.Len(t, day.AvailableSlots, 29)
	assert.Equal(t, "06:00", day.AvailableSlots[0].DisplayTime)
	assert.Equal(t, "20:00", day.AvailableSlots[len(day.AvailableSlots)-1].DisplayTime)
	for _, s := range day.AvailableSlots {
		assert.True(t, s.Available, s.DisplayTime)
	}
}

func TestGetDaySlots_EquipmentUsesLedger(t *testing.T) {
	f := newWriterFixture(t)
	svc := NewAvailabilityService(f.cfg, f.checker)
	f.repo.Seed(&model.Reservation{
		EquipmentType: model.EquipmentExcavators, EquipmentID: "TB145", OrderID: "o1",
		Date: "2025-07-01", StartTime: "09:00", EndTime: "10:00",
	})

	day, err := svc.GetDaySlots(context.Background(), model.EquipmentExcavators, "TB145", "2025-07-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", day.Date)

	for _, s := range day.AvailableSlots {
		if s.DisplayTime == "09:30" {
			assert.False(t, s.Available)
		}
		if s.DisplayTime == "12:00" {
			assert.True(t, s.Available)
		}
	}
}

func TestGetDaySlots_Errors(t *testing.T) {
	f := newWriterFixture(t)
	svc := NewAvailabilityService(f.cfg, f.checker)
	ctx := context.Background()

	_, err := svc.GetDaySlots(ctx, "cranes", "X1", "2025-07-01")
	assert.Equal(t, apperrors.CodeInvalidInput, appCode(err))

	_, err = svc.GetDaySlots(ctx, model.EquipmentContainers, "", "2025-07-01")
	assert.Equal(t, apperrors.CodeInvalidInput, appCode(err))

	_, err = svc.GetDaySlots(ctx, model.EquipmentContainers, "C7", "07/01/2025")
	assert.Equal(t, apperrors.CodeInvalidScheduleWindow, appCode(err))

	f.cal.ListErr = reservationstest.ErrBoom
	_, err = svc.GetDaySlots(ctx, model.EquipmentContainers, "C7", "2025-07-01")
	assert.Equal(t, apperrors.CodeUnavailable, appCode(err))
}

func TestCheckInterval(t *testing.T) {
	f := newWriterFixture(t)
	svc := NewAvailabilityService(f.cfg, f.checker)
	f.repo.Seed(&model.Reservation{
		EquipmentType: model.EquipmentExcavators, EquipmentID: "TB145", OrderID: "o1",
		Date: "2025-07-01", StartTime: "09:00", EndTime: "10:00",
	})

	q := availability.IntervalQuery{
		EquipmentType: model.EquipmentExcavators,
		EquipmentID:   "TB145",
		Date:          "2025-07-01",
		StartTime:     "10:00",
	}
	result, err := svc.CheckInterval(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, "11:00", result.EndTime)

	q.StartTime = "10:30"
	result, err = svc.CheckInterval(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, result.Available)

	q.ExcludeOrderID = "o1"
	q.StartTime = "09:00"
	result, err = svc.CheckInterval(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, result.Available)

	q.EquipmentType = model.ServiceConstructions
	_, err = svc.CheckInterval(context.Background(), q)
	assert.Equal(t, apperrors.CodeInvalidInput, appCode(err))
}

func TestReservationService(t *testing.T) {
	f := newWriterFixture(t)
	svc := NewReservationService(f.cfg, f.repo)
	ctx := context.Background()

	seeded := f.repo.Seed(&model.Reservation{
		EquipmentType: model.EquipmentExcavators, EquipmentID: "TB145", OrderID: "o1",
		Date: "2025-07-01", StartTime: "09:00", EndTime: "10:00",
	})

	got, err := svc.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "o1", got.OrderID)

	_, err = svc.GetByID(ctx, "missing")
	assert.Equal(t, apperrors.CodeNotFound, appCode(err))

	_, err = svc.GetByID(ctx, "")
	assert.Equal(t, apperrors.CodeInvalidInput, appCode(err))

	found, total, err := svc.Search(ctx, repository.SearchFilter{EquipmentID: "TB145"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, int64(1), total)

	found, total, err = svc.Search(ctx, repository.SearchFilter{EquipmentID: "nope"}, 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Zero(t, total)

	_, _, err = svc.Search(ctx, repository.SearchFilter{FromDate: "2025-07-02", ToDate: "2025-07-01"}, 10, 0)
	assert.Equal(t, apperrors.CodeInvalidInput, appCode(err))
}
