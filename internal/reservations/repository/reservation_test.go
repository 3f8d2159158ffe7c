package repository

import (
	"testing"
	"time"

	"equiprent/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func TestActiveInRangeFilter(t *testing.T) {
	filter := activeInRangeFilter(model.EquipmentExcavators, "TB145", "2025-06-09", "2025-06-11")

	if filter["equipmentType"] != model.EquipmentExcavators || filter["equipmentId"] != "TB145" {
		t.Errorf("unexpected unit filter: %v", filter)
	}
	if filter["status"] != model.ReservationActive {
		t.Errorf("expected active status filter, got %v", filter["status"])
	}
	date, ok := filter["date"].(bson.M)
	if !ok || date["$lte"] != "2025-06-11" {
		t.Errorf("expected date <= to, got %v", filter["date"])
	}
	or, ok := filter["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("expected two $or branches, got %v", filter["$or"])
	}
	if or[0]["endDate"].(bson.M)["$gte"] != "2025-06-09" {
		t.Errorf("expected endDate >= from, got %v", or[0])
	}
	if or[1]["date"].(bson.M)["$gte"] != "2025-06-09" {
		t.Errorf("expected single-day branch date >= from, got %v", or[1])
	}
}

func TestBuildSearchFilter(t *testing.T) {
	tests := []struct {
		name     string
		filter   SearchFilter
		wantKeys []string
	}{
		{"empty", SearchFilter{}, nil},
		{"unit only", SearchFilter{EquipmentType: "excavators", EquipmentID: "TB145"}, []string{"equipmentType", "equipmentId"}},
		{"with dates", SearchFilter{EquipmentID: "TB145", FromDate: "2025-06-01", ToDate: "2025-06-30"}, []string{"equipmentId", "$and"}},
		{"order and status", SearchFilter{OrderID: "o1", Status: model.ReservationActive}, []string{"orderId", "status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchFilter(tt.filter)
			if len(got) != len(tt.wantKeys) {
				t.Fatalf("expected %d keys, got %v", len(tt.wantKeys), got)
			}
			for _, key := range tt.wantKeys {
				if _, ok := got[key]; !ok {
					t.Errorf("expected key %q in %v", key, got)
				}
			}
		})
	}
}

func TestSupersedeUpdate_UnsetsMissingOptionals(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	next := &model.Reservation{
		Date:            "2025-06-10",
		StartTime:       "09:00",
		EndTime:         "11:00",
		ReservationType: model.ReservationTypeTime,
	}

	update := supersedeUpdate(next, now)
	set := update["$set"].(bson.M)
	unset := update["$unset"].(bson.M)

	if set["endTime"] != "11:00" || set["reservationType"] != model.ReservationTypeTime {
		t.Errorf("unexpected $set: %v", set)
	}
	if _, ok := set["endDate"]; ok {
		t.Error("endDate must not be written as empty")
	}
	for _, field := range []string{"endDate", "summary", "calendarEventId"} {
		if _, ok := unset[field]; !ok {
			t.Errorf("expected %s to be unset", field)
		}
	}
}

func TestLockID(t *testing.T) {
	if got := LockID("excavators", "TB145"); got != "reservation_lock_excavators_TB145" {
		t.Errorf("unexpected lock id %q", got)
	}
}
