package model

import "time"

const (
	EquipmentContainers  = "containers"
	EquipmentExcavators  = "excavators"
	ServiceConstructions = "constructions"
)

const (
	ReservationTypeTime   = "time"
	ReservationTypeDays   = "days"
	ReservationTypeWeeks  = "weeks"
	ReservationTypeMonths = "months"
)

const (
	ReservationActive    = "active"
	ReservationCancelled = "cancelled"
)

// EndOfDay is the sentinel end time stored for day, week and month reservations.
const EndOfDay = "23:59"

// Reservation is one ledger entry. Optional fields are omitted, never stored as null.
type Reservation struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty"`
	EquipmentType   string    `json:"equipmentType" bson:"equipmentType"`
	EquipmentID     string    `json:"equipmentId" bson:"equipmentId"`
	OrderID         string    `json:"orderId" bson:"orderId"`
	Date            string    `json:"date" bson:"date"`
	StartTime       string    `json:"startTime" bson:"startTime"`
	EndTime         string    `json:"endTime" bson:"endTime"`
	EndDate         string    `json:"endDate,omitempty" bson:"endDate,omitempty"`
	ReservationType string    `json:"reservationType,omitempty" bson:"reservationType,omitempty"`
	Status          string    `json:"status" bson:"status"`
	CalendarEventID string    `json:"calendarEventId,omitempty" bson:"calendarEventId,omitempty"`
	Summary         string    `json:"summary,omitempty" bson:"summary,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}

// IsDayScale reports whether the reservation blocks whole days.
func (r *Reservation) IsDayScale() bool {
	return IsDayScale(r.ReservationType)
}

func IsDayScale(reservationType string) bool {
	switch reservationType {
	case ReservationTypeDays, ReservationTypeWeeks, ReservationTypeMonths:
		return true
	}
	return false
}

// ReservationLock serializes reservation writes for one equipment unit.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
