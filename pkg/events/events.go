// Package events publishes reservation and order changes and calendar mirror requests.
package events

import (
	"time"

	"equiprent/pkg/model"
)

const (
	ReservationCreated    = "reservation.created"
	ReservationSuperseded = "reservation.superseded"
	ReservationReleased   = "reservation.released"
	OrderCreated          = "order.created"
	OrderStatusChanged    = "order.status_changed"
	CalendarMirror        = "calendar.mirror_requested"

	SchemaVersion = "1"
)

type ReservationEvent struct {
	ReservationID   string    `json:"reservationId"`
	OrderID         string    `json:"orderId"`
	EquipmentType   string    `json:"equipmentType"`
	EquipmentID     string    `json:"equipmentId"`
	Date            string    `json:"date"`
	StartTime       string    `json:"startTime"`
	EndTime         string    `json:"endTime"`
	EndDate         string    `json:"endDate,omitempty"`
	ReservationType string    `json:"reservationType,omitempty"`
	Status          string    `json:"status"`
	CalendarEventID string    `json:"calendarEventId,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func NewReservationEvent(r *model.Reservation) ReservationEvent {
	return ReservationEvent{
		ReservationID:   r.ID,
		OrderID:         r.OrderID,
		EquipmentType:   r.EquipmentType,
		EquipmentID:     r.EquipmentID,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		EndDate:         r.EndDate,
		ReservationType: r.ReservationType,
		Status:          r.Status,
		CalendarEventID: r.CalendarEventID,
		OccurredAt:      time.Now().UTC(),
	}
}

type OrderEvent struct {
	OrderID        string    `json:"orderId"`
	ServiceType    string    `json:"serviceType"`
	EquipmentID    string    `json:"equipmentId,omitempty"`
	OrderDate      string    `json:"orderDate"`
	Time           string    `json:"time"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Status         string    `json:"status"`
	ReservationID  string    `json:"reservationId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func NewOrderEvent(o *model.Order, previousStatus string) OrderEvent {
	return OrderEvent{
		OrderID:        o.ID,
		ServiceType:    o.ServiceType,
		EquipmentID:    o.EquipmentID,
		OrderDate:      o.OrderDate,
		Time:           o.Time,
		PreviousStatus: previousStatus,
		Status:         o.Status,
		ReservationID:  o.ReservationID,
		OccurredAt:     time.Now().UTC(),
	}
}

const (
	MirrorCreate = "create"
	MirrorDelete = "delete"
)

// CalendarMirrorRequest asks the sync worker to repair the calendar copy of a reservation.
type CalendarMirrorRequest struct {
	Action        string    `json:"action"`
	ReservationID string    `json:"reservationId"`
	EquipmentType string    `json:"equipmentType"`
	EventID       string    `json:"eventId,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	RequestedAt   time.Time `json:"requestedAt"`
}
