package model

import "time"

const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

type Order struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerName    string    `json:"customerName" bson:"customerName" validate:"required,min=2,max=100"`
	CustomerPhone   string    `json:"customerPhone" bson:"customerPhone" validate:"required,e164"`
	CustomerEmail   string    `json:"customerEmail,omitempty" bson:"customerEmail,omitempty" validate:"omitempty,email,max=254"`
	Address         string    `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=300"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	ServiceType     string    `json:"serviceType" bson:"serviceType" validate:"required,oneof=containers excavators constructions"`
	EquipmentID     string    `json:"equipmentId,omitempty" bson:"equipmentId,omitempty" validate:"required_unless=ServiceType constructions,max=100"`
	OrderDate       string    `json:"orderDate" bson:"orderDate" validate:"required,isodate"`
	Time            string    `json:"time" bson:"time" validate:"required,hhmm"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=pending in_progress completed cancelled"`
	EndTime         string    `json:"endTime,omitempty" bson:"endTime,omitempty" validate:"omitempty,hhmm"`
	EndDate         string    `json:"endDate,omitempty" bson:"endDate,omitempty" validate:"omitempty,isodate"`
	ReservationType string    `json:"reservationType,omitempty" bson:"reservationType,omitempty" validate:"omitempty,oneof=time days weeks months"`
	Quantity        int       `json:"quantity,omitempty" bson:"quantity,omitempty" validate:"omitempty,min=1,max=366"`
	ReservationID   string    `json:"reservationId,omitempty" bson:"reservationId,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsEquipmentBound is false for construction work, which never reserves equipment.
func (o *Order) IsEquipmentBound() bool {
	return o.ServiceType != ServiceConstructions
}

func (o *Order) IsOpen() bool {
	return o.Status == OrderPending || o.Status == OrderInProgress
}

type OrderStatusUpdate struct {
	Status          string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
	ReservationType string `json:"reservationType,omitempty" validate:"omitempty,oneof=time days weeks months"`
	EndTime         string `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	Quantity        int    `json:"quantity,omitempty" validate:"omitempty,min=1,max=366"`
}
