// Package calendar mirrors reservations into one external calendar per equipment type.
package calendar

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	PropertyOrderID       = "orderId"
	PropertyReservationID = "reservationId"
	PropertyEquipmentID   = "equipmentId"
)

var (
	ErrDisabled        = errors.New("calendar integration is disabled")
	ErrUnknownCalendar = errors.New("no calendar configured for equipment type")
)

// Event is the normalized shape of an external calendar entry.
type Event struct {
	ID            string
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	EquipmentID   string
	OrderID       string
	ReservationID string
}

// Concerns reports whether the event blocks equipmentID. Events created by this service
// carry the unit in a private property; hand-made ones are matched by summary.
func (e Event) Concerns(equipmentID string) bool {
	if e.EquipmentID != "" {
		return e.EquipmentID == equipmentID
	}
	return equipmentID != "" && strings.Contains(strings.ToLower(e.Summary), strings.ToLower(equipmentID))
}

type Client interface {
	CreateEvent(ctx context.Context, equipmentType string, event *Event) (string, error)
	ListEvents(ctx context.Context, equipmentType string, from, to time.Time) ([]Event, error)
	DeleteEvent(ctx context.Context, equipmentType, eventID string) error
}

type disabledClient struct{}

// NewDisabledClient is used when no calendar is configured. It lists nothing and rejects writes.
func NewDisabledClient() Client {
	return disabledClient{}
}

func (disabledClient) CreateEvent(context.Context, string, *Event) (string, error) {
	return "", ErrDisabled
}

func (disabledClient) ListEvents(context.Context, string, time.Time, time.Time) ([]Event, error) {
	return nil, nil
}

func (disabledClient) DeleteEvent(context.Context, string, string) error {
	return nil
}
