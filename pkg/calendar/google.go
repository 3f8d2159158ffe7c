package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"equiprent/pkg/config"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const dateLayout = "2006-01-02"

type googleClient struct {
	service     *gcal.Service
	calendarIDs map[string]string
	location    *time.Location
	timeout     time.Duration
}

// NewGoogleClient authenticates with the service-account credentials in cfg.
func NewGoogleClient(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (Client, error) {
	if cfg.CalendarCredentialsFile != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(cfg.CalendarCredentialsFile)}, opts...)
	}

	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &googleClient{
		service:     service,
		calendarIDs: cfg.CalendarIDs,
		location:    cfg.LocationOrUTC(),
		timeout:     cfg.CalendarTimeout,
	}, nil
}

func (c *googleClient) calendarID(equipmentType string) (string, error) {
	id, ok := c.calendarIDs[equipmentType]
	if !ok || id == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownCalendar, equipmentType)
	}
	return id, nil
}

func (c *googleClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *googleClient) CreateEvent(ctx context.Context, equipmentType string, event *Event) (string, error) {
	calendarID, err := c.calendarID(equipmentType)
	if err != nil {
		return "", err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	created, err := c.service.Events.Insert(calendarID, c.toGoogle(event)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert calendar event: %w", err)
	}
	event.ID = created.Id
	return created.Id, nil
}

func (c *googleClient) ListEvents(ctx context.Context, equipmentType string, from, to time.Time) ([]Event, error) {
	calendarID, err := c.calendarID(equipmentType)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var events []Event
	call := c.service.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		ShowDeleted(false).
		OrderBy("startTime")

	err = call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if event, ok := fromGoogle(item, c.location); ok {
				events = append(events, event)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return events, nil
}

// DeleteEvent treats an already missing event as deleted.
func (c *googleClient) DeleteEvent(ctx context.Context, equipmentType, eventID string) error {
	calendarID, err := c.calendarID(equipmentType)
	if err != nil {
		return err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	err = c.service.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil && !isGone(err) {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

func (c *googleClient) toGoogle(event *Event) *gcal.Event {
	private := map[string]string{}
	if event.EquipmentID != "" {
		private[PropertyEquipmentID] = event.EquipmentID
	}
	if event.OrderID != "" {
		private[PropertyOrderID] = event.OrderID
	}
	if event.ReservationID != "" {
		private[PropertyReservationID] = event.ReservationID
	}

	return &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.In(c.location).Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.In(c.location).Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
		ExtendedProperties: &gcal.EventExtendedProperties{Private: private},
	}
}

// fromGoogle drops cancelled events and events without usable bounds.
// All-day events use an exclusive end date.
func fromGoogle(item *gcal.Event, loc *time.Location) (Event, bool) {
	if item == nil || item.Status == "cancelled" || item.Start == nil || item.End == nil {
		return Event{}, false
	}

	start, ok := parseEventTime(item.Start, loc)
	if !ok {
		return Event{}, false
	}
	end, ok := parseEventTime(item.End, loc)
	if !ok || !end.After(start) {
		return Event{}, false
	}

	event := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
	}
	if item.ExtendedProperties != nil {
		event.EquipmentID = item.ExtendedProperties.Private[PropertyEquipmentID]
		event.OrderID = item.ExtendedProperties.Private[PropertyOrderID]
		event.ReservationID = item.ExtendedProperties.Private[PropertyReservationID]
	}
	return event, true
}

func parseEventTime(dt *gcal.EventDateTime, loc *time.Location) (time.Time, bool) {
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		return t, err == nil
	}
	if dt.Date != "" {
		t, err := time.ParseInLocation(dateLayout, dt.Date, loc)
		return t, err == nil
	}
	return time.Time{}, false
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
