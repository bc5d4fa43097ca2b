package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"bookingpro/internal/availability"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	emailReminderMinutes = 24 * 60
	popupReminderMinutes = 60
)

// GoogleGateway is a Gateway backed by the Calendar v3 API.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
}

// NewGoogleGateway builds a client from a service-account JSON file.
func NewGoogleGateway(ctx context.Context, credentialsPath, calendarID string, loc *time.Location) (*GoogleGateway, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read calendar credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse calendar credentials: %w", err)
	}
	svc, err := gcal.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return NewGoogleGatewayWithService(svc, calendarID, loc), nil
}

// NewGoogleGatewayWithService wraps an existing service.
func NewGoogleGatewayWithService(svc *gcal.Service, calendarID string, loc *time.Location) *GoogleGateway {
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleGateway{svc: svc, calendarID: calendarID, loc: loc}
}

func (g *GoogleGateway) CalendarID() string { return g.calendarID }

func (g *GoogleGateway) ListBusyIntervals(ctx context.Context, timeMin, timeMax time.Time) ([]availability.Interval, error) {
	var busy []availability.Interval
	call := g.svc.Events.List(g.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, e := range page.Items {
			if e.Status == "cancelled" || e.Transparency == "transparent" {
				continue
			}
			iv, err := g.interval(e)
			if err != nil {
				return fmt.Errorf("event %s: %w", e.Id, err)
			}
			busy = append(busy, iv)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return busy, nil
}

func (g *GoogleGateway) interval(e *gcal.Event) (availability.Interval, error) {
	if e.Start == nil || e.End == nil {
		return availability.Interval{}, errors.New("missing start or end")
	}
	if e.Start.DateTime == "" {
		return availability.AllDay(e.Start.Date, e.End.Date, g.loc)
	}
	start, err := time.Parse(time.RFC3339, e.Start.DateTime)
	if err != nil {
		return availability.Interval{}, err
	}
	end, err := time.Parse(time.RFC3339, e.End.DateTime)
	if err != nil {
		return availability.Interval{}, err
	}
	return availability.Interval{Start: start.In(g.loc), End: end.In(g.loc)}, nil
}

func (g *GoogleGateway) CreateEvent(ctx context.Context, req EventRequest) (string, error) {
	start := req.Start.In(g.loc)
	end := start.Add(req.Duration)
	event := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: g.loc.String()},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: g.loc.String()},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: emailReminderMinutes},
				{Method: "popup", Minutes: popupReminderMinutes},
			},
			// zero values are dropped from the request body otherwise
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return created.Id, nil
}

func (g *GoogleGateway) DeleteEvent(ctx context.Context, eventID string) error {
	err := g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do()
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return ErrEventNotFound
	}
	return fmt.Errorf("delete event %s: %w", eventID, err)
}
