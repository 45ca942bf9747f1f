package finalize

import (
	"clinic/src/lib"
	"clinic/src/models"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// GoogleCalendarBooker reserves appointment slots in the clinic calendar.
type GoogleCalendarBooker struct {
	svc        *calendar.Service
	calendarID string
	loc        *time.Location
	duration   time.Duration
}

func NewGoogleCalendarBooker(svc *calendar.Service, calendarID string, loc *time.Location, duration time.Duration) *GoogleCalendarBooker {
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleCalendarBooker{svc: svc, calendarID: calendarID, loc: loc, duration: duration}
}

// CalendarEventID derives the event id from the intent id so that a retried
// insert collides instead of creating a duplicate. Calendar ids use base32hex
// characters, which lower-case hex is a subset of.
func CalendarEventID(intent *models.BookingIntent) string {
	return "bk" + strings.ReplaceAll(intent.ID.String(), "-", "")
}

// AppointmentStart combines the selected date and wall-clock time.
func AppointmentStart(intent *models.BookingIntent, loc *time.Location) (time.Time, error) {
	clock := intent.SelectedTime
	if len(clock) > 5 {
		clock = clock[:5]
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", intent.SelectedDate.Format("2006-01-02")+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointment slot: %w", err)
	}
	return t, nil
}

func (g *GoogleCalendarBooker) BookAppointment(ctx context.Context, intent *models.BookingIntent) (string, error) {
	start, err := AppointmentStart(intent, g.loc)
	if err != nil {
		return "", err
	}
	end := start.Add(g.duration)
	id := CalendarEventID(intent)
	summary := intent.ServiceType
	if intent.CustomerName != "" {
		summary = fmt.Sprintf("%s: %s", intent.ServiceType, intent.CustomerName)
	}
	event := &calendar.Event{
		Id:          id,
		Summary:     summary,
		Description: fmt.Sprintf("Booking %s\nStripe session %s", intent.ID.String(), intent.StripeSessionID),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: g.loc.String()},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: g.loc.String()},
	}
	if intent.CustomerEmail != "" {
		event.Attendees = []*calendar.EventAttendee{{Email: intent.CustomerEmail, DisplayName: intent.CustomerName}}
	}

	_, err = lib.GAPIAddEvent(ctx, g.svc, g.calendarID, event)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusConflict {
		// inserted by an earlier attempt
		return id, nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
