package finalize

import (
	"clinic/src/lib"
	"clinic/src/models"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func testIntent() *models.BookingIntent {
	return &models.BookingIntent{
		ID:              uuid.MustParse(intentID),
		StripeSessionID: "cs_test_1",
		SelectedDate:    time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		SelectedTime:    "14:30:00",
		ServiceType:     "consult",
		CustomerName:    "Jan Jansen",
		CustomerEmail:   "jan@example.com",
	}
}

func newCalendarServer(t *testing.T, status int) (*calendar.Service, *calendar.Event) {
	t.Helper()
	got := &calendar.Event{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/clinic@group.calendar.google.com/events", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusConflict {
			io.WriteString(w, `{"error":{"code":409,"message":"The requested identifier already exists.","errors":[{"reason":"duplicate"}]}}`)
			return
		}
		json.NewEncoder(w).Encode(got)
	}))
	t.Cleanup(srv.Close)

	svc, err := lib.GAPIGetCalendarService(context.Background(), "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return svc, got
}

func TestBookAppointment(t *testing.T) {
	svc, got := newCalendarServer(t, http.StatusOK)
	booker := NewGoogleCalendarBooker(svc, "clinic@group.calendar.google.com", time.UTC, time.Hour)

	id, err := booker.BookAppointment(context.Background(), testIntent())
	require.NoError(t, err)
	assert.Equal(t, "bk0f8fad5bd9cb469fa16570867728950e", id)
	assert.Equal(t, id, got.Id)
	assert.Equal(t, "consult: Jan Jansen", got.Summary)
	assert.Equal(t, "2025-03-14T14:30:00Z", got.Start.DateTime)
	assert.Equal(t, "2025-03-14T15:30:00Z", got.End.DateTime)
	require.Len(t, got.Attendees, 1)
}

func TestBookAppointmentAlreadyBooked(t *testing.T) {
	svc, _ := newCalendarServer(t, http.StatusConflict)
	booker := NewGoogleCalendarBooker(svc, "clinic@group.calendar.google.com", time.UTC, time.Hour)

	id, err := booker.BookAppointment(context.Background(), testIntent())
	require.NoError(t, err)
	assert.Equal(t, "bk0f8fad5bd9cb469fa16570867728950e", id)
}

func TestBookAppointmentRejected(t *testing.T) {
	svc, _ := newCalendarServer(t, http.StatusForbidden)
	booker := NewGoogleCalendarBooker(svc, "clinic@group.calendar.google.com", time.UTC, time.Hour)

	_, err := booker.BookAppointment(context.Background(), testIntent())
	assert.Error(t, err)
}

func TestAppointmentStartRejectsBadTime(t *testing.T) {
	in := testIntent()
	in.SelectedTime = "late"
	_, err := AppointmentStart(in, time.UTC)
	assert.Error(t, err)
}
