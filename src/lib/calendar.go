package lib

import (
	"context"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var calsvc *calendar.Service

// GAPIGetCalendarService builds the Calendar client from a service account
// credentials file. Extra options are appended, tests use them to point the
// client at a local server.
func GAPIGetCalendarService(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*calendar.Service, error) {
	if calsvc != nil && len(opts) == 0 {
		return calsvc, nil
	}
	all := []option.ClientOption{option.WithScopes(calendar.CalendarEventsScope)}
	if credentialsFile != "" {
		all = append(all, option.WithCredentialsFile(credentialsFile))
	}
	all = append(all, opts...)
	srv, err := calendar.NewService(ctx, all...)
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		calsvc = srv
	}
	return srv, nil
}

func GAPIAddEvent(ctx context.Context, s *calendar.Service, calId string, e *calendar.Event) (*calendar.Event, error) {
	return s.Events.Insert(calId, e).Context(ctx).Do()
}
