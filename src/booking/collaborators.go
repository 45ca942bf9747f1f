package booking

import "context"

// IntentReader reads a booking intent by checkout session. A row that does
// not exist or is hidden by the access policy yields (nil, nil).
type IntentReader interface {
	ReadBookingIntent(ctx context.Context, stripeSessionID string) (*BookingIntent, error)
}

type FinalizeRequest struct {
	StripeSessionID string `json:"stripeSessionId" binding:"required"`
}

// FinalizeResult carries either the authoritative booking or a business-rule
// error. Transport failures are returned as a Go error instead.
type FinalizeResult struct {
	Booking *BookingIntent `json:"booking,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type Finalizer interface {
	FinalizeBooking(ctx context.Context, req FinalizeRequest) (*FinalizeResult, error)
}

type TrackOptions struct {
	DedupeKey      string
	OncePerSession bool
	EventID        string
}

// Tracker emits conversion events. The bool reports whether the event was
// actually sent; false with a nil error means consent or dedupe held it back.
type Tracker interface {
	IsTrackingAllowed(ctx context.Context) bool
	TrackStandardEvent(ctx context.Context, name string, payload map[string]any, opts TrackOptions) (bool, error)
	TrackCustomEvent(ctx context.Context, name string, payload map[string]any, opts TrackOptions) (bool, error)
}

// NoopTracker never allows tracking.
type NoopTracker struct{}

func (NoopTracker) IsTrackingAllowed(context.Context) bool { return false }

func (NoopTracker) TrackStandardEvent(context.Context, string, map[string]any, TrackOptions) (bool, error) {
	return false, nil
}

func (NoopTracker) TrackCustomEvent(context.Context, string, map[string]any, TrackOptions) (bool, error) {
	return false, nil
}
