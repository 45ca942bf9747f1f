package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	EventPurchase         = "Purchase"
	EventBookingCompleted = "Booking_Completed"

	currency = "EUR"
)

// Observer is told about every state transition, in order.
type Observer func(from, to State)

type Option func(*Reconciler)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

func WithObserver(o Observer) Option {
	return func(r *Reconciler) {
		r.observer = o
	}
}

// Reconciler drives one booking-success page view. It reads the local intent,
// calls the trusted finalize operation when the row is missing or not final
// yet, and emits the conversion pair at most once.
//
// A Reconciler is one-shot per session id: once a terminal state is reached,
// further Run calls for the same session return the same view without I/O.
type Reconciler struct {
	reader    IntentReader
	finalizer Finalizer
	tracker   Tracker
	logger    *zap.Logger
	now       func() time.Time
	observer  Observer

	mu        sync.Mutex
	state     State
	sessionID string
	view      *View
	tracked   bool
}

func NewReconciler(reader IntentReader, finalizer Finalizer, tracker Tracker, opts ...Option) *Reconciler {
	if tracker == nil {
		tracker = NoopTracker{}
	}
	r := &Reconciler{
		reader:    reader,
		finalizer: finalizer,
		tracker:   tracker,
		logger:    zap.NewNop(),
		now:       time.Now,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Run reconciles the booking for sessionID. ctx is the lifetime of the page
// view; results arriving after it is done are dropped and ErrCanceled is
// returned.
func (r *Reconciler) Run(ctx context.Context, sessionID *string, locale Locale) (*View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ""
	if sessionID != nil {
		key = strings.TrimSpace(*sessionID)
	}
	if r.view != nil && r.state.Terminal() {
		if key == r.sessionID {
			return r.view, nil
		}
		// new dependency key: start over, the emission guard stays set
		r.view = nil
		r.transition(StateIdle)
	}
	r.sessionID = key

	if key == "" {
		r.transition(StateRedirect)
		r.view = &View{State: StateRedirect, Locale: locale, Redirect: locale.HomePath()}
		return r.view, nil
	}
	if ctx.Err() != nil {
		return nil, ErrCanceled
	}

	r.transition(StateLoading)
	local, err := r.reader.ReadBookingIntent(ctx, key)
	if ctx.Err() != nil {
		return nil, ErrCanceled
	}
	if err != nil {
		r.logger.Debug("local booking read failed", zap.String("session", key), zap.Error(err))
		local = nil
	}

	if local != nil && !local.Status.NeedsFinalize() {
		if local.Status == StatusFailed {
			return r.finish(ctx, key, locale, StateFailed, local, "", "booking status: failed"), nil
		}
		return r.finish(ctx, key, locale, StateConfirmed, local, "", ""), nil
	}

	r.transition(StateProcessing)
	res, err := r.finalizer.FinalizeBooking(ctx, FinalizeRequest{StripeSessionID: key})
	if ctx.Err() != nil {
		return nil, ErrCanceled
	}
	switch {
	case err != nil:
		r.logger.Warn("finalize call failed", zap.String("session", key), zap.Error(err))
		return r.fallback(ctx, key, locale, local, "", err.Error()), nil
	case res == nil:
		return r.fallback(ctx, key, locale, local, "", "finalize returned an empty response"), nil
	case res.Error != "":
		r.logger.Info("finalize reported an error", zap.String("session", key), zap.String("error", res.Error))
		return r.fallback(ctx, key, locale, local, res.Error, res.Error), nil
	case res.Booking != nil:
		b := res.Booking
		if b.StripeSessionID == "" {
			b.StripeSessionID = key
		}
		if b.Status == StatusFailed {
			return r.finish(ctx, key, locale, StateFailed, b, "", "booking status: failed"), nil
		}
		return r.finish(ctx, key, locale, StateConfirmed, b, "", ""), nil
	default:
		return r.fallback(ctx, key, locale, local, "", "finalize returned no booking"), nil
	}
}

func (r *Reconciler) fallback(ctx context.Context, sid string, locale Locale, local *BookingIntent, toast, debug string) *View {
	if local != nil {
		return r.finish(ctx, sid, locale, StateDegraded, local, toast, debug)
	}
	return r.finish(ctx, sid, locale, StateFailed, nil, toast, debug)
}

func (r *Reconciler) finish(ctx context.Context, sid string, locale Locale, state State, b *BookingIntent, toast, debug string) *View {
	r.transition(state)
	v := &View{
		State:   state,
		Locale:  locale,
		Message: Message(locale, state),
		Booking: NewBookingView(b, locale),
		Toast:   toast,
		Debug:   debug,
		Record:  b,
	}
	switch state {
	case StateFailed:
		v.SessionRef = TruncateSessionID(sid)
	case StateConfirmed, StateDegraded:
		v.Tracked = r.track(ctx, sid, b)
	}
	r.view = v
	return v
}

func (r *Reconciler) track(ctx context.Context, sid string, b *BookingIntent) bool {
	if r.tracked || b == nil || !b.Status.Qualifies() {
		return false
	}
	if !r.tracker.IsTrackingAllowed(ctx) {
		return false
	}
	r.tracked = true

	eventID := fmt.Sprintf("%s_%d", sid, r.now().UnixMilli())
	purchase := map[string]any{
		"value":        b.PriceEuros,
		"currency":     currency,
		"content_name": b.ServiceType,
		"content_ids":  []string{slug.Make(b.ServiceType)},
		"content_type": "service",
		"booking_id":   b.ID,
	}
	purchaseSent, err := r.tracker.TrackStandardEvent(ctx, EventPurchase, purchase, TrackOptions{
		DedupeKey:      "purchase_" + sid,
		OncePerSession: true,
		EventID:        eventID,
	})
	if err != nil {
		r.logger.Warn("purchase event not tracked", zap.String("session", sid), zap.Error(err))
	}

	completed := map[string]any{
		"booking_id":       b.ID,
		"booking_number":   BookingNumber(b.ID),
		"service_type":     b.ServiceType,
		"value":            b.PriceEuros,
		"currency":         currency,
		"appointment_date": b.SelectedDate,
		"appointment_time": FormatTime(b.SelectedTime),
	}
	completedSent, err := r.tracker.TrackCustomEvent(ctx, EventBookingCompleted, completed, TrackOptions{
		DedupeKey:      "booking_complete_" + sid,
		OncePerSession: true,
		EventID:        eventID,
	})
	if err != nil {
		r.logger.Warn("booking completed event not tracked", zap.String("session", sid), zap.Error(err))
	}
	return purchaseSent || completedSent
}

func (r *Reconciler) transition(to State) {
	from := r.state
	r.state = to
	if r.observer != nil {
		r.observer(from, to)
	}
}
