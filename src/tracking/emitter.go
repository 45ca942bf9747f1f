package tracking

import (
	"clinic/src/booking"
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Emitter fans conversion events out to a sink, consent-gated and
// deduplicated per browser session.
type Emitter struct {
	sink    Sink
	store   DedupeStore
	pixelID string
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewEmitter(sink Sink, store DedupeStore, pixelID string, ttl time.Duration, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{sink: sink, store: store, pixelID: pixelID, ttl: ttl, logger: logger, now: time.Now}
}

// ForRequest binds the emitter to one browser session and its consent.
func (e *Emitter) ForRequest(session string, consent Consent) *RequestTracker {
	return &RequestTracker{emitter: e, session: session, consent: consent}
}

type RequestTracker struct {
	emitter *Emitter
	session string
	consent Consent
}

var _ booking.Tracker = (*RequestTracker)(nil)

func (t *RequestTracker) IsTrackingAllowed(ctx context.Context) bool {
	return t.consent.Marketing && t.emitter.pixelID != "" && t.session != ""
}

func (t *RequestTracker) TrackStandardEvent(ctx context.Context, name string, payload map[string]any, opts booking.TrackOptions) (bool, error) {
	return t.track(ctx, KindStandard, name, payload, opts)
}

func (t *RequestTracker) TrackCustomEvent(ctx context.Context, name string, payload map[string]any, opts booking.TrackOptions) (bool, error) {
	return t.track(ctx, KindCustom, name, payload, opts)
}

func (t *RequestTracker) track(ctx context.Context, kind Kind, name string, payload map[string]any, opts booking.TrackOptions) (bool, error) {
	if !t.IsTrackingAllowed(ctx) {
		return false, nil
	}
	e := t.emitter
	if opts.OncePerSession && opts.DedupeKey != "" {
		first, err := e.store.Claim(ctx, t.session, opts.DedupeKey, e.ttl)
		if err != nil {
			// unknown dedupe state: drop rather than risk counting twice
			return false, err
		}
		if !first {
			e.logger.Debug("conversion event already sent", zap.String("dedupe_key", opts.DedupeKey))
			return false, nil
		}
	}

	id := opts.EventID
	if id == "" {
		id = uuid.NewString()
	}
	ev := Event{
		EventID:   id,
		EventName: name,
		Kind:      kind,
		PixelID:   e.pixelID,
		Session:   t.session,
		DedupeKey: opts.DedupeKey,
		Payload:   payload,
		EventTime: e.now().UTC(),
	}
	if err := e.sink.Publish(ctx, ev); err != nil {
		return false, err
	}
	e.logger.Info("conversion event sent", zap.String("event", name), zap.String("event_id", id))
	return true, nil
}
