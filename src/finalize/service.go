package finalize

import (
	"clinic/src/booking"
	"clinic/src/lib"
	"clinic/src/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutRetriever interface {
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
}

type CalendarBooker interface {
	// BookAppointment reserves the slot and returns the calendar event id.
	// Booking the same intent twice must not create a second event.
	BookAppointment(ctx context.Context, intent *models.BookingIntent) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, in *lib.SendMailInput) error
}

type Notifier interface {
	Publish(ctx context.Context, eventType, subject, message string) error
}

type ServiceOption func(*Service)

func WithCalendar(c CalendarBooker) ServiceOption {
	return func(s *Service) { s.calendar = c }
}

func WithMailer(m Mailer, from, fromName string) ServiceOption {
	return func(s *Service) {
		s.mailer = m
		s.mailFrom = from
		s.mailFromName = fromName
	}
}

func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// Service is the trusted, idempotent finalize operation: it checks the
// payment with Stripe, confirms the intent and reserves the calendar slot.
type Service struct {
	db       *gorm.DB
	checkout CheckoutRetriever
	calendar CalendarBooker
	mailer   Mailer
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	mailFrom     string
	mailFromName string

	wg sync.WaitGroup
}

func NewService(gdb *gorm.DB, checkout CheckoutRetriever, opts ...ServiceOption) *Service {
	s := &Service{
		db:       gdb,
		checkout: checkout,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ booking.Finalizer = (*Service)(nil)

// FinalizeBooking runs Process in-process. Business-rule failures are
// returned in the result, everything else as an error.
func (s *Service) FinalizeBooking(ctx context.Context, req booking.FinalizeRequest) (*booking.FinalizeResult, error) {
	row, err := s.Process(ctx, req.StripeSessionID)
	if IsLogical(err) {
		return &booking.FinalizeResult{Error: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking.FinalizeResult{Booking: row.ToIntent()}, nil
}

// Process confirms the intent for a checkout session. Calling it again for
// a confirmed intent returns the stored row without side effects.
func (s *Service) Process(ctx context.Context, stripeSessionID string) (*models.BookingIntent, error) {
	var row models.BookingIntent
	err := s.db.WithContext(ctx).
		Where("stripe_session_id = ?", stripeSessionID).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking intent: %w", err)
	}
	if row.Status == booking.StatusConfirmed {
		return &row, nil
	}

	cs, err := s.checkout.GetCheckoutSession(ctx, stripeSessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, ErrPaymentIncomplete
	}
	var paymentIntentID *string
	if cs.PaymentIntent != nil && cs.PaymentIntent.ID != "" {
		id := cs.PaymentIntent.ID
		paymentIntentID = &id
	}

	confirmedNow := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.BookingIntent
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", row.ID).
			First(&locked).
			Error; err != nil {
			return err
		}
		if locked.Status == booking.StatusConfirmed {
			row = locked
			return nil
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":            booking.StatusConfirmed,
			"confirmed_at":      now,
			"payment_intent_id": paymentIntentID,
		}
		if s.calendar != nil {
			eventID, err := s.calendar.BookAppointment(ctx, &locked)
			if err != nil {
				return fmt.Errorf("book calendar slot: %w", err)
			}
			updates["calendar_event_id"] = eventID
			locked.CalendarEventID = &eventID
		}
		if err := tx.Model(&locked).Updates(updates).Error; err != nil {
			return err
		}
		locked.Status = booking.StatusConfirmed
		locked.ConfirmedAt = &now
		locked.PaymentIntentID = paymentIntentID
		row = locked
		confirmedNow = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("confirm booking intent: %w", err)
	}

	if confirmedNow {
		s.logger.Info("booking confirmed", zap.String("id", row.ID.String()), zap.String("session", stripeSessionID))
		s.afterConfirm(row)
	}
	return &row, nil
}

// afterConfirm sends the customer mail and the staff notification. Failures
// are logged only; the booking is already committed.
func (s *Service) afterConfirm(row models.BookingIntent) {
	if s.mailer == nil && s.notifier == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if s.mailer != nil && row.CustomerEmail != "" {
			in, err := ConfirmationMail(&row, s.mailFrom, s.mailFromName)
			if err == nil {
				err = s.mailer.Send(ctx, in)
			}
			if err != nil {
				s.logger.Error("confirmation mail not sent", zap.String("id", row.ID.String()), zap.Error(err))
			}
		}
		if s.notifier != nil {
			msg, _ := json.Marshal(row.ToIntent())
			subject := fmt.Sprintf("New booking %s", booking.BookingNumber(row.ID.String()))
			if err := s.notifier.Publish(ctx, "booking.confirmed", subject, string(msg)); err != nil {
				s.logger.Error("staff notification not sent", zap.String("id", row.ID.String()), zap.Error(err))
			}
		}
	}()
}

// Wait blocks until post-commit work has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// MarkPaid moves a pending intent to paid once Stripe reports the checkout
// as completed. It returns false when nothing changed.
func (s *Service) MarkPaid(ctx context.Context, stripeSessionID, paymentIntentID string) (bool, error) {
	updates := map[string]any{"status": booking.StatusPaid}
	if paymentIntentID != "" {
		updates["payment_intent_id"] = paymentIntentID
	}
	res := s.db.WithContext(ctx).
		Model(&models.BookingIntent{}).
		Where("stripe_session_id = ? AND status = ?", stripeSessionID, booking.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkFailed fails a pending intent whose checkout expired.
func (s *Service) MarkFailed(ctx context.Context, stripeSessionID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.BookingIntent{}).
		Where("stripe_session_id = ? AND status = ?", stripeSessionID, booking.StatusPending).
		Update("status", booking.StatusFailed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpireAbandoned fails pending intents older than ttl.
func (s *Service) ExpireAbandoned(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := s.now().Add(-ttl)
	res := s.db.WithContext(ctx).
		Model(&models.BookingIntent{}).
		Where("status = ? AND created_at < ?", booking.StatusPending, cutoff).
		Update("status", booking.StatusFailed)
	return res.RowsAffected, res.Error
}

// ScheduleSweep registers ExpireAbandoned with the shared scheduler.
func (s *Service) ScheduleSweep(interval, ttl time.Duration) (*string, error) {
	return lib.CreateDurationJob("expire-abandoned-intents", interval, func(ctx context.Context) {
		n, err := s.ExpireAbandoned(ctx, ttl)
		if err != nil {
			s.logger.Error("abandoned intent sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			s.logger.Info("expired abandoned intents", zap.Int64("count", n))
		}
	})
}
