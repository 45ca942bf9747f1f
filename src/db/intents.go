package db

import (
	"clinic/src/booking"
	"clinic/src/models"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IntentReader is the public read path for booking intents. Like the
// anonymous row policy on the table it only exposes rows created within the
// read window; anything else reads as absent.
type IntentReader struct {
	db     *gorm.DB
	window time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewIntentReader(gdb *gorm.DB, window time.Duration, logger *zap.Logger) *IntentReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentReader{db: gdb, window: window, now: time.Now, logger: logger}
}

func (r *IntentReader) ReadBookingIntent(ctx context.Context, stripeSessionID string) (*booking.BookingIntent, error) {
	var row models.BookingIntent
	q := r.db.WithContext(ctx).
		Model(&models.BookingIntent{}).
		Where("stripe_session_id = ?", stripeSessionID)
	if r.window > 0 {
		q = q.Where("created_at >= ?", r.now().Add(-r.window))
	}
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Debug("booking intent read denied", zap.String("session", stripeSessionID), zap.Error(err))
		return nil, nil
	}
	return row.ToIntent(), nil
}
