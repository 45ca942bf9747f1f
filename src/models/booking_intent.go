package models

import (
	"clinic/src/booking"
	"clinic/src/types"
	"time"

	"github.com/google/uuid"
)

type BookingIntent struct {
	ID              uuid.UUID      `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	StripeSessionID string         `gorm:"uniqueIndex;not null" json:"stripe_session_id"`
	Status          booking.Status `gorm:"type:varchar(16);index;not null;default:pending" json:"status"`
	SelectedDate    time.Time      `gorm:"type:date;not null" json:"selected_date"`
	SelectedTime    string         `gorm:"type:time;not null" json:"selected_time"`
	PriceEuros      float64        `gorm:"type:numeric(10,2);not null" json:"price_euros"`
	ServiceType     string         `gorm:"not null" json:"service_type"`
	CustomerName    string         `json:"customer_name,omitempty"`
	CustomerEmail   string         `json:"customer_email,omitempty"`
	CustomerPhone   string         `json:"customer_phone,omitempty"`
	Locale          string         `gorm:"type:varchar(2);default:nl" json:"locale,omitempty"`
	PaymentIntentID *string        `json:"payment_intent_id,omitempty"`
	CalendarEventID *string        `json:"calendar_event_id,omitempty"`
	ConfirmedAt     *time.Time     `json:"confirmed_at,omitempty"`

	types.Timestamps
}

// ToIntent converts the row into the record the reconciler works with.
func (b *BookingIntent) ToIntent() *booking.BookingIntent {
	date := ""
	if !b.SelectedDate.IsZero() {
		date = b.SelectedDate.Format("2006-01-02")
	}
	return &booking.BookingIntent{
		ID:              b.ID.String(),
		StripeSessionID: b.StripeSessionID,
		Status:          b.Status,
		SelectedDate:    date,
		SelectedTime:    b.SelectedTime,
		PriceEuros:      b.PriceEuros,
		ServiceType:     b.ServiceType,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		Locale:          b.Locale,
	}
}
