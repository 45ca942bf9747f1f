package booking

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// NeedsFinalize reports whether a row in this status still has to go through
// the trusted finalize call.
func (s Status) NeedsFinalize() bool {
	return s == StatusPending || s == StatusPaid
}

// Qualifies reports whether a booking in this status counts as a conversion.
func (s Status) Qualifies() bool {
	return s == StatusConfirmed || s == StatusPaid
}

// BookingIntent is the closed-shape record the reconciler works with. Rows
// coming from outside the process go through DecodeIntent first.
type BookingIntent struct {
	ID              string  `json:"id" validate:"required"`
	StripeSessionID string  `json:"stripe_session_id"`
	Status          Status  `json:"status" validate:"required"`
	SelectedDate    string  `json:"selected_date"`
	SelectedTime    string  `json:"selected_time"`
	PriceEuros      float64 `json:"price_euros" validate:"gte=0"`
	ServiceType     string  `json:"service_type"`
	CustomerName    string  `json:"customer_name,omitempty"`
	CustomerEmail   string  `json:"customer_email,omitempty" validate:"omitempty,email"`
	Locale          string  `json:"locale,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeIntent turns an untyped upstream payload into a BookingIntent. Any
// shape or validation problem is reported as ErrMalformedPayload.
func DecodeIntent(raw []byte) (*BookingIntent, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: empty booking", ErrMalformedPayload)
	}
	var intent BookingIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}
	if err := validate.Struct(&intent); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}
	return &intent, nil
}
