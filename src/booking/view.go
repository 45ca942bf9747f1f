package booking

type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateProcessing State = "processing"
	StateConfirmed  State = "confirmed"
	StateDegraded   State = "degraded"
	StateFailed     State = "failed"
	StateRedirect   State = "redirect"
)

func (s State) Terminal() bool {
	switch s {
	case StateConfirmed, StateDegraded, StateFailed, StateRedirect:
		return true
	}
	return false
}

type BookingView struct {
	ID            string  `json:"id"`
	BookingNumber string  `json:"booking_number"`
	Status        Status  `json:"status"`
	ServiceType   string  `json:"service_type"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	PriceEuros    float64 `json:"price_euros"`
	CustomerName  string  `json:"customer_name,omitempty"`
	QRCode        string  `json:"qr_code,omitempty"`
}

func NewBookingView(b *BookingIntent, locale Locale) *BookingView {
	if b == nil {
		return nil
	}
	return &BookingView{
		ID:            b.ID,
		BookingNumber: BookingNumber(b.ID),
		Status:        b.Status,
		ServiceType:   b.ServiceType,
		Date:          FormatDate(b.SelectedDate, locale),
		Time:          FormatTime(b.SelectedTime),
		PriceEuros:    b.PriceEuros,
		CustomerName:  b.CustomerName,
	}
}

// View is what the booking-success page renders.
type View struct {
	State      State        `json:"state"`
	Locale     Locale       `json:"locale"`
	Message    string       `json:"message"`
	Booking    *BookingView `json:"booking,omitempty"`
	Toast      string       `json:"toast,omitempty"`
	Debug      string       `json:"debug,omitempty"`
	SessionRef string       `json:"session_ref,omitempty"`
	Redirect   string       `json:"redirect,omitempty"`
	Retry      string       `json:"retry,omitempty"`
	Tracked    bool         `json:"tracked"`

	// Record is the booking the view was rendered from.
	Record *BookingIntent `json:"-"`
}
