package booking

var messages = map[Locale]map[State]string{
	LocaleNL: {
		StateLoading:    "Laden...",
		StateProcessing: "Uw afspraak wordt verwerkt...",
		StateConfirmed:  "Uw afspraak is bevestigd!",
		StateDegraded:   "We hebben uw betaling ontvangen. De bevestiging volgt per e-mail.",
		StateFailed:     "Er is iets misgegaan bij het ophalen van uw boeking.",
	},
	LocaleEN: {
		StateLoading:    "Loading...",
		StateProcessing: "Processing your appointment...",
		StateConfirmed:  "Your appointment is confirmed!",
		StateDegraded:   "We received your payment. Your confirmation will follow by email.",
		StateFailed:     "Something went wrong while retrieving your booking.",
	},
}

// Message returns the localized phase text shown for state.
func Message(locale Locale, state State) string {
	m, ok := messages[locale]
	if !ok {
		m = messages[DefaultLocale]
	}
	return m[state]
}
