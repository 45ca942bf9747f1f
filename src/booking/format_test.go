package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingNumber(t *testing.T) {
	assert.Equal(t, "F6789A", BookingNumber("a1b2c3d4e5f6789a"))
	assert.Equal(t, "5F6789", BookingNumber("a1b2c3d4e5f6789"))
	assert.Equal(t, "ABC", BookingNumber("abc"))
	assert.Equal(t, BookingNumber("0f8fad5b-d9cb-469f-a165-70867728950e"), BookingNumber("0f8fad5b-d9cb-469f-a165-70867728950e"))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "14:30", FormatTime("14:30:00"))
	assert.Equal(t, "09:00", FormatTime("09:00"))
	assert.Equal(t, "9:00", FormatTime("9:00"))
	assert.Equal(t, "", FormatTime(""))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "5 March 2025", FormatDate("2025-03-05", LocaleEN))
	assert.Equal(t, "5 maart 2025", FormatDate("2025-03-05", LocaleNL))
	assert.Equal(t, "next tuesday", FormatDate("next tuesday", LocaleEN))
}

func TestTruncateSessionID(t *testing.T) {
	assert.Equal(t, "cs_short", TruncateSessionID("cs_short"))
	assert.Equal(t, "cs_live_a1b2c3d4e5f6...", TruncateSessionID("cs_live_a1b2c3d4e5f6g7h8"))
}

func TestParseLocale(t *testing.T) {
	l, ok := ParseLocale("en")
	assert.True(t, ok)
	assert.Equal(t, LocaleEN, l)
	_, ok = ParseLocale("de")
	assert.False(t, ok)
	assert.Equal(t, "/nl", Locale("de").HomePath())
}
