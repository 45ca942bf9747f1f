package booking

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
)

const (
	dateLayout      = "2006-01-02"
	longDateLayout  = "2 January 2006"
	sessionRefLimit = 20
)

// BookingNumber is the human-facing reference: the last 6 characters of the
// id, upper-cased.
func BookingNumber(id string) string {
	r := []rune(id)
	if len(r) > 6 {
		r = r[len(r)-6:]
	}
	return strings.ToUpper(string(r))
}

// FormatTime drops the seconds of an HH:mm:ss slot. Anything shorter than
// HH:mm is returned as is.
func FormatTime(s string) string {
	if len(s) < 5 {
		return s
	}
	return s[:5]
}

// FormatDate renders a YYYY-MM-DD date as "d MMMM yyyy" in the given locale.
// Unparseable input is returned unchanged.
func FormatDate(s string, locale Locale) string {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return s
		}
	}
	return monday.Format(t, longDateLayout, locale.mondayLocale())
}

func TruncateSessionID(s string) string {
	if len(s) <= sessionRefLimit {
		return s
	}
	return s[:sessionRefLimit] + "..."
}
