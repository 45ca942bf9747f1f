package booking

import "github.com/goodsign/monday"

type Locale string

const (
	LocaleNL Locale = "nl"
	LocaleEN Locale = "en"

	DefaultLocale = LocaleNL
)

func ParseLocale(s string) (Locale, bool) {
	switch Locale(s) {
	case LocaleNL, LocaleEN:
		return Locale(s), true
	}
	return "", false
}

// HomePath is the locale home route used as the redirect target.
func (l Locale) HomePath() string {
	if _, ok := ParseLocale(string(l)); !ok {
		return "/" + string(DefaultLocale)
	}
	return "/" + string(l)
}

func (l Locale) mondayLocale() monday.Locale {
	if l == LocaleEN {
		return monday.LocaleEnGB
	}
	return monday.LocaleNlNL
}
