package tracking

import (
	"net/url"

	"github.com/tidwall/gjson"
)

const ConsentCookie = "cookie_consent"

// Consent mirrors the choices stored by the cookie banner.
type Consent struct {
	Necessary bool `json:"necessary"`
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}

// ParseConsent reads the banner cookie value. Missing or unreadable values
// mean no consent.
func ParseConsent(raw string) Consent {
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	if !gjson.Valid(raw) {
		return Consent{}
	}
	res := gjson.GetMany(raw, "necessary", "analytics", "marketing")
	return Consent{
		Necessary: res[0].Bool(),
		Analytics: res[1].Bool(),
		Marketing: res[2].Bool(),
	}
}
