package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConsent(t *testing.T) {
	c := ParseConsent(`{"necessary":true,"analytics":true,"marketing":true}`)
	assert.True(t, c.Marketing)
	assert.True(t, c.Analytics)

	c = ParseConsent("%7B%22necessary%22%3Atrue%2C%22marketing%22%3Afalse%7D")
	assert.True(t, c.Necessary)
	assert.False(t, c.Marketing)

	assert.Equal(t, Consent{}, ParseConsent(""))
	assert.Equal(t, Consent{}, ParseConsent("accepted"))
}
