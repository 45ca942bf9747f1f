package lib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceTokenRoundTrip(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := SignServiceToken(secret, "booking-success", time.Now())
	require.NoError(t, err)

	claims, err := ParseServiceToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "booking-success", claims.Subject)

	_, err = ParseServiceToken([]byte("other"), tok)
	assert.ErrorIs(t, err, ErrInvalidServiceToken)
}

func TestServiceTokenExpired(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := SignServiceToken(secret, "booking-success", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = ParseServiceToken(secret, tok)
	assert.ErrorIs(t, err, ErrInvalidServiceToken)

	_, err = SignServiceToken(nil, "x", time.Now())
	assert.Error(t, err)
}
