package lib

import (
	"clinic/src/types"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const ServiceTokenTTL = time.Minute

var ErrInvalidServiceToken = errors.New("invalid service token")

// SignServiceToken issues a short-lived HS256 token for calls between the
// site and the finalize function.
func SignServiceToken(secret []byte, subject string, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("service token secret is not configured")
	}
	claims := types.ServiceClaims{
		Scope: "process-booking",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ServiceTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func ParseServiceToken(secret []byte, raw string) (*types.ServiceClaims, error) {
	claims := &types.ServiceClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidServiceToken, err.Error())
	}
	if !tkn.Valid || claims.Scope != "process-booking" {
		return nil, ErrInvalidServiceToken
	}
	return claims, nil
}
