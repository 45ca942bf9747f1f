package types

import "github.com/golang-jwt/jwt/v4"

// ServiceClaims authenticate calls between the site and the finalize function.
type ServiceClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}
