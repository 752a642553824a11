package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the role claim. The claim
// set is fixed; tokens with extra or missing fields do not round-trip
// into anything the resolver will trust.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}
