package models

import "github.com/golang-jwt/jwt/v5"

// TokenIssuer is the iss claim stamped into every access token and
// required back on verification.
const TokenIssuer = "auth-api"

// AccessClaims is the payload of an access token. The subject is the
// username; the server re-resolves the user row on each request, so the
// token itself carries no role or id.
//
// Defined in models because services, middleware, and ws all need it.
// Keeping it here avoids import cycles between those packages.
type AccessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
