package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access token payload issued by the host platform's login bridge.
// The registered ID claim identifies the login session and seeds the form sesskey.
type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionID returns the identifier of the login session carried by the token.
func (c *JWTClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
