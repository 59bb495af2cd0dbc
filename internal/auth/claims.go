package auth

import "time"

// AccessClaims are the claims carried inside an access token.
// v4.local tokens are encrypted, so these are opaque to clients.
type AccessClaims struct {
	UserID int64 `json:"user_id"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
