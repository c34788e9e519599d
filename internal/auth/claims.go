package auth

import "time"

// AccessClaims are the claims carried by a session token. v4.local tokens
// are encrypted, so the provider token is not visible to the client.
type AccessClaims struct {
	Email string `json:"email"`

	// ProviderToken is the Google access token obtained at login, kept so
	// logout can revoke it.
	ProviderToken string `json:"pvt,omitempty"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
