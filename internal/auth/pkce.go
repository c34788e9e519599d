package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/oauth2"
)

// NewCodeVerifier returns a fresh PKCE code verifier.
func NewCodeVerifier() string {
	return oauth2.GenerateVerifier()
}

// CodeChallenge is the S256 challenge for verifier, as sent by
// oauth2.S256ChallengeOption.
func CodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
