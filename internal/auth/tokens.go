package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/icgdb/icgdb-server/internal/id"
)

const (
	tokenIssuer   = "icgdb-server"
	tokenAudience = "icgdb-client"

	// State tokens carry a distinct audience so a session token can never
	// be replayed as an OAuth state and vice versa.
	stateAudience = "icgdb-oauth-state"

	// DefaultStateDuration bounds how long a user may sit on the consent screen.
	DefaultStateDuration = 10 * time.Minute
)

// ErrInvalidToken is returned for any token that fails decryption or rule checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies PASETO v4.local tokens.
type TokenService struct {
	key                 paseto.V4SymmetricKey
	accessTokenDuration time.Duration
	stateDuration       time.Duration
	now                 func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, accessDuration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	if accessDuration <= 0 {
		return nil, fmt.Errorf("access token duration must be positive, got %s", accessDuration)
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		key:                 symmetricKey,
		accessTokenDuration: accessDuration,
		stateDuration:       DefaultStateDuration,
		now:                 time.Now,
	}, nil
}

// AccessTokenDuration returns the configured session lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessTokenDuration
}

// IssueAccessToken creates a session token for email. providerToken may be
// empty.
func (s *TokenService) IssueAccessToken(email, providerToken string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.accessTokenDuration)

	token, err := s.newToken(tokenAudience, email, now, expires)
	if err != nil {
		return "", time.Time{}, err
	}
	//nolint:errcheck // Set only fails on unmarshalable values
	_ = token.Set("email", email)
	if providerToken != "" {
		//nolint:errcheck // Set only fails on unmarshalable values
		_ = token.Set("pvt", providerToken)
	}

	return token.V4Encrypt(s.key, nil), expires, nil
}

// VerifyAccessToken decrypts a session token and checks its lifetime.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := s.parse(tokenAudience, tokenString)
	if err != nil {
		return nil, err
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	return &claims, nil
}

// IssueState creates an anti-forgery state value for the OAuth redirect,
// bound to the PKCE code verifier the client keeps for the callback.
func (s *TokenService) IssueState(verifier string) (string, error) {
	if verifier == "" {
		return "", errors.New("code verifier cannot be empty")
	}
	now := s.now()
	token, err := s.newToken(stateAudience, "oauth", now, now.Add(s.stateDuration))
	if err != nil {
		return "", err
	}
	//nolint:errcheck // Set only fails on unmarshalable values
	_ = token.Set("pkce", CodeChallenge(verifier))
	return token.V4Encrypt(s.key, nil), nil
}

// VerifyState checks a state value returned by the OAuth callback and that
// verifier is the one it was issued for.
func (s *TokenService) VerifyState(state, verifier string) error {
	token, err := s.parse(stateAudience, state)
	if err != nil {
		return err
	}
	want, err := token.GetString("pkce")
	if err != nil {
		return fmt.Errorf("%w: state carries no code challenge", ErrInvalidToken)
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(CodeChallenge(verifier))) != 1 {
		return fmt.Errorf("%w: code verifier does not match state", ErrInvalidToken)
	}
	return nil
}

func (s *TokenService) newToken(audience, subject string, now, expires time.Time) (*paseto.Token, error) {
	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return nil, fmt.Errorf("generate token ID: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(subject)
	token.SetAudience(audience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)
	token.SetJti(tokenID)
	return &token, nil
}

func (s *TokenService) parse(audience, tokenString string) (*paseto.Token, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(audience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return token, nil
}
