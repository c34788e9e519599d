package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icgdb/icgdb-server/internal/auth"
	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
)

// GoogleAuthenticator is the identity provider used for login.
type GoogleAuthenticator interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*auth.GoogleIdentity, error)
	Revoke(ctx context.Context, token string) error
}

// LoginStart is the first leg of the OAuth flow. The client keeps
// CodeVerifier private and sends it with the callback.
type LoginStart struct {
	URL          string `json:"url"`
	State        string `json:"state"`
	CodeVerifier string `json:"code_verifier"`
}

// Session is the result of a completed login.
type Session struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
	Created     bool         `json:"created"`
}

// AuthService runs Google login and verifies session tokens.
type AuthService struct {
	google GoogleAuthenticator
	tokens *auth.TokenService
	users  *UserService
	logger *slog.Logger
}

// NewAuthService creates an auth service. google may be nil when OAuth is
// not configured; login then reports Unavailable.
func NewAuthService(google GoogleAuthenticator, tokens *auth.TokenService, users *UserService, logger *slog.Logger) *AuthService {
	return &AuthService{
		google: google,
		tokens: tokens,
		users:  users,
		logger: loggerOrDiscard(logger),
	}
}

func (s *AuthService) requireGoogle() error {
	if s.google == nil {
		return domainerrors.Unavailable("Google login is not configured.")
	}
	return nil
}

// Start returns the consent URL, the state the callback must echo and the
// PKCE code verifier both are bound to.
func (s *AuthService) Start() (*LoginStart, error) {
	if err := s.requireGoogle(); err != nil {
		return nil, err
	}
	verifier := auth.NewCodeVerifier()
	state, err := s.tokens.IssueState(verifier)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not start login")
	}
	return &LoginStart{
		URL:          s.google.AuthCodeURL(state, verifier),
		State:        state,
		CodeVerifier: verifier,
	}, nil
}

// Callback completes login: it checks state against the caller's code
// verifier, exchanges code, bootstraps the user and issues a session token.
func (s *AuthService) Callback(ctx context.Context, code, state, verifier string) (*Session, error) {
	if err := s.requireGoogle(); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, domainerrors.Validation("code is required")
	}
	if verifier == "" {
		return nil, domainerrors.Validation("code_verifier is required")
	}
	if err := s.tokens.VerifyState(state, verifier); err != nil {
		return nil, domainerrors.Unauthenticated("Invalid state parameter.")
	}

	identity, err := s.google.Exchange(ctx, code, verifier)
	if errors.Is(err, auth.ErrUnverifiedEmail) {
		return nil, domainerrors.Unauthenticated("Your Google account email is not verified.")
	}
	if err != nil {
		s.logger.Warn("google code exchange failed", "error", err)
		return nil, domainerrors.Unauthenticated("Failed to sign in with Google.")
	}

	user, created, err := s.users.EnsureUser(ctx, identity.Email, identity.Name, identity.Picture)
	if err != nil {
		return nil, err
	}

	token, expires, err := s.tokens.IssueAccessToken(user.Email, identity.AccessToken)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not issue session")
	}

	s.logger.Info("user logged in", "email", user.Email, "created", created)
	return &Session{AccessToken: token, ExpiresAt: expires, User: user, Created: created}, nil
}

// Authenticate verifies a session token.
func (s *AuthService) Authenticate(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthenticated("Invalid or expired session.")
	}
	return claims, nil
}

// Logout revokes the provider token carried by claims. Revocation failures
// are logged only.
func (s *AuthService) Logout(ctx context.Context, claims *auth.AccessClaims) {
	if claims == nil || claims.ProviderToken == "" || s.google == nil {
		return
	}
	if err := s.google.Revoke(ctx, claims.ProviderToken); err != nil {
		s.logger.Warn("failed to revoke google token", "email", claims.Email, "error", err)
		return
	}
	s.logger.Info("user logged out", "email", claims.Email)
}
