package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	googleRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

// ErrUnverifiedEmail is returned when the provider has not verified the
// account's email address.
var ErrUnverifiedEmail = errors.New("email address not verified by provider")

// GoogleIdentity is what the provider tells us about the signed-in user.
type GoogleIdentity struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`

	// AccessToken is the provider token, kept only for revocation.
	AccessToken string `json:"-"`
}

// GoogleConfig configures a GoogleProvider. The URL fields default to
// Google's production endpoints.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	Endpoint    oauth2.Endpoint
	UserInfoURL string
	RevokeURL   string
	HTTPClient  *http.Client
}

// GoogleProvider runs the authorization-code flow against Google.
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
	revokeURL   string
	client      *http.Client
}

// NewGoogleProvider creates a provider from cfg.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = endpoints.Google
	}
	p := &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: cfg.UserInfoURL,
		revokeURL:   cfg.RevokeURL,
		client:      cfg.HTTPClient,
	}
	if p.userInfoURL == "" {
		p.userInfoURL = googleUserInfoURL
	}
	if p.revokeURL == "" {
		p.revokeURL = googleRevokeURL
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 10 * time.Second}
	}
	return p
}

// AuthCodeURL returns the consent-screen URL carrying state and the PKCE
// challenge for verifier.
func (p *GoogleProvider) AuthCodeURL(state, verifier string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("prompt", "select_account"),
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades an authorization code for the user's identity. verifier
// must be the one whose challenge was sent with the consent URL.
func (p *GoogleProvider) Exchange(ctx context.Context, code, verifier string) (*GoogleIdentity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	tok, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := p.oauth.Client(ctx, tok).Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // best-effort detail
		return nil, fmt.Errorf("fetch userinfo: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var ident GoogleIdentity
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ident); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if ident.Email == "" {
		return nil, errors.New("userinfo carried no email")
	}
	if !ident.EmailVerified {
		return nil, ErrUnverifiedEmail
	}
	ident.AccessToken = tok.AccessToken
	return &ident, nil
}

// Revoke invalidates a provider token.
func (p *GoogleProvider) Revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke token: status %d", resp.StatusCode)
	}
	return nil
}
