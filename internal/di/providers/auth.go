package providers

import (
	"github.com/samber/do/v2"

	"github.com/icgdb/icgdb-server/internal/auth"
	"github.com/icgdb/icgdb-server/internal/config"
	"github.com/icgdb/icgdb-server/internal/logger"
)

// AuthKey wraps the authentication key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the PASETO key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.KeyPath())
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"path", cfg.Data.KeyPath(),
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.AccessTokenDuration)
}

// GoogleHandle holds the OAuth provider, or nil when login is not configured.
type GoogleHandle struct {
	Provider *auth.GoogleProvider
}

// ProvideGoogle provides the Google OAuth provider.
func ProvideGoogle(i do.Injector) (*GoogleHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Google.Enabled() {
		log.Warn("Google login disabled: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are not set")
		return &GoogleHandle{}, nil
	}

	log.Info("Google login enabled", "redirect_url", cfg.Google.RedirectURL)
	return &GoogleHandle{Provider: auth.NewGoogleProvider(auth.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})}, nil
}
