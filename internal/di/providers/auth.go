package providers

import (
	"github.com/samber/do/v2"

	"github.com/cadenceapp/cadence-server/internal/auth"
	"github.com/cadenceapp/cadence-server/internal/config"
	"github.com/cadenceapp/cadence-server/internal/logger"
)

// AuthKey wraps the token key bytes.
type AuthKey []byte

// ProvideAuthKey decodes the configured token key, or loads or generates
// <data>/auth.key when none is configured.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		key    []byte
		err    error
		source = "config"
	)
	if cfg.Auth.TokenKey != "" {
		key, err = auth.DecodeKey(cfg.Auth.TokenKey)
	} else {
		key, err = auth.LoadOrGenerateKey(cfg.Data.BasePath)
		source = "data directory"
	}
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"source", source,
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(auth.TokenConfig{
		Key:             authKey,
		Issuer:          cfg.Auth.Issuer,
		Audience:        cfg.Auth.Audience,
		AccessDuration:  cfg.Auth.AccessTokenDuration,
		RefreshDuration: cfg.Auth.RefreshTokenDuration,
	})
}

// ProvideSessionBinder provides the cookie session binder.
func ProvideSessionBinder(i do.Injector) (*auth.SessionBinder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	tokens := do.MustInvoke[*auth.TokenService](i)

	return auth.NewSessionBinder(tokens, cfg.Server.SecureCookies), nil
}
