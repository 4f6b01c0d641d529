package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/cadenceapp/cadence-server/internal/auth"
	"github.com/cadenceapp/cadence-server/internal/config"
	"github.com/cadenceapp/cadence-server/internal/logger"
	"github.com/cadenceapp/cadence-server/internal/service"
	"github.com/cadenceapp/cadence-server/internal/validation"
)

// ProvideValidator provides the request validator shared by all services.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, validator, log.Logger)
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideAdminService provides the admin service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(storeHandle.Store, log.Logger), nil
}

// ProvideSongService provides the song catalog service.
func ProvideSongService(i do.Injector) (*service.SongService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSongService(storeHandle.Store, indexHandle.SongIndex, validator, log.Logger), nil
}

// ProvidePlaylistService provides the playlist service.
func ProvidePlaylistService(i do.Injector) (*service.PlaylistService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPlaylistService(storeHandle.Store, validator, log.Logger, service.PlaylistOptions{
		ConcealForeign: cfg.Playlist.ConcealForeign,
	}), nil
}

// EnsureBootstrapAdmin creates the configured admin account on first start.
// A generated password is logged once; it is never stored in plain text.
func EnsureBootstrapAdmin(i do.Injector) error {
	cfg := do.MustInvoke[*config.Config](i)
	authService := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.AdminEmail == "" {
		return nil
	}

	user, generated, err := authService.EnsureAdmin(context.Background(),
		cfg.Auth.AdminUsername,
		cfg.Auth.AdminEmail,
		cfg.Auth.AdminPassword,
	)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	if generated != "" {
		log.Warn("Bootstrap admin created with a generated password, change it after first login",
			"email", user.Email,
			"username", user.Username,
			"initial_password", generated,
		)
	}
	return nil
}
