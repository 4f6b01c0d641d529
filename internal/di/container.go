// Package di provides dependency injection configuration for the Cadence server.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/cadenceapp/cadence-server/internal/auth"
	"github.com/cadenceapp/cadence-server/internal/config"
	"github.com/cadenceapp/cadence-server/internal/di/providers"
	"github.com/cadenceapp/cadence-server/internal/logger"
	"github.com/cadenceapp/cadence-server/internal/metrics"
	"github.com/cadenceapp/cadence-server/internal/service"
	"github.com/cadenceapp/cadence-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Persistence and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideSessionBinder)
	do.Provide(injector, providers.ProvideAuthRateLimiter)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideAdminService)
	do.Provide(injector, providers.ProvideSongService)
	do.Provide(injector, providers.ProvidePlaylistService)

	// Observability
	do.Provide(injector, providers.ProvideMetrics)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the HTTP server is listening.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*auth.SessionBinder](injector)
	_ = do.MustInvoke[*providers.AuthRateLimiterHandle](injector)

	// Business services
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.AdminService](injector)
	_ = do.MustInvoke[*service.SongService](injector)
	_ = do.MustInvoke[*service.PlaylistService](injector)
	_ = do.MustInvoke[*metrics.Metrics](injector)

	if err := providers.EnsureBootstrapAdmin(injector); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if err := providers.RebuildSearchIndexIfNeeded(injector); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
