package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/cadenceapp/cadence-server/internal/api"
	"github.com/cadenceapp/cadence-server/internal/auth"
	"github.com/cadenceapp/cadence-server/internal/config"
	"github.com/cadenceapp/cadence-server/internal/logger"
	"github.com/cadenceapp/cadence-server/internal/metrics"
	"github.com/cadenceapp/cadence-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	binder := do.MustInvoke[*auth.SessionBinder](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	limiter := do.MustInvoke[*AuthRateLimiterHandle](i)

	services := &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Profile:  do.MustInvoke[*service.ProfileService](i),
		Admin:    do.MustInvoke[*service.AdminService](i),
		Song:     do.MustInvoke[*service.SongService](i),
		Playlist: do.MustInvoke[*service.PlaylistService](i),
	}

	handler := api.NewServer(
		storeHandle.Store,
		indexHandle.SongIndex,
		services,
		binder,
		m,
		limiter.KeyedRateLimiter,
		log.Logger,
		api.Options{
			Name:           cfg.Server.Name,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		},
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
