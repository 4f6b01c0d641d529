package api

import (
	"github.com/cadenceapp/cadence-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth     *service.AuthService
	Profile  *service.ProfileService
	Admin    *service.AdminService
	Song     *service.SongService
	Playlist *service.PlaylistService
}

// IndexStatus reports on the song search index for health checks.
type IndexStatus interface {
	DocumentCount() (uint64, error)
}
