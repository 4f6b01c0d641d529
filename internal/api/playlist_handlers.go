package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cadenceapp/cadence-server/internal/service"
)

// Playlist membership actions recorded in metrics.
const (
	playlistActionAdd    = "add"
	playlistActionRemove = "remove"
)

func (s *Server) registerPlaylistRoutes() {
	security := []map[string][]string{{"cookie": {}}, {"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "listPlaylists",
		Method:      http.MethodGet,
		Path:        "/api/v1/playlists",
		Summary:     "List playlists",
		Description: "Lists the signed-in user's playlists",
		Tags:        []string{"Playlists"},
		Security:    security,
	}, s.handleListPlaylists)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPlaylist",
		Method:        http.MethodPost,
		Path:          "/api/v1/playlists",
		Summary:       "Create playlist",
		Description:   "Creates a playlist owned by the signed-in user, optionally with initial songs",
		Tags:          []string{"Playlists"},
		DefaultStatus: http.StatusCreated,
		Security:      security,
	}, s.handleCreatePlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlaylist",
		Method:      http.MethodGet,
		Path:        "/api/v1/playlists/{id}",
		Summary:     "Get playlist",
		Description: "Returns a playlist with its owner and songs (owner only)",
		Tags:        []string{"Playlists"},
		Security:    security,
	}, s.handleGetPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePlaylist",
		Method:      http.MethodPatch,
		Path:        "/api/v1/playlists/{id}",
		Summary:     "Update playlist",
		Description: "Updates a playlist's name or description (owner only)",
		Tags:        []string{"Playlists"},
		Security:    security,
	}, s.handleUpdatePlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePlaylist",
		Method:        http.MethodDelete,
		Path:          "/api/v1/playlists/{id}",
		Summary:       "Delete playlist",
		Description:   "Deletes a playlist (owner only)",
		Tags:          []string{"Playlists"},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
	}, s.handleDeletePlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "addSongToPlaylist",
		Method:      http.MethodPost,
		Path:        "/api/v1/playlists/{id}/songs/{song_id}",
		Summary:     "Add song to playlist",
		Description: "Adds a song to a playlist (owner only). Adding a song already present changes nothing.",
		Tags:        []string{"Playlists"},
		Security:    security,
	}, s.handleAddSongToPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeSongFromPlaylist",
		Method:      http.MethodDelete,
		Path:        "/api/v1/playlists/{id}/songs/{song_id}",
		Summary:     "Remove song from playlist",
		Description: "Removes a song from a playlist (owner only)",
		Tags:        []string{"Playlists"},
		Security:    security,
	}, s.handleRemoveSongFromPlaylist)
}

// === DTOs ===

// PlaylistListResponse lists the caller's playlists.
type PlaylistListResponse struct {
	Playlists []PlaylistSummary `json:"playlists" doc:"The caller's playlists"`
}

// ListPlaylistsOutput wraps the caller's playlists for Huma.
type ListPlaylistsOutput struct {
	Body PlaylistListResponse
}

// CreatePlaylistRequest is the request body for creating a playlist.
type CreatePlaylistRequest struct {
	Name        string  `json:"name" doc:"Name"`
	Description string  `json:"description,omitempty" doc:"Description"`
	SongIDs     []int64 `json:"song_ids,omitempty" doc:"Initial songs"`
}

// CreatePlaylistInput wraps the create request for Huma.
type CreatePlaylistInput struct {
	Body CreatePlaylistRequest
}

// UpdatePlaylistRequest is the request body for updating a playlist.
type UpdatePlaylistRequest struct {
	Name        *string `json:"name,omitempty" doc:"Name"`
	Description *string `json:"description,omitempty" doc:"Description"`
}

// UpdatePlaylistInput wraps the update request for Huma.
type UpdatePlaylistInput struct {
	ID   int64 `path:"id" doc:"Playlist ID"`
	Body UpdatePlaylistRequest
}

// PlaylistIDInput identifies a playlist by path.
type PlaylistIDInput struct {
	ID int64 `path:"id" doc:"Playlist ID"`
}

// PlaylistSongInput identifies a playlist and a song by path.
type PlaylistSongInput struct {
	ID     int64 `path:"id" doc:"Playlist ID"`
	SongID int64 `path:"song_id" doc:"Song ID"`
}

// PlaylistOutput wraps a playlist response for Huma.
type PlaylistOutput struct {
	Body PlaylistResponse
}

// === Handlers ===

func (s *Server) handleListPlaylists(ctx context.Context, _ *struct{}) (*ListPlaylistsOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	playlists, err := s.services.Playlist.ListPlaylists(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &ListPlaylistsOutput{Body: PlaylistListResponse{Playlists: mapPlaylistSummaries(playlists)}}, nil
}

func (s *Server) handleCreatePlaylist(ctx context.Context, input *CreatePlaylistInput) (*PlaylistOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := s.services.Playlist.CreatePlaylist(ctx, user.ID, service.CreatePlaylistRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		SongIDs:     input.Body.SongIDs,
	})
	if err != nil {
		return nil, err
	}
	return &PlaylistOutput{Body: mapPlaylist(playlist)}, nil
}

func (s *Server) handleGetPlaylist(ctx context.Context, input *PlaylistIDInput) (*PlaylistOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := s.services.Playlist.GetPlaylist(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &PlaylistOutput{Body: mapPlaylist(playlist)}, nil
}

func (s *Server) handleUpdatePlaylist(ctx context.Context, input *UpdatePlaylistInput) (*PlaylistOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := s.services.Playlist.UpdatePlaylist(ctx, user.ID, input.ID, service.UpdatePlaylistRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}
	return &PlaylistOutput{Body: mapPlaylist(playlist)}, nil
}

func (s *Server) handleDeletePlaylist(ctx context.Context, input *PlaylistIDInput) (*struct{}, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Playlist.DeletePlaylist(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleAddSongToPlaylist(ctx context.Context, input *PlaylistSongInput) (*PlaylistOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	playlist, added, err := s.services.Playlist.AddSong(ctx, user.ID, input.ID, input.SongID)
	if err != nil {
		return nil, err
	}

	if added && s.metrics != nil {
		s.metrics.RecordPlaylistChange(playlistActionAdd)
	}
	return &PlaylistOutput{Body: mapPlaylist(playlist)}, nil
}

func (s *Server) handleRemoveSongFromPlaylist(ctx context.Context, input *PlaylistSongInput) (*PlaylistOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	playlist, removed, err := s.services.Playlist.RemoveSong(ctx, user.ID, input.ID, input.SongID)
	if err != nil {
		return nil, err
	}

	if removed && s.metrics != nil {
		s.metrics.RecordPlaylistChange(playlistActionRemove)
	}
	return &PlaylistOutput{Body: mapPlaylist(playlist)}, nil
}
