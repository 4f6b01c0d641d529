package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cadenceapp/cadence-server/internal/service"
)

func (s *Server) registerSongRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSongs",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs",
		Summary:     "List songs",
		Description: "Lists the catalog by ID, or by relevance when q is given",
		Tags:        []string{"Songs"},
	}, s.handleListSongs)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSong",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs/{id}",
		Summary:     "Get song",
		Description: "Returns a song. Signed-in callers also get the IDs of their playlists containing it.",
		Tags:        []string{"Songs"},
	}, s.handleGetSong)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createSong",
		Method:        http.MethodPost,
		Path:          "/api/v1/songs",
		Summary:       "Create song",
		Description:   "Adds a song to the catalog (admin only)",
		Tags:          []string{"Songs"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"cookie": {}}, {"bearer": {}}},
	}, s.handleCreateSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSong",
		Method:      http.MethodPatch,
		Path:        "/api/v1/songs/{id}",
		Summary:     "Update song",
		Description: "Updates the given fields of a song (admin only)",
		Tags:        []string{"Songs"},
		Security:    []map[string][]string{{"cookie": {}}, {"bearer": {}}},
	}, s.handleUpdateSong)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSong",
		Method:        http.MethodDelete,
		Path:          "/api/v1/songs/{id}",
		Summary:       "Delete song",
		Description:   "Removes a song from the catalog and from every playlist (admin only)",
		Tags:          []string{"Songs"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"cookie": {}}, {"bearer": {}}},
	}, s.handleDeleteSong)
}

// === DTOs ===

// ListSongsInput contains parameters for listing songs.
type ListSongsInput struct {
	Query       string `query:"q" maxLength:"200" doc:"Full-text search over title and artist"`
	Artist      string `query:"artist" maxLength:"200" doc:"Only songs by this artist (case-insensitive exact match)"`
	MinDuration int    `query:"min_duration" minimum:"0" doc:"Minimum duration in seconds"`
	MaxDuration int    `query:"max_duration" minimum:"0" doc:"Maximum duration in seconds"`
	Sort        string `query:"sort" enum:"relevance,title,artist,duration,recent" doc:"Sort field for search results"`
	Order       string `query:"order" enum:"asc,desc" doc:"Sort direction"`
	Facets      bool   `query:"facets" doc:"Include per-artist counts"`
	Cursor      string `query:"cursor" doc:"Pagination cursor from a previous page"`
	Limit       int    `query:"limit" minimum:"0" maximum:"1000" doc:"Items per page (default 100)"`
}

// SongListOutput wraps a page of songs for Huma.
type SongListOutput struct {
	Body SongListResponse
}

// SongIDInput identifies a song by path.
type SongIDInput struct {
	ID int64 `path:"id" doc:"Song ID"`
}

// SongOutput wraps a song response for Huma.
type SongOutput struct {
	Body SongResponse
}

// CreateSongRequest is the request body for creating a song.
type CreateSongRequest struct {
	Title    string `json:"title" doc:"Title"`
	Artist   string `json:"artist" doc:"Artist"`
	Duration int    `json:"duration" minimum:"0" doc:"Duration in seconds"`
}

// CreateSongInput wraps the create request for Huma.
type CreateSongInput struct {
	Body CreateSongRequest
}

// UpdateSongRequest is the request body for updating a song.
type UpdateSongRequest struct {
	Title    *string `json:"title,omitempty" doc:"Title"`
	Artist   *string `json:"artist,omitempty" doc:"Artist"`
	Duration *int    `json:"duration,omitempty" doc:"Duration in seconds"`
}

// UpdateSongInput wraps the update request for Huma.
type UpdateSongInput struct {
	ID   int64 `path:"id" doc:"Song ID"`
	Body UpdateSongRequest
}

// === Handlers ===

func (s *Server) handleListSongs(ctx context.Context, input *ListSongsInput) (*SongListOutput, error) {
	page, err := s.services.Song.ListSongs(ctx, service.ListSongsParams{
		Query:         input.Query,
		Artist:        input.Artist,
		MinDuration:   input.MinDuration,
		MaxDuration:   input.MaxDuration,
		SortBy:        input.Sort,
		SortOrder:     input.Order,
		IncludeFacets: input.Facets,
		Cursor:        input.Cursor,
		Limit:         input.Limit,
	})
	if err != nil {
		return nil, err
	}

	resp := SongListResponse{
		Songs:      mapSongs(page.Items),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for _, f := range page.Artists {
		resp.Artists = append(resp.Artists, ArtistFacet{Artist: f.Value, Count: f.Count})
	}
	return &SongListOutput{Body: resp}, nil
}

func (s *Server) handleGetSong(ctx context.Context, input *SongIDInput) (*SongOutput, error) {
	userID, identified := OptionalUserID(ctx)

	detail, err := s.services.Song.GetSongDetail(ctx, input.ID, userID, identified)
	if err != nil {
		return nil, err
	}
	return &SongOutput{Body: mapSongDetail(detail)}, nil
}

func (s *Server) handleCreateSong(ctx context.Context, input *CreateSongInput) (*SongOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	song, err := s.services.Song.CreateSong(ctx, service.CreateSongRequest{
		Title:    input.Body.Title,
		Artist:   input.Body.Artist,
		Duration: input.Body.Duration,
	})
	if err != nil {
		return nil, err
	}
	return &SongOutput{Body: mapSong(song)}, nil
}

func (s *Server) handleUpdateSong(ctx context.Context, input *UpdateSongInput) (*SongOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	song, err := s.services.Song.UpdateSong(ctx, input.ID, service.UpdateSongRequest{
		Title:    input.Body.Title,
		Artist:   input.Body.Artist,
		Duration: input.Body.Duration,
	})
	if err != nil {
		return nil, err
	}
	return &SongOutput{Body: mapSong(song)}, nil
}

func (s *Server) handleDeleteSong(ctx context.Context, input *SongIDInput) (*struct{}, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Song.DeleteSong(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
