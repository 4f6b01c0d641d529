package api

import (
	"time"

	"github.com/cadenceapp/cadence-server/internal/domain"
	"github.com/cadenceapp/cadence-server/internal/service"
)

// UserResponse is the public view of a user. Password and token digests are never exposed.
type UserResponse struct {
	ID        int64     `json:"id" doc:"User ID"`
	Username  string    `json:"username" doc:"Username"`
	Email     string    `json:"email" doc:"Email address"`
	Role      string    `json:"role" enum:"ADMIN,USER" doc:"Role"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// OwnerResponse is the owner embedded in a playlist.
type OwnerResponse struct {
	ID       int64  `json:"id" doc:"User ID"`
	Username string `json:"username" doc:"Username"`
	Email    string `json:"email" doc:"Email address"`
	Role     string `json:"role" enum:"ADMIN,USER" doc:"Role"`
}

// SongResponse is a catalog song.
type SongResponse struct {
	ID          int64     `json:"id" doc:"Song ID"`
	Title       string    `json:"title" doc:"Title"`
	Artist      string    `json:"artist" doc:"Artist"`
	Duration    int       `json:"duration" doc:"Duration in seconds"`
	PlaylistIDs []int64   `json:"playlist_ids,omitempty" doc:"The caller's playlists containing this song, for signed-in callers"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// SongListResponse is one page of songs.
type SongListResponse struct {
	Songs      []SongResponse `json:"songs" doc:"Songs on this page"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether more songs follow"`
	Artists    []ArtistFacet  `json:"artists,omitempty" doc:"Matching songs per artist, when facets were requested"`
}

// ArtistFacet is the number of matching songs by one artist.
type ArtistFacet struct {
	Artist string `json:"artist" doc:"Case-folded artist name"`
	Count  int    `json:"count" doc:"Matching songs"`
}

// PlaylistResponse is a playlist with its owner and songs.
type PlaylistResponse struct {
	ID          int64          `json:"id" doc:"Playlist ID"`
	Name        string         `json:"name" doc:"Name"`
	Description string         `json:"description" doc:"Description"`
	Owner       OwnerResponse  `json:"owner" doc:"Owning user"`
	Songs       []SongResponse `json:"songs" doc:"Songs in the playlist"`
	CreatedAt   time.Time      `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time      `json:"updated_at" doc:"Last update time"`
}

// PlaylistSummary is a playlist without materialized songs, used in listings.
type PlaylistSummary struct {
	ID          int64     `json:"id" doc:"Playlist ID"`
	Name        string    `json:"name" doc:"Name"`
	Description string    `json:"description" doc:"Description"`
	OwnerID     int64     `json:"owner_id" doc:"Owning user ID"`
	SongIDs     []int64   `json:"song_ids" doc:"IDs of the songs in the playlist"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func mapUsers(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, mapUser(u))
	}
	return out
}

func mapSong(s *domain.Song) SongResponse {
	return SongResponse{
		ID:        s.ID,
		Title:     s.Title,
		Artist:    s.Artist,
		Duration:  s.Duration,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func mapSongs(songs []*domain.Song) []SongResponse {
	out := make([]SongResponse, 0, len(songs))
	for _, s := range songs {
		out = append(out, mapSong(s))
	}
	return out
}

func mapSongDetail(d *service.SongDetail) SongResponse {
	resp := mapSong(d.Song)
	resp.PlaylistIDs = d.PlaylistIDs
	return resp
}

func mapPlaylist(d *domain.PlaylistDetail) PlaylistResponse {
	resp := PlaylistResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Owner:       OwnerResponse{ID: d.OwnerID},
		Songs:       mapSongs(d.Songs),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Owner != nil {
		resp.Owner = OwnerResponse{
			ID:       d.Owner.ID,
			Username: d.Owner.Username,
			Email:    d.Owner.Email,
			Role:     string(d.Owner.Role),
		}
	}
	return resp
}

func mapPlaylistSummaries(playlists []*domain.Playlist) []PlaylistSummary {
	out := make([]PlaylistSummary, 0, len(playlists))
	for _, p := range playlists {
		songIDs := p.SongIDs
		if songIDs == nil {
			songIDs = []int64{}
		}
		out = append(out, PlaylistSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			OwnerID:     p.OwnerID,
			SongIDs:     songIDs,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return out
}
