// Package store defines the persistence interface for the Cadence server.
package store

import (
	"context"

	"github.com/cadenceapp/cadence-server/internal/domain"
)

// Store defines all persistence operations. Implementations return ErrNotFound
// for unknown ids and ErrUsernameTaken / ErrEmailTaken on uniqueness violations.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	SetRefreshTokenHash(ctx context.Context, userID int64, hash string) error
	DeleteUser(ctx context.Context, id int64) error

	// Songs
	CreateSong(ctx context.Context, song *domain.Song) error
	GetSong(ctx context.Context, id int64) (*domain.Song, error)
	GetSongsByIDs(ctx context.Context, ids []int64) ([]*domain.Song, error)
	ListSongs(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Song], error)
	ListAllSongs(ctx context.Context) ([]*domain.Song, error)
	UpdateSong(ctx context.Context, song *domain.Song) error
	DeleteSong(ctx context.Context, id int64) error
	CountSongs(ctx context.Context) (int, error)

	// Playlists
	CreatePlaylist(ctx context.Context, playlist *domain.Playlist) error
	GetPlaylist(ctx context.Context, id int64) (*domain.Playlist, error)
	GetPlaylistDetail(ctx context.Context, id int64) (*domain.PlaylistDetail, error)
	ListPlaylistsByOwner(ctx context.Context, ownerID int64) ([]*domain.Playlist, error)
	UpdatePlaylist(ctx context.Context, playlist *domain.Playlist) error
	DeletePlaylist(ctx context.Context, id int64) error
	AddSongToPlaylist(ctx context.Context, playlistID, songID int64) (bool, error)
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) (bool, error)
	ListOwnerPlaylistIDsWithSong(ctx context.Context, ownerID, songID int64) ([]int64, error)
}
