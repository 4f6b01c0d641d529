package service

import (
	"context"
	"log/slog"

	"github.com/cadenceapp/cadence-server/internal/domain"
	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/normalize"
	"github.com/cadenceapp/cadence-server/internal/store"
	"github.com/cadenceapp/cadence-server/internal/validation"
)

// PlaylistOptions configures PlaylistService.
type PlaylistOptions struct {
	// ConcealForeign reports other users' playlists as not found instead of
	// forbidden, so callers cannot probe which IDs exist.
	ConcealForeign bool
}

// PlaylistService orchestrates playlist operations with ownership enforcement.
type PlaylistService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
	opts      PlaylistOptions
}

// NewPlaylistService creates a new playlist service.
func NewPlaylistService(store store.Store, validator *validation.Validator, logger *slog.Logger, opts PlaylistOptions) *PlaylistService {
	return &PlaylistService{
		store:     store,
		validator: validator,
		logger:    logger,
		opts:      opts,
	}
}

// CreatePlaylistRequest contains new playlist data.
type CreatePlaylistRequest struct {
	Name        string  `json:"name" validate:"notblank,max=100"`
	Description string  `json:"description,omitempty" validate:"max=1000"`
	SongIDs     []int64 `json:"song_ids,omitempty" validate:"max=1000,dive,gt=0"`
}

// UpdatePlaylistRequest carries a partial playlist update.
type UpdatePlaylistRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=1000"`
}

// CreatePlaylist creates a playlist owned by ownerID.
func (s *PlaylistService) CreatePlaylist(ctx context.Context, ownerID int64, req CreatePlaylistRequest) (*domain.PlaylistDetail, error) {
	req.Name = normalize.Text(req.Name)
	req.Description = normalize.Text(req.Description)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	playlist := &domain.Playlist{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
	}
	for _, songID := range req.SongIDs {
		playlist.AddSong(songID)
	}

	if err := s.store.CreatePlaylist(ctx, playlist); err != nil {
		return nil, storeError(err, "create playlist", "song not found")
	}

	s.logger.Info("playlist created",
		"playlist_id", playlist.ID,
		"owner_id", ownerID,
		"name", playlist.Name,
	)

	return s.detail(ctx, playlist.ID)
}

// ListPlaylists returns the playlists owned by ownerID.
func (s *PlaylistService) ListPlaylists(ctx context.Context, ownerID int64) ([]*domain.Playlist, error) {
	playlists, err := s.store.ListPlaylistsByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, "list playlists", "playlist not found")
	}
	if playlists == nil {
		playlists = []*domain.Playlist{}
	}
	return playlists, nil
}

// GetPlaylist returns a playlist with its owner and songs.
// Requires ownership.
func (s *PlaylistService) GetPlaylist(ctx context.Context, userID, playlistID int64) (*domain.PlaylistDetail, error) {
	if _, err := s.authorize(ctx, userID, playlistID); err != nil {
		return nil, err
	}
	return s.detail(ctx, playlistID)
}

// UpdatePlaylist applies a partial update.
// Requires ownership.
func (s *PlaylistService) UpdatePlaylist(ctx context.Context, userID, playlistID int64, req UpdatePlaylistRequest) (*domain.PlaylistDetail, error) {
	playlist, err := s.authorize(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}

	req.Name = normalize.TextPtr(req.Name)
	req.Description = normalize.TextPtr(req.Description)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	update := domain.PlaylistUpdate{Name: req.Name, Description: req.Description}
	if !update.Empty() {
		update.Apply(playlist)
		if err := s.store.UpdatePlaylist(ctx, playlist); err != nil {
			return nil, storeError(err, "update playlist", "playlist not found")
		}
		s.logger.Info("playlist updated", "playlist_id", playlistID, "user_id", userID)
	}

	return s.detail(ctx, playlistID)
}

// DeletePlaylist deletes a playlist and its song associations.
// Requires ownership.
func (s *PlaylistService) DeletePlaylist(ctx context.Context, userID, playlistID int64) error {
	if _, err := s.authorize(ctx, userID, playlistID); err != nil {
		return err
	}

	if err := s.store.DeletePlaylist(ctx, playlistID); err != nil {
		return storeError(err, "delete playlist", "playlist not found")
	}

	s.logger.Info("playlist deleted", "playlist_id", playlistID, "user_id", userID)
	return nil
}

// AddSong adds a song to a playlist. Adding a song already present leaves
// exactly one association and reports added as false.
// Requires ownership.
func (s *PlaylistService) AddSong(ctx context.Context, userID, playlistID, songID int64) (detail *domain.PlaylistDetail, added bool, err error) {
	if _, err := s.authorize(ctx, userID, playlistID); err != nil {
		return nil, false, err
	}
	if err := s.requireSong(ctx, songID); err != nil {
		return nil, false, err
	}

	added, err = s.store.AddSongToPlaylist(ctx, playlistID, songID)
	if err != nil {
		return nil, false, storeError(err, "add song to playlist", "song not found")
	}
	if added {
		s.logger.Info("song added to playlist", "playlist_id", playlistID, "song_id", songID)
	}

	detail, err = s.detail(ctx, playlistID)
	if err != nil {
		return nil, false, err
	}
	return detail, added, nil
}

// RemoveSong removes a song from a playlist. Removing a song that is not in
// the playlist is a no-op and reports removed as false.
// Requires ownership.
func (s *PlaylistService) RemoveSong(ctx context.Context, userID, playlistID, songID int64) (detail *domain.PlaylistDetail, removed bool, err error) {
	if _, err := s.authorize(ctx, userID, playlistID); err != nil {
		return nil, false, err
	}
	if err := s.requireSong(ctx, songID); err != nil {
		return nil, false, err
	}

	removed, err = s.store.RemoveSongFromPlaylist(ctx, playlistID, songID)
	if err != nil {
		return nil, false, storeError(err, "remove song from playlist", "playlist not found")
	}
	if removed {
		s.logger.Info("song removed from playlist", "playlist_id", playlistID, "song_id", songID)
	}

	detail, err = s.detail(ctx, playlistID)
	if err != nil {
		return nil, false, err
	}
	return detail, removed, nil
}

// authorize loads the playlist and checks that userID owns it. A missing
// playlist is reported before ownership is considered.
func (s *PlaylistService) authorize(ctx context.Context, userID, playlistID int64) (*domain.Playlist, error) {
	playlist, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, storeError(err, "get playlist", "playlist not found")
	}

	if !playlist.IsOwnedBy(userID) {
		if s.opts.ConcealForeign {
			return nil, domainerrors.NotFound("playlist not found")
		}
		s.logger.Debug("playlist access denied", "playlist_id", playlistID, "user_id", userID)
		return nil, domainerrors.Forbidden("you do not own this playlist")
	}

	return playlist, nil
}

func (s *PlaylistService) requireSong(ctx context.Context, songID int64) error {
	if _, err := s.store.GetSong(ctx, songID); err != nil {
		return storeError(err, "get song", "song not found")
	}
	return nil
}

func (s *PlaylistService) detail(ctx context.Context, playlistID int64) (*domain.PlaylistDetail, error) {
	detail, err := s.store.GetPlaylistDetail(ctx, playlistID)
	if err != nil {
		return nil, storeError(err, "get playlist detail", "playlist not found")
	}
	return detail, nil
}
