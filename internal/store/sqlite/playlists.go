package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cadenceapp/cadence-server/internal/domain"
	"github.com/cadenceapp/cadence-server/internal/store"
)

// playlistColumns must match the scan order in scanPlaylist.
const playlistColumns = `id, created_at, updated_at, user_id, name, description`

func scanPlaylist(scanner interface{ Scan(dest ...any) error }) (*domain.Playlist, error) {
	var (
		p           domain.Playlist
		createdAt   string
		updatedAt   string
		description sql.NullString
	)

	if err := scanner.Scan(&p.ID, &createdAt, &updatedAt, &p.OwnerID, &p.Name, &description); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	p.Description = description.String

	return &p, nil
}

// loadPlaylistSongIDs loads song IDs for a playlist in the order they were added.
// Rowid order is insertion order.
func (s *Store) loadPlaylistSongIDs(ctx context.Context, playlistID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT song_id FROM playlist_songs WHERE playlist_id = ? ORDER BY rowid`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreatePlaylist inserts a playlist and any initial song associations.
// Returns store.ErrNotFound if the owner or one of the songs does not exist.
func (s *Store) CreatePlaylist(ctx context.Context, playlist *domain.Playlist) error {
	now := s.now()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO playlists (created_at, updated_at, user_id, name, description)
		VALUES (?, ?, ?, ?, ?)`,
		formatTime(playlist.CreatedAt),
		formatTime(playlist.UpdatedAt),
		playlist.OwnerID,
		playlist.Name,
		nullString(playlist.Description),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("owner not found")
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	for _, songID := range playlist.SongIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id, added_at) VALUES (?, ?, ?)`,
			id, songID, formatTime(now))
		if err != nil {
			if isForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage(fmt.Sprintf("song %d not found", songID))
			}
			return fmt.Errorf("insert playlist song %d: %w", songID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	playlist.ID = id
	if playlist.SongIDs == nil {
		playlist.SongIDs = []int64{}
	}
	return nil
}

// GetPlaylist retrieves a playlist with its song IDs.
// Returns store.ErrNotFound if the playlist does not exist.
func (s *Store) GetPlaylist(ctx context.Context, id int64) (*domain.Playlist, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = ?`, id)

	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.SongIDs, err = s.loadPlaylistSongIDs(ctx, id); err != nil {
		return nil, fmt.Errorf("load playlist song ids: %w", err)
	}
	return p, nil
}

// GetPlaylistDetail retrieves a playlist with its owner and songs materialized.
func (s *Store) GetPlaylistDetail(ctx context.Context, id int64) (*domain.PlaylistDetail, error) {
	p, err := s.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.GetUser(ctx, p.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load playlist owner: %w", err)
	}

	songs, err := s.querySongs(ctx, `
		SELECT s.id, s.created_at, s.updated_at, s.title, s.artist, s.duration
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = ?
		ORDER BY ps.rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("load playlist songs: %w", err)
	}
	if songs == nil {
		songs = []*domain.Song{}
	}

	return &domain.PlaylistDetail{Playlist: *p, Owner: owner, Songs: songs}, nil
}

// ListPlaylistsByOwner returns the owner's playlists ordered by ID.
func (s *Store) ListPlaylistsByOwner(ctx context.Context, ownerID int64) ([]*domain.Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE user_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}

	var playlists []*domain.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		playlists = append(playlists, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Song IDs are loaded after the cursor is closed so the pool is not held twice.
	for _, p := range playlists {
		if p.SongIDs, err = s.loadPlaylistSongIDs(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("load playlist song ids: %w", err)
		}
	}
	return playlists, nil
}

// UpdatePlaylist writes the playlist's name and description. The owner is never changed.
// Returns store.ErrNotFound if the playlist does not exist.
func (s *Store) UpdatePlaylist(ctx context.Context, playlist *domain.Playlist) error {
	playlist.UpdatedAt = s.now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE playlists SET updated_at = ?, name = ?, description = ?
		WHERE id = ?`,
		formatTime(playlist.UpdatedAt),
		playlist.Name,
		nullString(playlist.Description),
		playlist.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeletePlaylist removes a playlist and its song associations.
// Returns store.ErrNotFound if the playlist does not exist.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// AddSongToPlaylist adds a song to a playlist. Adding a song that is already
// present is a no-op and reports false.
// Returns store.ErrNotFound if the playlist or song does not exist.
func (s *Store) AddSongToPlaylist(ctx context.Context, playlistID, songID int64) (bool, error) {
	now := formatTime(s.now())

	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id, added_at) VALUES (?, ?, ?)`,
		playlistID, songID, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, store.ErrNotFound
		}
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE playlists SET updated_at = ? WHERE id = ?`, now, playlistID); err != nil {
		return true, err
	}
	return true, nil
}

// RemoveSongFromPlaylist removes a song from a playlist. Removing a song that
// is not present reports false.
func (s *Store) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`, playlistID, songID)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE playlists SET updated_at = ? WHERE id = ?`, formatTime(s.now()), playlistID); err != nil {
		return true, err
	}
	return true, nil
}

// ListOwnerPlaylistIDsWithSong returns the IDs of ownerID's playlists that contain songID.
func (s *Store) ListOwnerPlaylistIDsWithSong(ctx context.Context, ownerID, songID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id FROM playlists p
		JOIN playlist_songs ps ON ps.playlist_id = p.id
		WHERE p.user_id = ? AND ps.song_id = ?
		ORDER BY p.id`, ownerID, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
