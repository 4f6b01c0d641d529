package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cadenceapp/cadence-server/internal/domain"
	"github.com/cadenceapp/cadence-server/internal/store"
)

// songColumns must match the scan order in scanSong.
const songColumns = `id, created_at, updated_at, title, artist, duration`

func scanSong(scanner interface{ Scan(dest ...any) error }) (*domain.Song, error) {
	var (
		song      domain.Song
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&song.ID, &createdAt, &updatedAt, &song.Title, &song.Artist, &song.Duration); err != nil {
		return nil, err
	}

	var err error
	if song.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if song.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &song, nil
}

func (s *Store) querySongs(ctx context.Context, query string, args ...any) ([]*domain.Song, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []*domain.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// CreateSong inserts a song and sets its ID.
func (s *Store) CreateSong(ctx context.Context, song *domain.Song) error {
	now := s.now()
	song.CreatedAt = now
	song.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO songs (created_at, updated_at, title, artist, duration)
		VALUES (?, ?, ?, ?, ?)`,
		formatTime(song.CreatedAt),
		formatTime(song.UpdatedAt),
		song.Title,
		song.Artist,
		song.Duration,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	song.ID = id
	return nil
}

// GetSong retrieves a song by ID.
// Returns store.ErrNotFound if the song does not exist.
func (s *Store) GetSong(ctx context.Context, id int64) (*domain.Song, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id)

	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

// GetSongsByIDs returns the songs that exist among ids, ordered by ID.
// Unknown ids are skipped.
func (s *Store) GetSongsByIDs(ctx context.Context, ids []int64) ([]*domain.Song, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.querySongs(ctx,
		`SELECT `+songColumns+` FROM songs WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id`, args...)
}

// ListSongs returns one page of songs ordered by ID.
func (s *Store) ListSongs(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Song], error) {
	params.Validate()

	after, err := store.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	// Fetch one extra row to learn whether another page exists.
	songs, err := s.querySongs(ctx,
		`SELECT `+songColumns+` FROM songs WHERE id > ? ORDER BY id LIMIT ?`, after, params.Limit+1)
	if err != nil {
		return nil, err
	}

	result := &store.PaginatedResult[*domain.Song]{Items: songs}
	if len(songs) > params.Limit {
		result.Items = songs[:params.Limit]
		result.HasMore = true
		result.NextCursor = store.EncodeCursor(result.Items[len(result.Items)-1].ID)
	}
	if result.Items == nil {
		result.Items = []*domain.Song{}
	}
	return result, nil
}

// ListAllSongs returns every song ordered by ID.
func (s *Store) ListAllSongs(ctx context.Context) ([]*domain.Song, error) {
	return s.querySongs(ctx, `SELECT `+songColumns+` FROM songs ORDER BY id`)
}

// UpdateSong writes the song's mutable fields.
// Returns store.ErrNotFound if the song does not exist.
func (s *Store) UpdateSong(ctx context.Context, song *domain.Song) error {
	song.UpdatedAt = s.now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE songs SET updated_at = ?, title = ?, artist = ?, duration = ?
		WHERE id = ?`,
		formatTime(song.UpdatedAt),
		song.Title,
		song.Artist,
		song.Duration,
		song.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeleteSong removes a song and its playlist memberships.
// Returns store.ErrNotFound if the song does not exist.
func (s *Store) DeleteSong(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// CountSongs returns the number of songs in the catalog.
func (s *Store) CountSongs(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&n)
	return n, err
}
