package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cadenceapp/cadence-server/internal/domain"
	"github.com/cadenceapp/cadence-server/internal/normalize"
	"github.com/cadenceapp/cadence-server/internal/search"
	"github.com/cadenceapp/cadence-server/internal/store"
	"github.com/cadenceapp/cadence-server/internal/validation"
)

// SongIndex is the subset of the search index used by SongService.
type SongIndex interface {
	IndexSong(song *domain.Song) error
	DeleteSong(songID int64) error
	Rebuild(songs []*domain.Song) error
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
}

// SongService manages the song catalog and keeps the search index in step
// with the store. The store is authoritative; index failures are logged.
type SongService struct {
	store     store.Store
	index     SongIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSongService creates a new song service.
func NewSongService(store store.Store, index SongIndex, validator *validation.Validator, logger *slog.Logger) *SongService {
	return &SongService{
		store:     store,
		index:     index,
		validator: validator,
		logger:    logger,
	}
}

// CreateSongRequest contains new song data.
type CreateSongRequest struct {
	Title    string `json:"title" validate:"notblank,max=200"`
	Artist   string `json:"artist" validate:"notblank,max=200"`
	Duration int    `json:"duration" validate:"gte=0"`
}

// UpdateSongRequest carries a partial song update.
type UpdateSongRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitnil,notblank,max=200"`
	Artist   *string `json:"artist,omitempty" validate:"omitnil,notblank,max=200"`
	Duration *int    `json:"duration,omitempty" validate:"omitnil,gte=0"`
}

// maxSearchOffset bounds how deep a client may page into ranked search results.
const maxSearchOffset = 10_000

// ListSongsParams selects a page of songs. Without a query or filters songs
// come in ID order from the store; otherwise the search index answers.
type ListSongsParams struct {
	Query  string
	Artist string `validate:"max=200"`

	MinDuration int `validate:"gte=0"`
	MaxDuration int `validate:"omitempty,gtefield=MinDuration"`

	SortBy    string `validate:"omitempty,oneof=relevance title artist duration recent"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`

	IncludeFacets bool

	Cursor string
	Limit  int
}

func (p ListSongsParams) usesIndex() bool {
	return p.Query != "" || p.Artist != "" || p.MinDuration > 0 || p.MaxDuration > 0 ||
		p.SortBy != "" || p.IncludeFacets
}

// SongPage is one page of songs, with artist counts when facets were requested.
type SongPage struct {
	*store.PaginatedResult[*domain.Song]
	Artists []search.FacetCount
}

// SongDetail is a song plus the caller's playlists that contain it.
type SongDetail struct {
	*domain.Song
	PlaylistIDs []int64
}

// CreateSong adds a song to the catalog.
func (s *SongService) CreateSong(ctx context.Context, req CreateSongRequest) (*domain.Song, error) {
	req.Title = normalize.Text(req.Title)
	req.Artist = normalize.Text(req.Artist)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	song := &domain.Song{
		Title:    req.Title,
		Artist:   req.Artist,
		Duration: req.Duration,
	}
	if err := s.store.CreateSong(ctx, song); err != nil {
		return nil, storeError(err, "create song", "song not found")
	}

	s.indexSong(song)
	s.logger.Info("song created", "song_id", song.ID, "title", song.Title)
	return song, nil
}

// GetSong returns a song by ID.
func (s *SongService) GetSong(ctx context.Context, songID int64) (*domain.Song, error) {
	song, err := s.store.GetSong(ctx, songID)
	if err != nil {
		return nil, storeError(err, "get song", "song not found")
	}
	return song, nil
}

// GetSongDetail returns a song and, for an identified caller, the IDs of
// the caller's playlists that contain it.
func (s *SongService) GetSongDetail(ctx context.Context, songID, callerID int64, identified bool) (*SongDetail, error) {
	song, err := s.GetSong(ctx, songID)
	if err != nil {
		return nil, err
	}

	detail := &SongDetail{Song: song}
	if !identified {
		return detail, nil
	}

	ids, err := s.store.ListOwnerPlaylistIDsWithSong(ctx, callerID, songID)
	if err != nil {
		return nil, fmt.Errorf("list containing playlists: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	detail.PlaylistIDs = ids
	return detail, nil
}

// ListSongs returns a page of songs.
func (s *SongService) ListSongs(ctx context.Context, params ListSongsParams) (*SongPage, error) {
	params.Query = normalize.Text(params.Query)
	params.Artist = normalize.Text(params.Artist)
	if err := s.validator.Validate(params); err != nil {
		return nil, err
	}

	page := store.PaginationParams{Limit: params.Limit, Cursor: params.Cursor}
	page.Validate()

	if params.usesIndex() {
		return s.searchSongs(ctx, params, page)
	}

	result, err := s.store.ListSongs(ctx, page)
	if err != nil {
		return nil, storeError(err, "list songs", "song not found")
	}
	return &SongPage{PaginatedResult: result}, nil
}

// searchSongs pages through search results. The cursor encodes the offset
// into the ranked hit list.
func (s *SongService) searchSongs(ctx context.Context, params ListSongsParams, page store.PaginationParams) (*SongPage, error) {
	var offset int64
	if page.Cursor != "" {
		decoded, err := store.DecodeCursor(page.Cursor)
		if err != nil {
			return nil, storeError(err, "decode cursor", "song not found")
		}
		if decoded > maxSearchOffset {
			return nil, storeError(store.ErrInvalidInput.WithMessage("search cursor out of range"), "decode cursor", "song not found")
		}
		offset = decoded
	}

	sp := search.DefaultSearchParams()
	sp.Query = params.Query
	sp.Artist = params.Artist
	sp.MinDuration = params.MinDuration
	sp.MaxDuration = params.MaxDuration
	sp.IncludeFacets = params.IncludeFacets
	sp.Limit = page.Limit
	sp.Offset = int(offset)
	if params.SortBy != "" {
		sp.SortBy = params.SortBy
	} else if params.Query == "" {
		// Scores are all equal without a query.
		sp.SortBy = "title"
		sp.SortOrder = "asc"
	}
	if params.SortOrder != "" {
		sp.SortOrder = params.SortOrder
	}

	result, err := s.index.Search(ctx, sp)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}

	songs, err := s.store.GetSongsByIDs(ctx, result.SongIDs())
	if err != nil {
		return nil, fmt.Errorf("load songs: %w", err)
	}

	byID := make(map[int64]*domain.Song, len(songs))
	for _, song := range songs {
		byID[song.ID] = song
	}

	// Hits for songs deleted since indexing are dropped.
	items := make([]*domain.Song, 0, len(result.Hits))
	for _, songID := range result.SongIDs() {
		if song, ok := byID[songID]; ok {
			items = append(items, song)
		}
	}

	next := offset + int64(len(result.Hits))
	paged := &store.PaginatedResult[*domain.Song]{
		Items:   items,
		HasMore: len(result.Hits) > 0 && uint64(next) < result.Total,
	}
	if paged.HasMore {
		paged.NextCursor = store.EncodeCursor(next)
	}
	return &SongPage{PaginatedResult: paged, Artists: result.Artists}, nil
}

// UpdateSong applies a partial update to a song.
func (s *SongService) UpdateSong(ctx context.Context, songID int64, req UpdateSongRequest) (*domain.Song, error) {
	req.Title = normalize.TextPtr(req.Title)
	req.Artist = normalize.TextPtr(req.Artist)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	song, err := s.store.GetSong(ctx, songID)
	if err != nil {
		return nil, storeError(err, "get song", "song not found")
	}

	update := domain.SongUpdate{Title: req.Title, Artist: req.Artist, Duration: req.Duration}
	if update.Empty() {
		return song, nil
	}

	update.Apply(song)
	if err := s.store.UpdateSong(ctx, song); err != nil {
		return nil, storeError(err, "update song", "song not found")
	}

	s.indexSong(song)
	s.logger.Info("song updated", "song_id", song.ID)
	return song, nil
}

// DeleteSong removes a song and its playlist memberships.
func (s *SongService) DeleteSong(ctx context.Context, songID int64) error {
	if err := s.store.DeleteSong(ctx, songID); err != nil {
		return storeError(err, "delete song", "song not found")
	}

	if err := s.index.DeleteSong(songID); err != nil {
		s.logger.Warn("failed to remove song from search index", "song_id", songID, "error", err)
	}

	s.logger.Info("song deleted", "song_id", songID)
	return nil
}

// RebuildIndex reindexes the whole catalog from the store.
func (s *SongService) RebuildIndex(ctx context.Context) error {
	songs, err := s.store.ListAllSongs(ctx)
	if err != nil {
		return fmt.Errorf("list songs: %w", err)
	}
	if err := s.index.Rebuild(songs); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}
	return nil
}

func (s *SongService) indexSong(song *domain.Song) {
	if err := s.index.IndexSong(song); err != nil {
		s.logger.Warn("failed to index song", "song_id", song.ID, "error", err)
	}
}
