package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/cadenceapp/cadence-server/internal/domain"
)

// SongIndex wraps a Bleve index with song-specific operations.
//
// All public methods are safe for concurrent use. The mutex is held
// exclusively only while the index is being rebuilt.
type SongIndex struct {
	index    bleve.Index
	path     string
	inMemory bool
	logger   *slog.Logger
	mu       sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	InMemory bool         // Keep the index in memory only (tests, ephemeral runs)
	Logger   *slog.Logger // Uses a discard logger if nil
}

// mappingVersion is bumped whenever the index mapping changes so that an
// index built with an older mapping is recreated on startup.
const mappingVersion = "1"

const batchSize = 500

// NewSongIndex creates or opens a song index. An existing index that cannot
// be opened or was built with a different mapping version is recreated
// empty; the caller is expected to Rebuild it from the store.
func NewSongIndex(opts Options) (*SongIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.InMemory {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &SongIndex{index: index, inMemory: true, logger: logger}, nil
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	indexPath := filepath.Join(opts.DataPath, "songs.bleve")
	versionPath := filepath.Join(opts.DataPath, "songs.version")

	var index bleve.Index
	needsRebuild := false

	if _, statErr := os.Stat(indexPath); statErr == nil {
		existingVersion, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, recreating", "new_version", mappingVersion)
			needsRebuild = true
		case string(existingVersion) != mappingVersion:
			logger.Info("search index mapping version changed, recreating",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		default:
			opened, err := bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open existing index, recreating", "path", indexPath, "error", err)
				needsRebuild = true
			} else {
				index = opened
			}
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
	}

	if index == nil {
		created, err := bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		index = created
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SongIndex{index: index, path: indexPath, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *SongIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexSong adds or replaces a song in the index.
func (s *SongIndex) IndexSong(song *domain.Song) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := NewSongDocument(song)
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexSongs indexes songs in batches.
func (s *SongIndex) IndexSongs(songs []*domain.Song) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexBatches(s.index, songs)
}

// DeleteSong removes a song from the index. Deleting an unknown song is a no-op.
func (s *SongIndex) DeleteSong(songID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(DocumentID(songID))
}

// DocumentCount returns the number of indexed songs.
func (s *SongIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and reindexes songs from scratch.
//
// It holds the exclusive lock for its whole duration, blocking searches.
func (s *SongIndex) Rebuild(songs []*domain.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.inMemory {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index

	if err := indexBatches(index, songs); err != nil {
		return err
	}

	s.logger.Info("rebuilt search index", "path", s.path, "songs", len(songs))
	return nil
}

func indexBatches(index bleve.Index, songs []*domain.Song) error {
	for i := 0; i < len(songs); i += batchSize {
		end := min(i+batchSize, len(songs))

		batch := index.NewBatch()
		for _, song := range songs[i:end] {
			doc := NewSongDocument(song)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}
