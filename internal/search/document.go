// Package search maintains a Bleve full-text index over the song catalog.
package search

import (
	"strconv"

	"github.com/cadenceapp/cadence-server/internal/domain"
	"github.com/cadenceapp/cadence-server/internal/normalize"
)

// SongDocument is the indexed representation of a song.
type SongDocument struct {
	ID        string
	Title     string
	Artist    string
	ArtistKey string // case-folded artist for exact filtering and facets
	Duration  int
	CreatedAt int64 // unix seconds
}

// NewSongDocument builds the index document for a song.
func NewSongDocument(song *domain.Song) *SongDocument {
	return &SongDocument{
		ID:        DocumentID(song.ID),
		Title:     song.Title,
		Artist:    song.Artist,
		ArtistKey: normalize.Key(song.Artist),
		Duration:  song.Duration,
		CreatedAt: song.CreatedAt.Unix(),
	}
}

// DocumentID converts a song ID into its index document ID.
func DocumentID(songID int64) string {
	return strconv.FormatInt(songID, 10)
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *SongDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"artist":     d.Artist,
		"artist_key": d.ArtistKey,
		"duration":   float64(d.Duration),
		"created_at": float64(d.CreatedAt),
	}
}
