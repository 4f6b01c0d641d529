package domain

import "time"

// Song is an entry in the shared catalog. Duration is in seconds.
type Song struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Duration  int       `json:"duration"`
}

// SongUpdate carries the fields of a partial song update.
type SongUpdate struct {
	Title    *string
	Artist   *string
	Duration *int
}

// Empty reports whether the update changes nothing.
func (u SongUpdate) Empty() bool {
	return u.Title == nil && u.Artist == nil && u.Duration == nil
}

// Apply writes the non-nil fields onto song.
func (u SongUpdate) Apply(song *Song) {
	if u.Title != nil {
		song.Title = *u.Title
	}
	if u.Artist != nil {
		song.Artist = *u.Artist
	}
	if u.Duration != nil {
		song.Duration = *u.Duration
	}
}
