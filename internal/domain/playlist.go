package domain

import (
	"slices"
	"time"
)

// Playlist is a user-owned set of songs. OwnerID never changes after creation.
type Playlist struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SongIDs     []int64   `json:"song_ids"`
}

// IsOwnedBy reports whether userID owns the playlist.
func (p *Playlist) IsOwnedBy(userID int64) bool {
	return p.OwnerID == userID
}

// AddSong adds a song to the set. Returns false if it was already present.
func (p *Playlist) AddSong(songID int64) bool {
	if slices.Contains(p.SongIDs, songID) {
		return false
	}
	p.SongIDs = append(p.SongIDs, songID)
	return true
}

// RemoveSong removes a song from the set. Returns false if it was not present.
func (p *Playlist) RemoveSong(songID int64) bool {
	i := slices.Index(p.SongIDs, songID)
	if i < 0 {
		return false
	}
	p.SongIDs = slices.Delete(p.SongIDs, i, i+1)
	return true
}

// ContainsSong reports whether the song is in the playlist.
func (p *Playlist) ContainsSong(songID int64) bool {
	return slices.Contains(p.SongIDs, songID)
}

// PlaylistDetail is a playlist with its owner and songs materialized.
type PlaylistDetail struct {
	Playlist
	Owner *User
	Songs []*Song
}

// PlaylistUpdate carries the fields of a partial playlist update.
type PlaylistUpdate struct {
	Name        *string
	Description *string
}

// Empty reports whether the update changes nothing.
func (u PlaylistUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil
}

// Apply writes the non-nil fields onto playlist.
func (u PlaylistUpdate) Apply(p *Playlist) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
}
