package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaylist_AddSongIsIdempotent(t *testing.T) {
	p := &Playlist{ID: 1, OwnerID: 1}

	assert.True(t, p.AddSong(5))
	assert.False(t, p.AddSong(5))
	assert.Equal(t, []int64{5}, p.SongIDs)
}

func TestPlaylist_RemoveSong(t *testing.T) {
	p := &Playlist{SongIDs: []int64{1, 2, 3}}

	assert.True(t, p.RemoveSong(2))
	assert.False(t, p.RemoveSong(2))
	assert.Equal(t, []int64{1, 3}, p.SongIDs)
	assert.False(t, p.ContainsSong(2))
	assert.True(t, p.ContainsSong(3))
}

func TestPlaylist_IsOwnedBy(t *testing.T) {
	p := &Playlist{OwnerID: 1}

	assert.True(t, p.IsOwnedBy(1))
	assert.False(t, p.IsOwnedBy(2))
}

func TestPlaylistUpdate_Apply(t *testing.T) {
	p := &Playlist{Name: "Road trip", Description: "summer"}
	name := "Night drive"

	u := PlaylistUpdate{Name: &name}
	assert.False(t, u.Empty())
	u.Apply(p)

	assert.Equal(t, "Night drive", p.Name)
	assert.Equal(t, "summer", p.Description)
	assert.True(t, PlaylistUpdate{}.Empty())
}
