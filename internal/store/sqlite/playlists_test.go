package sqlite

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/cadenceapp/cadence-server/internal/domain"
	"github.com/cadenceapp/cadence-server/internal/store"
)

func TestCreateAndGetPlaylist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := insertTestUser(t, s, "alice")
	song1 := insertTestSong(t, s, "One", "A", 100)
	song2 := insertTestSong(t, s, "Two", "B", 200)

	p := &domain.Playlist{
		OwnerID:     owner.ID,
		Name:        "Road trip",
		Description: "summer 2026",
		SongIDs:     []int64{song1.ID, song2.ID},
	}
	if err := s.CreatePlaylist(ctx, p); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := s.GetPlaylist(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if got.OwnerID != owner.ID || got.Name != "Road trip" || got.Description != "summer 2026" {
		t.Errorf("unexpected playlist %+v", got)
	}
	if len(got.SongIDs) != 2 {
		t.Errorf("SongIDs: got %v", got.SongIDs)
	}

	detail, err := s.GetPlaylistDetail(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlaylistDetail: %v", err)
	}
	if detail.Owner == nil || detail.Owner.Username != "alice" {
		t.Errorf("owner not materialized: %+v", detail.Owner)
	}
	if len(detail.Songs) != 2 || detail.Songs[0].Title != "One" {
		t.Errorf("songs not materialized: %+v", detail.Songs)
	}
}

func TestCreatePlaylist_UnknownOwner(t *testing.T) {
	s := newTestStore(t)

	p := &domain.Playlist{OwnerID: 999, Name: "orphan"}
	if err := s.CreatePlaylist(context.Background(), p); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestGetPlaylist_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetPlaylist(context.Background(), 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if _, err := s.GetPlaylistDetail(context.Background(), 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("detail: got %v, want ErrNotFound", err)
	}
}

func TestAddSongToPlaylist_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := insertTestUser(t, s, "alice")
	song := insertTestSong(t, s, "One", "A", 100)
	p := &domain.Playlist{OwnerID: owner.ID, Name: "mix"}
	if err := s.CreatePlaylist(ctx, p); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	added, err := s.AddSongToPlaylist(ctx, p.ID, song.ID)
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	added, err = s.AddSongToPlaylist(ctx, p.ID, song.ID)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if added {
		t.Error("second add should report no change")
	}

	got, _ := s.GetPlaylist(ctx, p.ID)
	if len(got.SongIDs) != 1 || got.SongIDs[0] != song.ID {
		t.Errorf("SongIDs: got %v, want [%d]", got.SongIDs, song.ID)
	}

	if _, err := s.AddSongToPlaylist(ctx, p.ID, 999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown song: got %v, want ErrNotFound", err)
	}
}

func TestPlaylistSongs_KeepInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := insertTestUser(t, s, "alice")
	var songs []*domain.Song
	for _, title := range []string{"One", "Two", "Three"} {
		songs = append(songs, insertTestSong(t, s, title, "A", 100))
	}

	p := &domain.Playlist{OwnerID: owner.ID, Name: "mix", SongIDs: []int64{songs[2].ID}}
	if err := s.CreatePlaylist(ctx, p); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	for _, song := range []*domain.Song{songs[0], songs[1]} {
		if _, err := s.AddSongToPlaylist(ctx, p.ID, song.ID); err != nil {
			t.Fatalf("AddSongToPlaylist: %v", err)
		}
	}

	want := []int64{songs[2].ID, songs[0].ID, songs[1].ID}

	got, err := s.GetPlaylist(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if !slices.Equal(got.SongIDs, want) {
		t.Errorf("SongIDs: got %v, want %v", got.SongIDs, want)
	}

	detail, err := s.GetPlaylistDetail(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlaylistDetail: %v", err)
	}
	var detailIDs []int64
	for _, song := range detail.Songs {
		detailIDs = append(detailIDs, song.ID)
	}
	if !slices.Equal(detailIDs, want) {
		t.Errorf("detail songs: got %v, want %v", detailIDs, want)
	}
}

func TestRemoveSongFromPlaylist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := insertTestUser(t, s, "alice")
	song := insertTestSong(t, s, "One", "A", 100)
	p := &domain.Playlist{OwnerID: owner.ID, Name: "mix", SongIDs: []int64{song.ID}}
	if err := s.CreatePlaylist(ctx, p); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	removed, err := s.RemoveSongFromPlaylist(ctx, p.ID, song.ID)
	if err != nil || !removed {
		t.Fatalf("remove: removed=%v err=%v", removed, err)
	}
	removed, err = s.RemoveSongFromPlaylist(ctx, p.ID, song.ID)
	if err != nil || removed {
		t.Errorf("second remove: removed=%v err=%v", removed, err)
	}

	got, _ := s.GetPlaylist(ctx, p.ID)
	if len(got.SongIDs) != 0 {
		t.Errorf("SongIDs: got %v, want empty", got.SongIDs)
	}
}

func TestUpdatePlaylist_KeepsOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := insertTestUser(t, s, "alice")
	bob := insertTestUser(t, s, "bob")
	p := &domain.Playlist{OwnerID: alice.ID, Name: "mix"}
	if err := s.CreatePlaylist(ctx, p); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	p.Name = "renamed"
	p.OwnerID = bob.ID
	if err := s.UpdatePlaylist(ctx, p); err != nil {
		t.Fatalf("UpdatePlaylist: %v", err)
	}

	got, _ := s.GetPlaylist(ctx, p.ID)
	if got.Name != "renamed" {
		t.Errorf("Name: got %q", got.Name)
	}
	if got.OwnerID != alice.ID {
		t.Errorf("OwnerID changed to %d", got.OwnerID)
	}
}

func TestDeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := insertTestUser(t, s, "alice")
	song := insertTestSong(t, s, "One", "A", 100)
	keep := insertTestSong(t, s, "Two", "B", 100)
	p := &domain.Playlist{OwnerID: alice.ID, Name: "mix", SongIDs: []int64{song.ID, keep.ID}}
	if err := s.CreatePlaylist(ctx, p); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	// Deleting a song drops only its membership.
	if err := s.DeleteSong(ctx, song.ID); err != nil {
		t.Fatalf("DeleteSong: %v", err)
	}
	got, err := s.GetPlaylist(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if len(got.SongIDs) != 1 || got.SongIDs[0] != keep.ID {
		t.Errorf("SongIDs after song delete: %v", got.SongIDs)
	}

	// Deleting the owner drops the playlist.
	if err := s.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.GetPlaylist(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("playlist after owner delete: got %v, want ErrNotFound", err)
	}
	if _, err := s.GetSong(ctx, keep.ID); err != nil {
		t.Errorf("song should survive: %v", err)
	}
}

func TestListPlaylistsByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := insertTestUser(t, s, "alice")
	bob := insertTestUser(t, s, "bob")
	song := insertTestSong(t, s, "One", "A", 100)

	for _, p := range []*domain.Playlist{
		{OwnerID: alice.ID, Name: "a1", SongIDs: []int64{song.ID}},
		{OwnerID: alice.ID, Name: "a2"},
		{OwnerID: bob.ID, Name: "b1", SongIDs: []int64{song.ID}},
	} {
		if err := s.CreatePlaylist(ctx, p); err != nil {
			t.Fatalf("CreatePlaylist(%s): %v", p.Name, err)
		}
	}

	mine, err := s.ListPlaylistsByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListPlaylistsByOwner: %v", err)
	}
	if len(mine) != 2 || mine[0].Name != "a1" || mine[1].Name != "a2" {
		t.Fatalf("unexpected playlists %+v", mine)
	}
	if len(mine[0].SongIDs) != 1 {
		t.Errorf("a1 SongIDs: %v", mine[0].SongIDs)
	}

	ids, err := s.ListOwnerPlaylistIDsWithSong(ctx, alice.ID, song.ID)
	if err != nil {
		t.Fatalf("ListOwnerPlaylistIDsWithSong: %v", err)
	}
	if len(ids) != 1 || ids[0] != mine[0].ID {
		t.Errorf("ids: got %v, want [%d]", ids, mine[0].ID)
	}

	if err := s.DeletePlaylist(ctx, mine[1].ID); err != nil {
		t.Fatalf("DeletePlaylist: %v", err)
	}
	if err := s.DeletePlaylist(ctx, mine[1].ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}
