package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cadenceapp/cadence-server/internal/store"
)

func TestCreateAndGetSong(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	song := insertTestSong(t, s, "Teardrop", "Massive Attack", 330)
	if song.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := s.GetSong(ctx, song.ID)
	if err != nil {
		t.Fatalf("GetSong: %v", err)
	}
	if got.Title != "Teardrop" || got.Artist != "Massive Attack" || got.Duration != 330 {
		t.Errorf("unexpected song %+v", got)
	}

	if _, err := s.GetSong(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing song: got %v, want ErrNotFound", err)
	}
}

func TestUpdateAndDeleteSong(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	song := insertTestSong(t, s, "Teardrop", "Massive Attack", 330)
	song.Duration = 331
	if err := s.UpdateSong(ctx, song); err != nil {
		t.Fatalf("UpdateSong: %v", err)
	}
	got, _ := s.GetSong(ctx, song.ID)
	if got.Duration != 331 {
		t.Errorf("Duration: got %d, want 331", got.Duration)
	}

	if err := s.DeleteSong(ctx, song.ID); err != nil {
		t.Fatalf("DeleteSong: %v", err)
	}
	if err := s.DeleteSong(ctx, song.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	song.ID = 999
	if err := s.UpdateSong(ctx, song); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update missing: got %v, want ErrNotFound", err)
	}
}

func TestListSongs_Pagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := range 5 {
		insertTestSong(t, s, fmt.Sprintf("Song %d", i), "Artist", 100+i)
	}

	page1, err := s.ListSongs(ctx, store.PaginationParams{Limit: 2})
	if err != nil {
		t.Fatalf("ListSongs: %v", err)
	}
	if len(page1.Items) != 2 || !page1.HasMore || page1.NextCursor == "" {
		t.Fatalf("page1: %d items, hasMore=%v", len(page1.Items), page1.HasMore)
	}

	page2, err := s.ListSongs(ctx, store.PaginationParams{Limit: 2, Cursor: page1.NextCursor})
	if err != nil {
		t.Fatalf("ListSongs page2: %v", err)
	}
	if page2.Items[0].ID <= page1.Items[1].ID {
		t.Errorf("page2 overlaps page1")
	}

	page3, err := s.ListSongs(ctx, store.PaginationParams{Limit: 2, Cursor: page2.NextCursor})
	if err != nil {
		t.Fatalf("ListSongs page3: %v", err)
	}
	if len(page3.Items) != 1 || page3.HasMore || page3.NextCursor != "" {
		t.Errorf("page3: %d items, hasMore=%v", len(page3.Items), page3.HasMore)
	}

	if _, err := s.ListSongs(ctx, store.PaginationParams{Cursor: "!!"}); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("bad cursor: got %v, want ErrInvalidInput", err)
	}

	n, err := s.CountSongs(ctx)
	if err != nil || n != 5 {
		t.Errorf("CountSongs: got %d, %v", n, err)
	}
}

func TestListSongs_Empty(t *testing.T) {
	s := newTestStore(t)

	page, err := s.ListSongs(context.Background(), store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListSongs: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 || page.HasMore {
		t.Errorf("unexpected empty page %+v", page)
	}
}

func TestGetSongsByIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := insertTestSong(t, s, "A", "X", 1)
	b := insertTestSong(t, s, "B", "X", 2)

	songs, err := s.GetSongsByIDs(ctx, []int64{b.ID, 999, a.ID})
	if err != nil {
		t.Fatalf("GetSongsByIDs: %v", err)
	}
	if len(songs) != 2 || songs[0].ID != a.ID || songs[1].ID != b.ID {
		t.Errorf("unexpected songs %+v", songs)
	}

	none, err := s.GetSongsByIDs(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("empty ids: %v, %v", none, err)
	}
}
