package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cadenceapp/cadence-server/internal/domain"
	"github.com/cadenceapp/cadence-server/internal/store"
)

// Error paths that a real SQLite file cannot produce on demand.

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := New(db, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, mock
}

func TestMock_GetUserPropagatesDriverError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("database is locked")

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnError(boom)

	_, err := s.GetUser(context.Background(), 1)
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want driver error", err)
	}
	if errors.Is(err, store.ErrNotFound) {
		t.Error("driver error must not be reported as not found")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMock_CreateUserMapsUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"))

	err := s.CreateUser(context.Background(), &domain.User{Username: "a", Email: "a@x.com", PasswordHash: "h"})
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("got %v, want ErrEmailTaken", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMock_CreateUserOtherFailureIsNotDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("disk I/O error"))

	err := s.CreateUser(context.Background(), &domain.User{Username: "a", Email: "a@x.com", PasswordHash: "h"})
	if err == nil || errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("got %v, want a non-duplicate error", err)
	}
}

func TestMock_DeleteSongNoRows(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM songs WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteSong(context.Background(), 5); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestMock_CreatePlaylistRollsBackOnSongFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO playlists`).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`INSERT OR IGNORE INTO playlist_songs`).
		WithArgs(int64(7), int64(3), sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint failed: FOREIGN KEY constraint failed (787)"))
	mock.ExpectRollback()

	p := &domain.Playlist{OwnerID: 1, Name: "mix", SongIDs: []int64{3}}
	err := s.CreatePlaylist(context.Background(), p)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if p.ID != 0 {
		t.Errorf("ID assigned despite rollback: %d", p.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMock_ListPlaylistsRowError(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "user_id", "name", "description"}).
		AddRow(1, "2026-01-02T03:04:05Z", "2026-01-02T03:04:05Z", 1, "mix", nil).
		RowError(0, errors.New("interrupted"))
	mock.ExpectQuery(`SELECT .+ FROM playlists WHERE user_id = \?`).WillReturnRows(rows)

	if _, err := s.ListPlaylistsByOwner(context.Background(), 1); err == nil {
		t.Error("expected row error")
	}
}
