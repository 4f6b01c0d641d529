package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cadenceapp/cadence-server/internal/auth"
	"github.com/cadenceapp/cadence-server/internal/domain"
	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/search"
	"github.com/cadenceapp/cadence-server/internal/store/sqlite"
	"github.com/cadenceapp/cadence-server/internal/validation"
)

// testEnv bundles services sharing one temporary store.
type testEnv struct {
	store     *sqlite.Store
	index     *search.SongIndex
	tokens    *auth.TokenService
	auth      *AuthService
	admin     *AdminService
	profile   *ProfileService
	songs     *SongService
	playlists *PlaylistService
}

func setupServices(t *testing.T, opts PlaylistOptions) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSongIndex(search.Options{InMemory: true, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Key:             key,
		AccessDuration:  15 * time.Minute,
		RefreshDuration: 24 * time.Hour,
	})
	require.NoError(t, err)

	v := validation.New()

	authService, err := NewAuthService(s, tokens, v, logger)
	require.NoError(t, err)

	return &testEnv{
		store:     s,
		index:     index,
		tokens:    tokens,
		auth:      authService,
		admin:     NewAdminService(s, logger),
		profile:   NewProfileService(s, v, logger),
		songs:     NewSongService(s, index, v, logger),
		playlists: NewPlaylistService(s, v, logger, opts),
	}
}

func (e *testEnv) signup(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := e.auth.Signup(context.Background(), SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) makeAdmin(t *testing.T, username string) *domain.User {
	t.Helper()
	user := e.signup(t, username)
	user.Role = domain.RoleAdmin
	require.NoError(t, e.store.UpdateUser(context.Background(), user))
	return user
}

func (e *testEnv) createSong(t *testing.T, title, artist string, duration int) *domain.Song {
	t.Helper()
	song, err := e.songs.CreateSong(context.Background(), CreateSongRequest{
		Title:    title,
		Artist:   artist,
		Duration: duration,
	})
	require.NoError(t, err)
	return song
}

// requireCode asserts err is a domain error with the given code.
func requireCode(t *testing.T, err error, code domainerrors.Code) *domainerrors.Error {
	t.Helper()
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code, "error: %v", err)
	return domainErr
}
