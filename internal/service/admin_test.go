package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenceapp/cadence-server/internal/domain"
	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/store"
)

func TestAdminService_ListUsers(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})

	users, err := env.admin.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)

	env.signup(t, "alice")
	env.signup(t, "bob")

	users, err = env.admin.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestAdminService_SetRole(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	ctx := context.Background()
	admin := env.makeAdmin(t, "root")
	alice := env.signup(t, "alice")

	updated, err := env.admin.SetRole(ctx, admin.ID, alice.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	// With two admins, one may be demoted.
	updated, err = env.admin.SetRole(ctx, admin.ID, alice.ID, "USER")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, updated.Role)
}

func TestAdminService_SetRole_Errors(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	ctx := context.Background()
	admin := env.makeAdmin(t, "root")

	_, err := env.admin.SetRole(ctx, admin.ID, admin.ID, "superuser")
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = env.admin.SetRole(ctx, admin.ID, 999, "USER")
	requireCode(t, err, domainerrors.CodeNotFound)

	_, err = env.admin.SetRole(ctx, admin.ID, admin.ID, "USER")
	requireCode(t, err, domainerrors.CodeConflict)
}

func TestAdminService_DeleteUser_CascadesPlaylists(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	ctx := context.Background()
	admin := env.makeAdmin(t, "root")
	alice := env.signup(t, "alice")

	playlist, err := env.playlists.CreatePlaylist(ctx, alice.ID, CreatePlaylistRequest{Name: "Road Trip"})
	require.NoError(t, err)

	require.NoError(t, env.admin.DeleteUser(ctx, admin.ID, alice.ID))

	_, err = env.store.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.store.GetPlaylist(ctx, playlist.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdminService_DeleteUser_Errors(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	ctx := context.Background()
	admin := env.makeAdmin(t, "root")
	other := env.makeAdmin(t, "other")

	err := env.admin.DeleteUser(ctx, admin.ID, admin.ID)
	requireCode(t, err, domainerrors.CodeForbidden)

	err = env.admin.DeleteUser(ctx, admin.ID, 999)
	requireCode(t, err, domainerrors.CodeNotFound)

	// Another admin remains, so deleting one is allowed.
	require.NoError(t, env.admin.DeleteUser(ctx, admin.ID, other.ID))
}
