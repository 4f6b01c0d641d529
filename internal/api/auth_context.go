package api

import (
	"context"
	"errors"

	"github.com/cadenceapp/cadence-server/internal/domain"
	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/store"
)

// UserLookup loads users by ID. Both the store and ProfileService satisfy it.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// RequireUser returns the authenticated user. A token for a user that no
// longer exists grants nothing and yields 401.
func RequireUser(ctx context.Context, users UserLookup) (*domain.User, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("user not found")
		}
		return nil, err
	}
	return user, nil
}

// RequireAdmin returns the authenticated user if they have the admin role.
// Unauthenticated callers get 401, authenticated non-admins 403.
func RequireAdmin(ctx context.Context, users UserLookup) (*domain.User, error) {
	user, err := RequireUser(ctx, users)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, domainerrors.Forbidden("admin access required")
	}
	return user, nil
}

// RequireUser validates the caller against the server's store.
func (s *Server) RequireUser(ctx context.Context) (*domain.User, error) {
	return RequireUser(ctx, s.store)
}

// RequireAdmin validates the caller is an admin against the server's store.
func (s *Server) RequireAdmin(ctx context.Context) (*domain.User, error) {
	return RequireAdmin(ctx, s.store)
}
