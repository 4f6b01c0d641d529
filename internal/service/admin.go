package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cadenceapp/cadence-server/internal/domain"
	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/store"
)

// AdminService handles admin-only user management.
type AdminService struct {
	store  store.Store
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store store.Store, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:  store,
		logger: logger,
	}
}

// ListUsers returns all users.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// SetRole changes a user's role. Demoting the last admin is rejected.
func (s *AdminService) SetRole(ctx context.Context, adminUserID, targetUserID int64, role string) (*domain.User, error) {
	newRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("invalid role", map[string]string{
			"role": "must be one of: ADMIN USER",
		})
	}

	user, err := s.store.GetUser(ctx, targetUserID)
	if err != nil {
		return nil, storeError(err, "get user", "user not found")
	}

	if user.Role == newRole {
		return user, nil
	}

	if user.IsAdmin() && newRole != domain.RoleAdmin {
		if err := s.ensureOtherAdminExists(ctx, targetUserID); err != nil {
			return nil, err
		}
	}

	user.Role = newRole
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, storeError(err, "update user", "user not found")
	}

	s.logger.Info("user role changed",
		"admin_id", adminUserID,
		"user_id", targetUserID,
		"role", newRole,
	)

	return user, nil
}

// DeleteUser removes a user and, by cascade, their playlists.
// Deleting yourself or the last admin is rejected.
func (s *AdminService) DeleteUser(ctx context.Context, adminUserID, targetUserID int64) error {
	if adminUserID == targetUserID {
		return domainerrors.Forbidden("cannot delete your own account")
	}

	user, err := s.store.GetUser(ctx, targetUserID)
	if err != nil {
		return storeError(err, "get user", "user not found")
	}

	if user.IsAdmin() {
		if err := s.ensureOtherAdminExists(ctx, targetUserID); err != nil {
			return err
		}
	}

	if err := s.store.DeleteUser(ctx, targetUserID); err != nil {
		return storeError(err, "delete user", "user not found")
	}

	s.logger.Info("user deleted by admin",
		"admin_id", adminUserID,
		"user_id", targetUserID,
	)

	return nil
}

// ensureOtherAdminExists checks that an admin other than excludeUserID exists.
func (s *AdminService) ensureOtherAdminExists(ctx context.Context, excludeUserID int64) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		if u.ID != excludeUserID && u.IsAdmin() {
			return nil
		}
	}

	return domainerrors.Conflict("cannot remove the last admin")
}
