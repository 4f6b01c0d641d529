package service

import (
	"context"
	"log/slog"

	"github.com/cadenceapp/cadence-server/internal/auth"
	"github.com/cadenceapp/cadence-server/internal/domain"
	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/normalize"
	"github.com/cadenceapp/cadence-server/internal/store"
	"github.com/cadenceapp/cadence-server/internal/validation"
)

// ProfileService reads and updates the caller's own account.
type ProfileService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store store.Store, validator *validation.Validator, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// UpdateProfileRequest carries a partial account update. Changing the
// password requires the current one.
type UpdateProfileRequest struct {
	Username        *string `json:"username,omitempty" validate:"omitnil,min=3,max=32,username"`
	Email           *string `json:"email,omitempty" validate:"omitnil,email,max=254"`
	NewPassword     *string `json:"new_password,omitempty" validate:"omitnil,min=6,max=1024"`
	CurrentPassword string  `json:"current_password,omitempty"`
}

// GetUser returns the user with the given ID.
func (s *ProfileService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "get user", "user not found")
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's account.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	if req.Username != nil {
		v := normalize.Username(*req.Username)
		req.Username = &v
	}
	if req.Email != nil {
		v := normalize.Email(*req.Email)
		req.Email = &v
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "get user", "user not found")
	}

	update := domain.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
	}

	if req.NewPassword != nil {
		if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
			return nil, domainerrors.InvalidCredentials("current password is incorrect")
		}
		hash, err := auth.HashPassword(*req.NewPassword)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	if update.Empty() {
		return user, nil
	}

	update.Apply(user)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, storeError(err, "update user", "user not found")
	}

	// A new password ends the outstanding session; the access token lives on until expiry.
	if update.PasswordHash != nil {
		if err := s.store.SetRefreshTokenHash(ctx, userID, ""); err != nil {
			return nil, storeError(err, "revoke refresh token", "user not found")
		}
		user.RefreshTokenHash = ""
	}

	s.logger.Info("profile updated", "user_id", userID)
	return user, nil
}
