package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users",
		Summary:     "List users",
		Description: "Lists all user accounts (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"cookie": {}}, {"bearer": {}}},
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminSetUserRole",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/users/{id}/role",
		Summary:     "Change user role",
		Description: "Promotes or demotes a user (admin only). The last admin cannot be demoted.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"cookie": {}}, {"bearer": {}}},
	}, s.handleAdminSetUserRole)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminDeleteUser",
		Method:        http.MethodDelete,
		Path:          "/api/v1/admin/users/{id}",
		Summary:       "Delete user",
		Description:   "Deletes a user and their playlists (admin only)",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"cookie": {}}, {"bearer": {}}},
	}, s.handleAdminDeleteUser)
}

// === DTOs ===

// UserListResponse lists users.
type UserListResponse struct {
	Users []UserResponse `json:"users" doc:"All users"`
}

// ListUsersOutput wraps the user list for Huma.
type ListUsersOutput struct {
	Body UserListResponse
}

// SetRoleRequest is the request body for changing a role.
type SetRoleRequest struct {
	Role string `json:"role" enum:"ADMIN,USER" doc:"New role"`
}

// SetRoleInput wraps the role change request for Huma.
type SetRoleInput struct {
	ID   int64 `path:"id" doc:"User ID"`
	Body SetRoleRequest
}

// UserIDInput identifies a user by path.
type UserIDInput struct {
	ID int64 `path:"id" doc:"User ID"`
}

// === Handlers ===

func (s *Server) handleAdminListUsers(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	return &ListUsersOutput{Body: UserListResponse{Users: mapUsers(users)}}, nil
}

func (s *Server) handleAdminSetUserRole(ctx context.Context, input *SetRoleInput) (*UserOutput, error) {
	admin, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Admin.SetRole(ctx, admin.ID, input.ID, input.Body.Role)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *UserIDInput) (*struct{}, error) {
	admin, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteUser(ctx, admin.ID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
