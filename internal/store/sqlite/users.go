package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cadenceapp/cadence-server/internal/domain"
	"github.com/cadenceapp/cadence-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, email, password_hash, role, refresh_token_hash`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u            domain.User
		createdAt    string
		updatedAt    string
		role         string
		refreshToken sql.NullString
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&role,
		&refreshToken,
	)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)
	u.RefreshTokenHash = refreshToken.String

	return &u, nil
}

// mapUserWriteError turns uniqueness violations into store sentinels.
func mapUserWriteError(err error) error {
	switch {
	case isUniqueViolation(err, "users.username"):
		return store.ErrUsernameTaken
	case isUniqueViolation(err, "users.email"):
		return store.ErrEmailTaken
	default:
		return err
	}
}

// CreateUser inserts a new user and sets its ID.
// Returns store.ErrUsernameTaken or store.ErrEmailTaken on duplicates.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			created_at, updated_at, username, email, password_hash, role, refresh_token_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		nullString(user.RefreshTokenHash),
	)
	if err != nil {
		return mapUserWriteError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	user.ID = id

	return nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUserWhere(ctx, "email = ?", email)
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserWhere(ctx, "username = ?", username)
}

func (s *Store) getUserWhere(ctx context.Context, cond string, arg any) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond, arg)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all users ordered by ID.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser writes the profile fields and role. The renewal token digest is
// owned by SetRefreshTokenHash and is never written here, so a stale copy of
// the user cannot bring back a revoked token.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = s.now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			updated_at = ?,
			username = ?,
			email = ?,
			password_hash = ?,
			role = ?
		WHERE id = ?`,
		formatTime(user.UpdatedAt),
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.ID,
	)
	if err != nil {
		return mapUserWriteError(err)
	}
	return requireAffected(result)
}

// SetRefreshTokenHash replaces the user's stored renewal token digest.
// An empty hash clears it.
func (s *Store) SetRefreshTokenHash(ctx context.Context, userID int64, hash string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = ?, updated_at = ? WHERE id = ?`,
		nullString(hash), formatTime(s.now()), userID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeleteUser removes a user. Their playlists are removed by cascade.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// requireAffected returns store.ErrNotFound when a write matched no rows.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
