package store

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// PaginationParams are keyset pagination request parameters.
type PaginationParams struct {
	Limit  int    // Items per page, defaults to 100, capped at 1000
	Cursor string // Opaque cursor for the next page, empty for the first page
}

// PaginatedResult is one page of items.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// DefaultPaginationParams returns the first page with the default limit.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Limit: defaultPageLimit}
}

// Validate clamps Limit into range.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
}

// EncodeCursor turns the last returned id into an opaque cursor.
func EncodeCursor(lastID int64) string {
	if lastID <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(lastID, 10)))
}

// DecodeCursor returns the id after which the next page starts, 0 for the first page.
func DecodeCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid cursor", ErrInvalidInput)
	}
	id, err := strconv.ParseInt(string(decoded), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid cursor", ErrInvalidInput)
	}
	return id, nil
}
