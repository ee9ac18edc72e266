// Package pagination holds the two paging styles the API uses: numbered
// pages for listings that show totals, and keyset cursors for the
// append-only activity log.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

// PaginationParams selects a numbered page
type PaginationParams struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

func DefaultPagination() *PaginationParams {
	return &PaginationParams{Page: 1, PerPage: defaultPerPage}
}

// Validate clamps the params in place
func (p *PaginationParams) Validate() {
	p.Page = max(p.Page, 1)
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	p.PerPage = min(p.PerPage, maxPerPage)
}

func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination describes where a page sits in the full result
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

func NewPagination(page, perPage int, total int64) *Pagination {
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
}

type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

func NewPaginatedResult[T any](items []T, p *Pagination) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{Items: items, Pagination: p}
}

// Cursor is the (created_at, id) key of the last row already seen
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

// CursorParams requests the rows after Cursor, newest first
type CursorParams struct {
	Cursor string `form:"cursor" json:"cursor"`
	Limit  int    `form:"limit" json:"limit"`
}

func DefaultCursorParams() *CursorParams {
	return &CursorParams{Limit: defaultPerPage}
}

func (c *CursorParams) Validate() {
	if c.Limit < 1 {
		c.Limit = defaultPerPage
	}
	c.Limit = min(c.Limit, maxPerPage)
}

// DecodeCursor returns nil for the first page
func (c *CursorParams) DecodeCursor() (*Cursor, error) {
	if c.Cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var cur Cursor
	if err := json.Unmarshal(raw, &cur); err != nil || cur.ID == "" {
		return nil, ErrInvalidCursor
	}
	return &cur, nil
}

func EncodeCursor(id string, createdAt time.Time) string {
	data, _ := json.Marshal(Cursor{CreatedAt: createdAt.UTC(), ID: id})
	return base64.RawURLEncoding.EncodeToString(data)
}

type CursorPagination struct {
	NextCursor *string `json:"next_cursor,omitempty"`
	HasNext    bool    `json:"has_next"`
	Limit      int     `json:"limit"`
}

type CursorPaginatedResult[T any] struct {
	Items      []T               `json:"items"`
	Pagination *CursorPagination `json:"pagination"`
}

// NewCursorPagination expects up to limit+1 rows; the extra row only signals
// that another page exists and is dropped.
func NewCursorPagination[T any](items []T, limit int, getID func(T) string, getCreatedAt func(T) time.Time) (*CursorPagination, []T) {
	meta := &CursorPagination{Limit: limit, HasNext: len(items) > limit}
	if meta.HasNext {
		items = items[:limit]
		last := items[len(items)-1]
		next := EncodeCursor(getID(last), getCreatedAt(last))
		meta.NextCursor = &next
	}
	return meta, items
}

func NewCursorPaginatedResult[T any](items []T, p *CursorPagination) *CursorPaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &CursorPaginatedResult[T]{Items: items, Pagination: p}
}
