package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 15, 31)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPagination(1, 15, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestPaginationParams_Validate(t *testing.T) {
	p := &PaginationParams{Page: -3, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset())
}

type row struct {
	id string
	at time.Time
}

func TestCursorPagination_RoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []row{{"c", base}, {"b", base.Add(-time.Minute)}, {"a", base.Add(-2 * time.Minute)}}

	meta, page := NewCursorPagination(rows, 2,
		func(r row) string { return r.id },
		func(r row) time.Time { return r.at },
	)
	require.Len(t, page, 2)
	require.True(t, meta.HasNext)
	require.NotNil(t, meta.NextCursor)

	cur, err := (&CursorParams{Cursor: *meta.NextCursor}).DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, "b", cur.ID)
	assert.True(t, cur.CreatedAt.Equal(base.Add(-time.Minute)))

	meta, page = NewCursorPagination(rows[2:], 2,
		func(r row) string { return r.id },
		func(r row) time.Time { return r.at },
	)
	assert.Len(t, page, 1)
	assert.False(t, meta.HasNext)
	assert.Nil(t, meta.NextCursor)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	cur, err := (&CursorParams{}).DecodeCursor()
	assert.NoError(t, err)
	assert.Nil(t, cur)

	_, err = (&CursorParams{Cursor: "%%%"}).DecodeCursor()
	assert.ErrorIs(t, err, ErrInvalidCursor)
	_, err = (&CursorParams{Cursor: "e30"}).DecodeCursor() // {}
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
