package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGetTenantID(t *testing.T) {
	_, ok := GetTenantID(context.Background())
	assert.False(t, ok)

	_, ok = GetTenantID(WithTenant(context.Background(), uuid.Nil))
	assert.False(t, ok)

	id := uuid.New()
	got, ok := GetTenantID(WithTenant(context.Background(), id))
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestNextFromNumber(t *testing.T) {
	n, err := nextFromNumber("", "COT-202610-")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = nextFromNumber("COT-202610-0041", "COT-202610-")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = nextFromNumber("F-9999", "F-")
	require.NoError(t, err)
	assert.Equal(t, 10000, n)

	n, err = nextFromNumber("F-10000", "F-")
	require.NoError(t, err)
	assert.Equal(t, 10001, n)

	_, err = nextFromNumber("COT-202610-ABC", "COT-202610-")
	assert.Error(t, err)
}

// dryRunDB builds statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=lexdesk"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestLatestNumbered_LongerFoliosSortFirst(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var folios []string
		return latestNumbered(tx.Model(&entity.Invoice{}), "folio", "F-").Pluck("folio", &folios)
	})

	assert.Contains(t, sql, "folio LIKE 'F-%'")
	assert.Contains(t, sql, "substring(folio from 3) ~ '^[0-9]+$'")
	assert.Contains(t, sql, "ORDER BY length(folio) DESC, folio DESC")
	assert.Contains(t, sql, "LIMIT 1")
}

func TestLatestNumbered_EscapesLikeWildcards(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var numbers []string
		return latestNumbered(tx.Model(&entity.Quote{}), "number", "Q_1%-").Pluck("number", &numbers)
	})
	assert.Contains(t, sql, `number LIKE 'Q\_1\%-%'`)
}

func TestOrderBy(t *testing.T) {
	allowed := map[string]bool{"name": true}
	assert.Equal(t, "name ASC", orderBy("name", "asc", allowed, "created_at DESC"))
	assert.Equal(t, "name DESC", orderBy("name", "", allowed, "created_at DESC"))
	assert.Equal(t, "created_at DESC", orderBy("name; DROP TABLE x", "asc", allowed, "created_at DESC"))
}
