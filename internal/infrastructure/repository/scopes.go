package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ctxKey string

const (
	// TenantIDKey is the context key for tenant ID
	TenantIDKey ctxKey = "tenant_id"
	// SkipTenantScopeKey is the context key for skipping tenant scope (super admin)
	SkipTenantScopeKey ctxKey = "skip_tenant_scope"
)

// TenantScope returns a GORM scope that filters by tenant
// This should be applied to all queries for tenant-scoped entities
// If SkipTenantScopeKey is true in context (super admin), returns all records
func TenantScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skipScope, ok := ctx.Value(SkipTenantScopeKey).(bool); ok && skipScope {
			return db
		}

		tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
		if !ok || tenantID == uuid.Nil {
			// No tenant in context: match nothing rather than everything.
			return db.Where("1 = 0")
		}
		return db.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "tenant_id"}, Value: tenantID})
	}
}

// WithSkipTenantScope adds skip tenant scope flag to context (for super admins)
func WithSkipTenantScope(ctx context.Context, skip bool) context.Context {
	return context.WithValue(ctx, SkipTenantScopeKey, skip)
}

// WithTenant adds tenant ID to context
func WithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetTenantID extracts tenant ID from context
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok && tenantID != uuid.Nil
}

// scoped returns the connection for ctx (joining any open transaction)
// filtered to the tenant in ctx.
func scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	return database.Conn(ctx, db).Scopes(TenantScope(ctx))
}

// forUpdate adds SELECT ... FOR UPDATE.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// paginate applies offset pagination after counting the filtered rows.
func paginate(query *gorm.DB, params *pagination.PaginationParams, total *int64) (*gorm.DB, error) {
	if err := query.Count(total).Error; err != nil {
		return nil, err
	}
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()
	return query.Offset(params.Offset()).Limit(params.PerPage), nil
}

// orderBy builds a safe ORDER BY from a whitelist of sortable columns.
func orderBy(sortBy, sortOrder string, allowed map[string]bool, fallback string) string {
	if !allowed[sortBy] {
		return fallback
	}
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s", sortBy, dir)
}

// first runs First and maps a missing row to nil, nil.
func first[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var out T
	err := query.First(&out, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func like(s string) string {
	return "%" + s + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// latestNumbered selects the highest value of column among rows numbered as
// prefix followed by digits. Numbers are padded but may outgrow the padding,
// so longer values sort first.
func latestNumbered(query *gorm.DB, column, prefix string) *gorm.DB {
	return query.
		Where(column+" LIKE ?", likeEscaper.Replace(prefix)+"%").
		Where("substring("+column+" from ?) ~ '^[0-9]+$'", len([]rune(prefix))+1).
		Order("length(" + column + ") DESC, " + column + " DESC").
		Limit(1)
}

func nextFromNumber(last, prefix string) (int, error) {
	if last == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
	if err != nil {
		return 0, fmt.Errorf("unexpected number format %q: %w", last, err)
	}
	return n + 1, nil
}

// nextNumber returns the number that follows the latest one for prefix.
func nextNumber(query *gorm.DB, column, prefix string) (int, error) {
	var last []string
	if err := latestNumbered(query, column, prefix).Pluck(column, &last).Error; err != nil {
		return 0, err
	}
	if len(last) == 0 {
		return 1, nil
	}
	return nextFromNumber(last[0], prefix)
}
