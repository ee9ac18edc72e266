package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var quoteSortColumns = map[string]bool{
	"number":     true,
	"total":      true,
	"created_at": true,
	"status":     true,
}

type quoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) domainRepo.QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	return database.Conn(ctx, r.db).Omit("Client").Create(quote).Error
}

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return first[entity.Quote](scoped(ctx, r.db), "id = ?", id)
}

func (r *quoteRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return first[entity.Quote](scoped(ctx, r.db).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }),
		"id = ?", id)
}

func (r *quoteRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	// Lock the quote row only; items are loaded in a second statement.
	quote, err := first[entity.Quote](forUpdate(scoped(ctx, r.db)), "id = ?", id)
	if err != nil || quote == nil {
		return quote, err
	}
	err = database.Conn(ctx, r.db).
		Where("quote_id = ?", quote.ID).
		Order("created_at ASC").
		Find(&quote.Items).Error
	return quote, err
}

func (r *quoteRepository) SaveTotals(ctx context.Context, quote *entity.Quote) error {
	return database.Conn(ctx, r.db).Model(quote).Select(
		"ProspectName", "ProspectCompany", "ProspectEmail", "ProspectPhone",
		"ClientID", "ReceivableID", "Subtotal", "DiscountPercent", "DiscountAmount", "Total",
		"Status", "ValidUntil", "Notes", "SentAt", "ConvertedAt",
	).Updates(quote).Error
}

func (r *quoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&entity.QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Scopes(TenantScope(ctx)).Delete(&entity.Quote{}, "id = ?", id).Error
	})
}

func (r *quoteRepository) List(ctx context.Context, filter domainRepo.QuoteFilter) ([]entity.Quote, int64, error) {
	var quotes []entity.Quote
	var total int64

	query := scoped(ctx, r.db).Model(&entity.Quote{})
	if filter.Search != "" {
		query = query.Where("number ILIKE ? OR prospect_company ILIKE ? OR prospect_name ILIKE ?",
			like(filter.Search), like(filter.Search), like(filter.Search))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}

	query, err := paginate(query, filter.Pagination, &total)
	if err != nil {
		return nil, 0, err
	}
	err = query.
		Order(orderBy(filter.SortBy, filter.SortOrder, quoteSortColumns, "created_at DESC")).
		Find(&quotes).Error
	return quotes, total, err
}

// NextSequence returns the next number for quotes whose number starts with
// prefix. Unscoped so soft-deleted quotes keep their numbers reserved.
func (r *quoteRepository) NextSequence(ctx context.Context, prefix string) (int, error) {
	return nextNumber(scoped(ctx, r.db).Unscoped().Model(&entity.Quote{}), "number", prefix)
}

func (r *quoteRepository) CountByStatus(ctx context.Context) ([]domainRepo.QuoteStatusCount, error) {
	var rows []domainRepo.QuoteStatusCount
	err := scoped(ctx, r.db).Model(&entity.Quote{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *quoteRepository) AddItem(ctx context.Context, item *entity.QuoteItem) error {
	return database.Conn(ctx, r.db).Create(item).Error
}

func (r *quoteRepository) UpdateItem(ctx context.Context, item *entity.QuoteItem) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(item).Error
}

func (r *quoteRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).Delete(&entity.QuoteItem{}, "id = ?", id).Error
}
