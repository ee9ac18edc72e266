package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type receivableRepository struct {
	db *gorm.DB
}

// NewReceivableRepository creates a new receivable repository
func NewReceivableRepository(db *gorm.DB) domainRepo.ReceivableRepository {
	return &receivableRepository{db: db}
}

func (r *receivableRepository) Create(ctx context.Context, receivable *entity.Receivable) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(receivable).Error
}

func (r *receivableRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receivable, error) {
	return first[entity.Receivable](scoped(ctx, r.db).Preload("Client"), "id = ?", id)
}

func (r *receivableRepository) GetWithPayments(ctx context.Context, id uuid.UUID) (*entity.Receivable, error) {
	return first[entity.Receivable](scoped(ctx, r.db).
		Preload("Client").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC, created_at ASC") }),
		"id = ?", id)
}

func (r *receivableRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Receivable, error) {
	return first[entity.Receivable](forUpdate(scoped(ctx, r.db)), "id = ?", id)
}

func (r *receivableRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*entity.Receivable, error) {
	return first[entity.Receivable](scoped(ctx, r.db), "quote_id = ?", quoteID)
}

func (r *receivableRepository) Update(ctx context.Context, receivable *entity.Receivable) error {
	return database.Conn(ctx, r.db).Model(receivable).
		Select("Concept", "TotalAmount", "PaidAmount", "Balance", "Status", "DueDate").
		Updates(receivable).Error
}

func (r *receivableRepository) List(ctx context.Context, filter domainRepo.ReceivableFilter) ([]entity.Receivable, int64, error) {
	var receivables []entity.Receivable
	var total int64

	query := scoped(ctx, r.db).Model(&entity.Receivable{})
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ClientIDs != nil {
		if len(filter.ClientIDs) == 0 {
			return []entity.Receivable{}, 0, nil
		}
		query = query.Where("client_id IN ?", filter.ClientIDs)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}

	query, err := paginate(query, filter.Pagination, &total)
	if err != nil {
		return nil, 0, err
	}
	err = query.Preload("Client").Order("due_date ASC, created_at ASC").Find(&receivables).Error
	return receivables, total, err
}

func (r *receivableRepository) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := scoped(ctx, r.db).Model(&entity.Receivable{}).
		Where("status <> ?", enum.ReceivableStatusPaid).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&sum).Error
	return sum.Decimal, err
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return database.Conn(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return first[entity.Payment](scoped(ctx, r.db), "id = ?", id)
}

func (r *paymentRepository) ListByReceivable(ctx context.Context, receivableID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := scoped(ctx, r.db).
		Where("receivable_id = ?", receivableID).
		Order("paid_at ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) SumByReceivable(ctx context.Context, receivableID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := scoped(ctx, r.db).Model(&entity.Payment{}).
		Where("receivable_id = ?", receivableID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum.Decimal, err
}

func (r *paymentRepository) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := scoped(ctx, r.db).Model(&entity.Payment{}).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum.Decimal, err
}
