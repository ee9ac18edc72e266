package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type accountingRepository struct {
	db *gorm.DB
}

// NewAccountingRepository creates a new accounting repository
func NewAccountingRepository(db *gorm.DB) domainRepo.AccountingRepository {
	return &accountingRepository{db: db}
}

func (r *accountingRepository) CreateAccount(ctx context.Context, account *entity.LedgerAccount) error {
	return database.Conn(ctx, r.db).Create(account).Error
}

func (r *accountingRepository) GetAccountForUpdate(ctx context.Context, code string) (*entity.LedgerAccount, error) {
	return first[entity.LedgerAccount](forUpdate(scoped(ctx, r.db)), "code = ?", code)
}

func (r *accountingRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	return database.Conn(ctx, r.db).Model(&entity.LedgerAccount{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
}

func (r *accountingRepository) ListAccounts(ctx context.Context) ([]entity.LedgerAccount, error) {
	var accounts []entity.LedgerAccount
	err := scoped(ctx, r.db).Order("code ASC").Find(&accounts).Error
	return accounts, err
}

func (r *accountingRepository) CreateEntry(ctx context.Context, entry *entity.JournalEntry) error {
	// Lines are inserted by gorm's has-many association save.
	return database.Conn(ctx, r.db).Create(entry).Error
}

func (r *accountingRepository) ListEntries(ctx context.Context, params *pagination.PaginationParams) ([]entity.JournalEntry, int64, error) {
	var entries []entity.JournalEntry
	var total int64

	query, err := paginate(scoped(ctx, r.db).Model(&entity.JournalEntry{}), params, &total)
	if err != nil {
		return nil, 0, err
	}
	err = query.
		Preload("Lines.Account").
		Order("posted_at DESC, created_at DESC").
		Find(&entries).Error
	return entries, total, err
}

func (r *accountingRepository) TrialBalance(ctx context.Context) ([]entity.TrialBalanceRow, error) {
	var rows []entity.TrialBalanceRow
	err := scoped(ctx, r.db).Model(&entity.LedgerAccount{}).
		Select(`ledger_accounts.id AS account_id, ledger_accounts.code, ledger_accounts.name,
			COALESCE(SUM(journal_lines.debit), 0) AS debit,
			COALESCE(SUM(journal_lines.credit), 0) AS credit,
			ledger_accounts.balance`).
		Joins("LEFT JOIN journal_lines ON journal_lines.account_id = ledger_accounts.id").
		Group("ledger_accounts.id").
		Order("ledger_accounts.code ASC").
		Scan(&rows).Error
	return rows, err
}
