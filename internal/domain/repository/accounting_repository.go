package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// AccountingRepository defines the interface for the chart of accounts and journal
type AccountingRepository interface {
	CreateAccount(ctx context.Context, account *entity.LedgerAccount) error
	// GetAccountForUpdate locks the account row by code.
	GetAccountForUpdate(ctx context.Context, code string) (*entity.LedgerAccount, error)
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error
	ListAccounts(ctx context.Context) ([]entity.LedgerAccount, error)
	CreateEntry(ctx context.Context, entry *entity.JournalEntry) error
	ListEntries(ctx context.Context, params *pagination.PaginationParams) ([]entity.JournalEntry, int64, error)
	TrialBalance(ctx context.Context) ([]entity.TrialBalanceRow, error)
}
