package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Chart of accounts codes posted by every collected payment.
const (
	AccountCodeBanks   = "102-01-000"
	AccountCodeClients = "105-01-000"
)

var (
	ErrUnbalancedEntry = errors.New("journal entry debits and credits do not match")
	ErrEmptyEntry      = errors.New("journal entry has no lines")
)

// LedgerAccount is an account of a firm's chart of accounts
type LedgerAccount struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_tenant_code" json:"tenant_id"`
	Code      string             `gorm:"size:20;not null;uniqueIndex:idx_accounts_tenant_code" json:"code"`
	Name      string             `gorm:"size:255;not null" json:"name"`
	Nature    enum.AccountNature `gorm:"size:10;not null" json:"nature"`
	Balance   decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new account
func (a *LedgerAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LedgerAccount model
func (LedgerAccount) TableName() string {
	return "ledger_accounts"
}

// DefaultChartOfAccounts are created for each new tenant.
func DefaultChartOfAccounts(tenantID uuid.UUID) []LedgerAccount {
	return []LedgerAccount{
		{TenantID: tenantID, Code: AccountCodeBanks, Name: "Bancos", Nature: enum.AccountNatureDebit, Balance: decimal.Zero},
		{TenantID: tenantID, Code: AccountCodeClients, Name: "Clientes Nacionales", Nature: enum.AccountNatureDebit, Balance: decimal.Zero},
	}
}

// JournalEntry is a posted accounting voucher (póliza)
type JournalEntry struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Type      enum.JournalType `gorm:"size:10;not null" json:"type"`
	Concept   string           `gorm:"size:255;not null" json:"concept"`
	PaymentID *uuid.UUID       `gorm:"type:uuid;index" json:"payment_id,omitempty"`
	CreatedBy uuid.UUID        `gorm:"type:uuid" json:"created_by"`
	PostedAt  time.Time        `gorm:"not null" json:"posted_at"`
	CreatedAt time.Time        `json:"created_at"`

	Lines []JournalLine `gorm:"foreignKey:JournalEntryID" json:"lines"`
}

// BeforeCreate generates a UUID before creating a new entry
func (j *JournalEntry) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the JournalEntry model
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// Validate checks the entry has lines and that it balances.
func (j *JournalEntry) Validate() error {
	if len(j.Lines) == 0 {
		return ErrEmptyEntry
	}
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range j.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	if !debit.Equal(credit) {
		return ErrUnbalancedEntry
	}
	return nil
}

// JournalLine is one debit or credit movement of an entry
type JournalLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"journal_entry_id"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	Debit          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"debit"`
	Credit         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"credit"`
	Reference      string          `gorm:"size:255" json:"reference"`

	Account *LedgerAccount `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// BeforeCreate generates a UUID before creating a new line
func (l *JournalLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the JournalLine model
func (JournalLine) TableName() string {
	return "journal_lines"
}

// TrialBalanceRow is the aggregated movement of one account.
type TrialBalanceRow struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}
