package service

import (
	"context"
	"fmt"

	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// AccountingService posts and reports journal entries
type AccountingService struct {
	accountingRepo repository.AccountingRepository
}

// NewAccountingService creates a new accounting service
func NewAccountingService(accountingRepo repository.AccountingRepository) *AccountingService {
	return &AccountingService{accountingRepo: accountingRepo}
}

func (s *AccountingService) lockAccount(ctx context.Context, code string) (*entity.LedgerAccount, error) {
	account, err := s.accountingRepo.GetAccountForUpdate(ctx, code)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperror.NewUnprocessableError(fmt.Sprintf("Ledger account %s is not configured for this firm", code))
	}
	return account, nil
}

// postPayment books a collected payment: debit Bancos, credit Clientes
// Nacionales. It must run inside the payment transaction.
func (s *AccountingService) postPayment(ctx context.Context, payment *entity.Payment, companyName string) (*entity.JournalEntry, error) {
	banks, err := s.lockAccount(ctx, entity.AccountCodeBanks)
	if err != nil {
		return nil, err
	}
	clients, err := s.lockAccount(ctx, entity.AccountCodeClients)
	if err != nil {
		return nil, err
	}

	entry := &entity.JournalEntry{
		TenantID:  payment.TenantID,
		Type:      enum.JournalTypeIncome,
		Concept:   fmt.Sprintf("Cobro a %s - Ref: %s", companyName, payment.Reference),
		PaymentID: &payment.ID,
		CreatedBy: payment.RecordedBy,
		PostedAt:  payment.PaidAt,
		Lines: []entity.JournalLine{
			{AccountID: banks.ID, Debit: payment.Amount, Reference: "Pago " + string(payment.Method)},
			{AccountID: clients.ID, Credit: payment.Amount, Reference: "Cobro factura"},
		},
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("post payment %s: %w", payment.ID, err)
	}
	if err := s.accountingRepo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.accountingRepo.AdjustBalance(ctx, banks.ID, payment.Amount); err != nil {
		return nil, err
	}
	if err := s.accountingRepo.AdjustBalance(ctx, clients.ID, payment.Amount.Neg()); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListAccounts returns the chart of accounts
func (s *AccountingService) ListAccounts(ctx context.Context) ([]entity.LedgerAccount, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceFinance); err != nil {
		return nil, err
	}
	return s.accountingRepo.ListAccounts(ctx)
}

// ListEntries returns journal entries newest first
func (s *AccountingService) ListEntries(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.JournalEntry], error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceFinance); err != nil {
		return nil, err
	}
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	entries, total, err := s.accountingRepo.ListEntries(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(entries, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// TrialBalance aggregates debits and credits per account
func (s *AccountingService) TrialBalance(ctx context.Context) ([]entity.TrialBalanceRow, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceFinance); err != nil {
		return nil, err
	}
	return s.accountingRepo.TrialBalance(ctx)
}
