package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/signing"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (e *env) receivable(client *entity.Client, total string) *entity.Receivable {
	r := entity.NewReceivable(e.tenant.ID, client.ID, nil, "Honorarios", decimal.RequireFromString(total), time.Now().AddDate(0, 0, 30))
	e.receivables.items[r.ID] = r
	return r
}

func pay(amount string, method enum.PaymentMethod) *PaymentInput {
	return &PaymentInput{Amount: decimal.RequireFromString(amount), Method: method, Reference: "SPEI-1"}
}

func TestApplyPayment_PartialThenPaid(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	r := e.receivable(client, "1000.00")

	res, err := e.paymentSvc.ApplyPayment(e.ctx(), r.ID, pay("400", enum.PaymentMethodTransfer))
	require.NoError(t, err)
	assert.Equal(t, enum.ReceivableStatusPartial, res.Receivable.Status)
	assert.True(t, decimal.RequireFromString("600").Equal(res.Receivable.Balance))

	res, err = e.paymentSvc.ApplyPayment(e.ctx(), r.ID, pay("600", enum.PaymentMethodCash))
	require.NoError(t, err)
	assert.Equal(t, enum.ReceivableStatusPaid, res.Receivable.Status)
	assert.True(t, res.Receivable.Balance.IsZero())
	assert.Nil(t, res.Invoice, "auto invoicing is off by default")

	_, err = e.paymentSvc.ApplyPayment(e.ctx(), r.ID, pay("1", enum.PaymentMethodCash))
	assert.True(t, apperror.HasCode(err, http.StatusConflict))
	assert.Len(t, e.payments.payments, 2)
}

func TestApplyPayment_PostsBalancedEntry(t *testing.T) {
	e := newEnv(t)
	client := e.fiscalClient("Abarrotes El Sol")
	r := e.receivable(client, "1000.00")

	res, err := e.paymentSvc.ApplyPayment(e.ctx(), r.ID, pay("250.50", enum.PaymentMethodCard))
	require.NoError(t, err)

	require.NotNil(t, res.Entry)
	assert.Equal(t, enum.JournalTypeIncome, res.Entry.Type)
	assert.Equal(t, "Cobro a Abarrotes El Sol - Ref: SPEI-1", res.Entry.Concept)
	require.NoError(t, res.Entry.Validate())
	assert.Equal(t, res.Payment.ID, *res.Entry.PaymentID)

	amount := decimal.RequireFromString("250.50")
	assert.True(t, amount.Equal(e.ledger.accounts[entity.AccountCodeBanks].Balance))
	assert.True(t, amount.Neg().Equal(e.ledger.accounts[entity.AccountCodeClients].Balance))
}

func TestApplyPayment_RejectsInvalidInput(t *testing.T) {
	e := newEnv(t)
	r := e.receivable(e.fiscalClient("Abarrotes El Sol"), "1000.00")

	_, err := e.paymentSvc.ApplyPayment(e.ctx(), r.ID, pay("0", enum.PaymentMethodCash))
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Equal(t, "amount", appErr.Errors[0].Field)

	_, err = e.paymentSvc.ApplyPayment(e.ctx(), r.ID, pay("10", "bitcoin"))
	assert.Equal(t, "method", apperror.GetAppError(err).Errors[0].Field)

	_, err = e.paymentSvc.ApplyPayment(e.ctx(), uuid.New(), pay("10", enum.PaymentMethodCash))
	assert.True(t, apperror.HasCode(err, http.StatusNotFound))

	assert.Empty(t, e.payments.payments)
	assert.Empty(t, e.ledger.entries)
}

func TestApplyPayment_MissingLedgerAccountFails(t *testing.T) {
	e := newEnv(t)
	delete(e.ledger.accounts, entity.AccountCodeClients)
	r := e.receivable(e.fiscalClient("Abarrotes El Sol"), "1000.00")

	_, err := e.paymentSvc.ApplyPayment(e.ctx(), r.ID, pay("100", enum.PaymentMethodCash))
	assert.True(t, apperror.HasCode(err, http.StatusUnprocessableEntity))
	assert.Contains(t, err.Error(), entity.AccountCodeClients)

	// nothing of the payment survives the rollback
	assert.Empty(t, e.ledger.entries)
	assert.Empty(t, e.payments.payments)
	got := e.receivables.items[r.ID]
	assert.Equal(t, enum.ReceivableStatusPending, got.Status)
	assert.True(t, got.PaidAmount.IsZero())
	assert.True(t, decimal.RequireFromString("1000").Equal(got.Balance))
}

func TestApplyPayment_RequiresFinanceAccess(t *testing.T) {
	e := newEnv(t)
	r := e.receivable(e.fiscalClient("Abarrotes El Sol"), "1000.00")

	_, err := e.paymentSvc.ApplyPayment(e.ctxAs(member(entity.PermClientsEdit)), r.ID, pay("100", enum.PaymentMethodCash))
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = e.paymentSvc.ApplyPayment(e.ctxAs(member(entity.PermFinanceAccess)), r.ID, pay("100", enum.PaymentMethodCash))
	assert.NoError(t, err)
}

func TestApplyPayment_AutoInvoicesWithQuoteDiscount(t *testing.T) {
	e := newEnv(t)
	e.tenant.Settings.AutoInvoiceOnPaid = true

	q := e.quote("Abarrotes El Sol", "", "1000.00")
	require.NoError(t, q.SetDiscountPercent(decimal.NewFromInt(10)))
	e.fiscalClient("Abarrotes El Sol")

	e.signer.On("Sign", mock.Anything, mock.MatchedBy(func(doc *signing.CFDIRequest) bool {
		return doc.Folio == "F-0001" && decimal.Decimal(doc.Items[0].Discount).Equal(decimal.NewFromInt(100))
	})).Return(&signing.Result{SignatureID: "sig-1", FiscalUUID: "8f3b1c9e-0000-4000-8000-000000000001", CfdiSign: "abcdefghijXYZ12345", XML: []byte("<cfdi/>")}, nil)

	conv, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, nil)
	require.NoError(t, err)
	res, err := e.paymentSvc.ApplyPayment(e.ctx(), conv.Receivable.ID, pay("900", enum.PaymentMethodTransfer))
	require.NoError(t, err)

	require.NotNil(t, res.Invoice)
	assert.True(t, res.Invoice.IsSigned())
	assert.True(t, decimal.RequireFromString("900").Equal(res.Invoice.TotalAmount))
	assert.True(t, decimal.RequireFromString("775.86").Equal(res.Invoice.TaxBase))
	assert.True(t, decimal.RequireFromString("124.14").Equal(res.Invoice.TaxAmount))
	e.signer.AssertExpectations(t)
}

func TestApplyPayment_AutoInvoiceFailureKeepsPayment(t *testing.T) {
	e := newEnv(t)
	e.tenant.Settings.AutoInvoiceOnPaid = true
	r := e.receivable(e.fiscalClient("Abarrotes El Sol"), "1160.00")
	e.signer.On("Sign", mock.Anything, mock.Anything).Return(nil, &signing.APIError{StatusCode: 400, Message: "RFC del receptor inválido"})

	res, err := e.paymentSvc.ApplyPayment(e.ctx(), r.ID, pay("1160", enum.PaymentMethodTransfer))
	require.NoError(t, err)
	assert.Nil(t, res.Invoice)
	assert.Equal(t, enum.ReceivableStatusPaid, res.Receivable.Status)
	assert.Empty(t, e.invoices.invoices)
}
