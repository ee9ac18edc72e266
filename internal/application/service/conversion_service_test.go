package service

import (
	"net/http"
	"testing"

	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertQuote_CreatesClientAndReceivable(t *testing.T) {
	e := newEnv(t)
	q := e.quote("Abarrotes El Sol", "compras@elsol.mx", "1000.00")

	res, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, nil)
	require.NoError(t, err)

	assert.True(t, res.ClientCreated)
	assert.False(t, res.AlreadyConverted)
	assert.Equal(t, "Abarrotes El Sol", res.Client.CompanyName)
	assert.True(t, decimal.RequireFromString("1000").Equal(res.Receivable.TotalAmount))
	assert.Equal(t, enum.ReceivableStatusPending, res.Receivable.Status)
	assert.Equal(t, "Cotización COT-202610-0001", res.Receivable.Concept)

	stored := e.quotes.quotes[q.ID]
	assert.Equal(t, enum.QuoteStatusConverted, stored.Status)
	require.NotNil(t, stored.ReceivableID)
	assert.Equal(t, res.Receivable.ID, *stored.ReceivableID)

	// the new client gets its checklist and drive folders
	reqs, _ := e.reqs.ListByClient(e.ctx(), res.Client.ID)
	assert.Len(t, reqs, 13)
	assert.ElementsMatch(t, []string{"Licencia", "Funcionamiento", "Protección Civil", "Cotizaciones"}, e.folders.roots(res.Client.ID))
}

func TestConvertQuote_SecondCallReturnsExistingReceivable(t *testing.T) {
	e := newEnv(t)
	q := e.quote("Abarrotes El Sol", "compras@elsol.mx", "1000.00")

	first, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, &ConvertInput{ApplyDeposit: true})
	require.NoError(t, err)
	second, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, &ConvertInput{ApplyDeposit: true})
	require.NoError(t, err)

	assert.True(t, second.AlreadyConverted)
	assert.Equal(t, first.Receivable.ID, second.Receivable.ID)
	assert.Len(t, e.receivables.items, 1)
	assert.Len(t, e.payments.payments, 1, "the deposit is not taken twice")
	assert.Len(t, e.clients.clients, 1)
}

func TestConvertQuote_ReusesClientByCompanyName(t *testing.T) {
	e := newEnv(t)
	existing := e.fiscalClient("Abarrotes El Sol")
	q := e.quote("ABARROTES EL SOL", "otra@correo.mx", "500.00")

	res, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, nil)
	require.NoError(t, err)

	assert.False(t, res.ClientCreated)
	assert.Equal(t, existing.ID, res.Client.ID)
	assert.Len(t, e.clients.clients, 1)
}

func TestConvertQuote_FallsBackToEmail(t *testing.T) {
	e := newEnv(t)
	existing := e.fiscalClient("Ferretería Norte")
	q := e.quote("Ferretería del Norte SA", existing.Email, "500.00")

	res, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, res.Client.ID)
}

func TestConvertQuote_AmbiguousMatchIsConflict(t *testing.T) {
	e := newEnv(t)
	a := e.fiscalClient("Ferretería Norte")
	b := e.fiscalClient("Ferretería Sur")
	b.Email = a.Email
	q := e.quote("Ferretería Centro", a.Email, "500.00")

	_, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, nil)
	assert.True(t, apperror.HasCode(err, http.StatusConflict))
	assert.Empty(t, e.receivables.items)
}

func TestConvertQuote_ZeroTotalIsRejected(t *testing.T) {
	e := newEnv(t)
	q := e.quote("Abarrotes El Sol", "", "0.00")

	_, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, nil)
	assert.True(t, apperror.HasCode(err, http.StatusUnprocessableEntity))
	assert.Empty(t, e.receivables.items)
}

func TestConvertQuote_DepositPostsPayment(t *testing.T) {
	e := newEnv(t)
	q := e.quote("Abarrotes El Sol", "", "1000.00")

	res, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, &ConvertInput{ApplyDeposit: true})
	require.NoError(t, err)
	require.NotNil(t, res.Deposit)

	assert.True(t, res.Deposit.Payment.IsDeposit)
	assert.Equal(t, enum.PaymentMethodTransfer, res.Deposit.Payment.Method)
	assert.Equal(t, "Anticipo COT-202610-0001", res.Deposit.Payment.Reference)
	assert.True(t, decimal.RequireFromString("500").Equal(res.Deposit.Payment.Amount))
	assert.Equal(t, enum.ReceivableStatusPartial, res.Receivable.Status)
	assert.True(t, decimal.RequireFromString("500").Equal(res.Receivable.Balance))
	assert.Len(t, e.ledger.entries, 1)
}

func TestConvertQuote_ZeroDepositFractionIsRejected(t *testing.T) {
	e := newEnv(t)
	e.tenant.Settings.DepositFraction = decimal.NewNullDecimal(decimal.Zero)
	q := e.quote("Abarrotes El Sol", "", "1000.00")

	_, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, &ConvertInput{ApplyDeposit: true})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Equal(t, "No deposit is configured for this firm", appErr.Message)
	assert.Empty(t, e.receivables.items)
	assert.Empty(t, e.payments.payments)
}

func TestConvertQuote_RequiresFinancePermission(t *testing.T) {
	e := newEnv(t)
	q := e.quote("Abarrotes El Sol", "", "1000.00")
	ctx := e.ctxAs(member(entity.PermQuotesManage))

	_, err := e.conversionSvc.ConvertQuote(ctx, q.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
