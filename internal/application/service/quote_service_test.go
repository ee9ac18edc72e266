package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCatalog struct {
	repository.ServiceItemRepository
	items map[uuid.UUID]*entity.ServiceItem
}

func (m *memCatalog) GetByID(_ context.Context, id uuid.UUID) (*entity.ServiceItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func newQuoteService(e *env, catalog ...*entity.ServiceItem) *QuoteService {
	m := &memCatalog{items: map[uuid.UUID]*entity.ServiceItem{}}
	for _, it := range catalog {
		m.items[it.ID] = it
	}
	tenants := &memTenants{tenants: map[uuid.UUID]*entity.Tenant{e.tenant.ID: e.tenant}}
	s := NewQuoteService(e.quotes, m, tenants, e.tx, e.renderer, nil, NewActivityService(e.activity), testBilling, testIssuer)
	s.now = func() time.Time { return time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestCreateQuote_NumbersAndPricesFromCatalog(t *testing.T) {
	e := newEnv(t)
	svc := &entity.ServiceItem{ID: uuid.New(), Name: "Licencia de funcionamiento", UnitPrice: decimal.RequireFromString("3500.00"), IsActive: true}
	qs := newQuoteService(e, svc)

	ten := decimal.NewFromInt(10)
	custom := decimal.RequireFromString("500")
	q, err := qs.CreateQuote(e.ctx(), &QuoteInput{
		ProspectCompany: strPtr("Abarrotes El Sol"),
		DiscountPercent: &ten,
		Items: []QuoteItemInput{
			{ServiceID: &svc.ID, Quantity: 2},
			{Description: "Gestoría", Quantity: 1, UnitPrice: &custom},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "COT-202610-0001", q.Number)
	assert.Equal(t, enum.QuoteStatusDraft, q.Status)
	assert.Equal(t, "Licencia de funcionamiento", q.Items[0].Description)
	assert.True(t, decimal.RequireFromString("7500").Equal(q.Subtotal))
	assert.True(t, decimal.RequireFromString("750").Equal(q.DiscountAmount))
	assert.True(t, decimal.RequireFromString("6750").Equal(q.Total))

	next, err := qs.CreateQuote(e.ctx(), &QuoteInput{ProspectCompany: strPtr("Ferretería Norte")})
	require.NoError(t, err)
	assert.Equal(t, "COT-202610-0002", next.Number)
}

func TestCreateQuote_InvalidLineStoresNothing(t *testing.T) {
	e := newEnv(t)
	qs := newQuoteService(e)
	price := decimal.RequireFromString("100")

	_, err := qs.CreateQuote(e.ctx(), &QuoteInput{
		ProspectCompany: strPtr("Abarrotes El Sol"),
		Items:           []QuoteItemInput{{Description: "Trámite", Quantity: 0, UnitPrice: &price}},
	})
	assert.True(t, apperror.HasCode(err, http.StatusUnprocessableEntity))
	assert.Empty(t, e.quotes.quotes)
}

func TestQuote_ConvertedCannotBeEdited(t *testing.T) {
	e := newEnv(t)
	qs := newQuoteService(e)
	q := e.quote("Abarrotes El Sol", "", "1000.00")
	_, err := e.conversionSvc.ConvertQuote(e.ctx(), q.ID, nil)
	require.NoError(t, err)

	price := decimal.NewFromInt(10)
	_, err = qs.AddItem(e.ctx(), q.ID, QuoteItemInput{Description: "Extra", Quantity: 1, UnitPrice: &price})
	assert.True(t, apperror.HasCode(err, http.StatusConflict))

	_, err = qs.ChangeStatus(e.ctx(), q.ID, enum.QuoteStatusDraft)
	assert.True(t, apperror.HasCode(err, http.StatusConflict))

	assert.True(t, apperror.HasCode(qs.DeleteQuote(e.ctx(), q.ID), http.StatusConflict))
}

func TestChangeStatus_SentStampsDate(t *testing.T) {
	e := newEnv(t)
	qs := newQuoteService(e)
	q := e.quote("Abarrotes El Sol", "", "1000.00")

	got, err := qs.ChangeStatus(e.ctx(), q.ID, enum.QuoteStatusSent)
	require.NoError(t, err)
	require.NotNil(t, got.SentAt)

	_, err = qs.ChangeStatus(e.ctx(), q.ID, enum.QuoteStatusConverted)
	assert.True(t, apperror.HasCode(err, http.StatusUnprocessableEntity))
}
