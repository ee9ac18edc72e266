package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/render"
	infraRepo "github.com/sangkips/lexdesk-api/internal/infrastructure/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/signing"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/storage"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// The fakes embed the repository interface they stand in for, so a call to a
// method a test does not expect panics.

// snapshotter is a fake whose state memTx can put back.
type snapshotter interface {
	snapshot() (restore func())
}

// memTx behaves like a database transaction over the registered fakes: when
// fn fails every change they saw is undone. Nested calls act as savepoints.
type memTx struct {
	calls  int
	stores []snapshotter
}

func (t *memTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]*V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

type memTenants struct {
	repository.TenantRepository
	tenants map[uuid.UUID]*entity.Tenant
}

func (m *memTenants) GetByID(_ context.Context, id uuid.UUID) (*entity.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

type memClients struct {
	repository.ClientRepository
	mu       sync.Mutex
	clients  map[uuid.UUID]*entity.Client
	assigned map[uuid.UUID][]uuid.UUID
}

func newMemClients(clients ...*entity.Client) *memClients {
	m := &memClients{clients: map[uuid.UUID]*entity.Client{}, assigned: map[uuid.UUID][]uuid.UUID{}}
	for _, c := range clients {
		m.clients[c.ID] = c
	}
	return m
}

func (m *memClients) Create(_ context.Context, c *entity.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *memClients) GetByID(_ context.Context, id uuid.UUID) (*entity.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memClients) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	return m.GetByID(ctx, id)
}

func (m *memClients) Update(ctx context.Context, c *entity.Client) error {
	return m.Create(ctx, c)
}

func (m *memClients) find(match func(c *entity.Client) bool) []entity.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Client
	for _, c := range m.clients {
		if match(c) {
			out = append(out, *c)
		}
	}
	return out
}

func (m *memClients) FindByCompanyName(_ context.Context, name string) ([]entity.Client, error) {
	return m.find(func(c *entity.Client) bool { return strings.EqualFold(c.CompanyName, name) }), nil
}

func (m *memClients) FindByEmail(_ context.Context, email string) ([]entity.Client, error) {
	return m.find(func(c *entity.Client) bool { return strings.EqualFold(c.Email, email) }), nil
}

func (m *memClients) AssignUser(_ context.Context, clientID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assigned[clientID] = append(m.assigned[clientID], userID)
	return nil
}

func (m *memClients) List(_ context.Context, filter repository.ClientFilter) ([]entity.Client, int64, error) {
	all := m.find(func(*entity.Client) bool { return true })
	return all, int64(len(all)), nil
}

func (m *memClients) snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clients := cloneMap(m.clients)
	assigned := make(map[uuid.UUID][]uuid.UUID, len(m.assigned))
	for k, v := range m.assigned {
		assigned[k] = append([]uuid.UUID(nil), v...)
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.clients, m.assigned = clients, assigned
	}
}

type memFields struct {
	repository.ClientFieldRepository
	defs []entity.ClientFieldDefinition
}

func (m *memFields) List(context.Context) ([]entity.ClientFieldDefinition, error) {
	return m.defs, nil
}

func (m *memFields) GetByKey(_ context.Context, key string) (*entity.ClientFieldDefinition, error) {
	for i := range m.defs {
		if m.defs[i].Key == key {
			return &m.defs[i], nil
		}
	}
	return nil, nil
}

func (m *memFields) Create(_ context.Context, def *entity.ClientFieldDefinition) error {
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	m.defs = append(m.defs, *def)
	return nil
}

type memFolders struct {
	repository.FolderRepository
	folders map[uuid.UUID]*entity.Folder
}

func newMemFolders() *memFolders {
	return &memFolders{folders: map[uuid.UUID]*entity.Folder{}}
}

func (m *memFolders) Create(_ context.Context, f *entity.Folder) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	cp := *f
	m.folders[f.ID] = &cp
	return nil
}

func (m *memFolders) GetByID(_ context.Context, id uuid.UUID) (*entity.Folder, error) {
	f, ok := m.folders[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (m *memFolders) FindRoot(_ context.Context, clientID uuid.UUID, name string) (*entity.Folder, error) {
	for _, f := range m.folders {
		if f.ClientID == clientID && f.ParentID == nil && f.Name == name {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memFolders) roots(clientID uuid.UUID) []string {
	var names []string
	for _, f := range m.folders {
		if f.ClientID == clientID && f.ParentID == nil {
			names = append(names, f.Name)
		}
	}
	return names
}

func (m *memFolders) snapshot() func() {
	folders := cloneMap(m.folders)
	return func() { m.folders = folders }
}

type memDocuments struct {
	repository.DocumentRepository
	docs map[uuid.UUID]*entity.Document
}

func newMemDocuments() *memDocuments {
	return &memDocuments{docs: map[uuid.UUID]*entity.Document{}}
}

func (m *memDocuments) Create(_ context.Context, d *entity.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	m.docs[d.ID] = &cp
	return nil
}

func (m *memDocuments) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memDocuments) Update(ctx context.Context, d *entity.Document) error {
	return m.Create(ctx, d)
}

func (m *memDocuments) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.docs, id)
	return nil
}

func (m *memDocuments) ListTrash(_ context.Context, clientID *uuid.UUID) ([]entity.Document, error) {
	var out []entity.Document
	for _, d := range m.docs {
		if d.InTrash && (clientID == nil || d.ClientID == *clientID) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDocuments) snapshot() func() {
	docs := cloneMap(m.docs)
	return func() { m.docs = docs }
}

type memRequirements struct {
	repository.RequirementRepository
	reqs map[uuid.UUID]*entity.Requirement
}

func newMemRequirements() *memRequirements {
	return &memRequirements{reqs: map[uuid.UUID]*entity.Requirement{}}
}

func (m *memRequirements) CreateBatch(_ context.Context, reqs []entity.Requirement) error {
	for i := range reqs {
		if reqs[i].ID == uuid.Nil {
			reqs[i].ID = uuid.New()
		}
		cp := reqs[i]
		m.reqs[cp.ID] = &cp
	}
	return nil
}

func (m *memRequirements) GetByID(_ context.Context, id uuid.UUID) (*entity.Requirement, error) {
	r, ok := m.reqs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memRequirements) Update(_ context.Context, r *entity.Requirement) error {
	cp := *r
	m.reqs[r.ID] = &cp
	return nil
}

func (m *memRequirements) ListByClient(_ context.Context, clientID uuid.UUID) ([]entity.Requirement, error) {
	var out []entity.Requirement
	for _, r := range m.reqs {
		if r.ClientID == clientID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRequirements) ResetByDocument(_ context.Context, documentID uuid.UUID) (int64, error) {
	var n int64
	for _, r := range m.reqs {
		if r.DocumentID != nil && *r.DocumentID == documentID {
			r.Reset()
			n++
		}
	}
	return n, nil
}

func (m *memRequirements) snapshot() func() {
	reqs := cloneMap(m.reqs)
	return func() { m.reqs = reqs }
}

type memQuotes struct {
	repository.QuoteRepository
	quotes map[uuid.UUID]*entity.Quote
	seq    map[string]int
}

func newMemQuotes(quotes ...*entity.Quote) *memQuotes {
	m := &memQuotes{quotes: map[uuid.UUID]*entity.Quote{}, seq: map[string]int{}}
	for _, q := range quotes {
		m.quotes[q.ID] = q
	}
	return m
}

func (m *memQuotes) copyOf(id uuid.UUID) *entity.Quote {
	q, ok := m.quotes[id]
	if !ok {
		return nil
	}
	cp := *q
	cp.Items = append([]entity.QuoteItem(nil), q.Items...)
	return &cp
}

func (m *memQuotes) Create(_ context.Context, q *entity.Quote) error {
	cp := *q
	cp.Items = append([]entity.QuoteItem(nil), q.Items...)
	m.quotes[q.ID] = &cp
	return nil
}

func (m *memQuotes) GetByID(_ context.Context, id uuid.UUID) (*entity.Quote, error) {
	return m.copyOf(id), nil
}

func (m *memQuotes) GetWithItems(_ context.Context, id uuid.UUID) (*entity.Quote, error) {
	return m.copyOf(id), nil
}

func (m *memQuotes) GetForUpdate(_ context.Context, id uuid.UUID) (*entity.Quote, error) {
	return m.copyOf(id), nil
}

func (m *memQuotes) SaveTotals(ctx context.Context, q *entity.Quote) error {
	return m.Create(ctx, q)
}

func (m *memQuotes) NextSequence(_ context.Context, prefix string) (int, error) {
	m.seq[prefix]++
	return m.seq[prefix], nil
}

func (m *memQuotes) AddItem(context.Context, *entity.QuoteItem) error    { return nil }
func (m *memQuotes) UpdateItem(context.Context, *entity.QuoteItem) error { return nil }
func (m *memQuotes) DeleteItem(context.Context, uuid.UUID) error         { return nil }

func (m *memQuotes) snapshot() func() {
	quotes := make(map[uuid.UUID]*entity.Quote, len(m.quotes))
	for id := range m.quotes {
		quotes[id] = m.copyOf(id)
	}
	seq := make(map[string]int, len(m.seq))
	for k, v := range m.seq {
		seq[k] = v
	}
	return func() { m.quotes, m.seq = quotes, seq }
}

type memReceivables struct {
	repository.ReceivableRepository
	items map[uuid.UUID]*entity.Receivable
}

func newMemReceivables() *memReceivables {
	return &memReceivables{items: map[uuid.UUID]*entity.Receivable{}}
}

func (m *memReceivables) Create(_ context.Context, r *entity.Receivable) error {
	cp := *r
	cp.Client = nil
	m.items[r.ID] = &cp
	return nil
}

func (m *memReceivables) GetByID(_ context.Context, id uuid.UUID) (*entity.Receivable, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memReceivables) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Receivable, error) {
	return m.GetByID(ctx, id)
}

func (m *memReceivables) GetByQuoteID(_ context.Context, quoteID uuid.UUID) (*entity.Receivable, error) {
	for _, r := range m.items {
		if r.QuoteID != nil && *r.QuoteID == quoteID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memReceivables) Update(ctx context.Context, r *entity.Receivable) error {
	return m.Create(ctx, r)
}

func (m *memReceivables) List(_ context.Context, filter repository.ReceivableFilter) ([]entity.Receivable, int64, error) {
	var out []entity.Receivable
	for _, r := range m.items {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *memReceivables) snapshot() func() {
	items := cloneMap(m.items)
	return func() { m.items = items }
}

type memPayments struct {
	repository.PaymentRepository
	payments []entity.Payment
}

func (m *memPayments) Create(_ context.Context, p *entity.Payment) error {
	m.payments = append(m.payments, *p)
	return nil
}

func (m *memPayments) SumByReceivable(_ context.Context, receivableID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range m.payments {
		if p.ReceivableID == receivableID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (m *memPayments) snapshot() func() {
	payments := append([]entity.Payment(nil), m.payments...)
	return func() { m.payments = payments }
}

type memAccounting struct {
	repository.AccountingRepository
	accounts map[string]*entity.LedgerAccount
	entries  []entity.JournalEntry
}

func newMemAccounting(tenantID uuid.UUID) *memAccounting {
	m := &memAccounting{accounts: map[string]*entity.LedgerAccount{}}
	for _, a := range entity.DefaultChartOfAccounts(tenantID) {
		a := a
		a.ID = uuid.New()
		m.accounts[a.Code] = &a
	}
	return m
}

func (m *memAccounting) GetAccountForUpdate(_ context.Context, code string) (*entity.LedgerAccount, error) {
	a, ok := m.accounts[code]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounting) AdjustBalance(_ context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	for _, a := range m.accounts {
		if a.ID == accountID {
			a.Balance = a.Balance.Add(delta)
		}
	}
	return nil
}

func (m *memAccounting) CreateEntry(_ context.Context, entry *entity.JournalEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAccounting) snapshot() func() {
	accounts := cloneMap(m.accounts)
	entries := append([]entity.JournalEntry(nil), m.entries...)
	return func() { m.accounts, m.entries = accounts, entries }
}

type memActivity struct {
	entries []entity.ActivityLog
}

func (m *memActivity) Create(_ context.Context, e *entity.ActivityLog) error {
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memActivity) ListWithCursor(context.Context, *pagination.CursorParams, string) ([]entity.ActivityLog, error) {
	return m.entries, nil
}

func (m *memActivity) snapshot() func() {
	entries := append([]entity.ActivityLog(nil), m.entries...)
	return func() { m.entries = entries }
}

type memInvoices struct {
	repository.InvoiceRepository
	invoices map[uuid.UUID]*entity.Invoice
	seq      map[string]int
	markErr  error
}

func newMemInvoices() *memInvoices {
	return &memInvoices{invoices: map[uuid.UUID]*entity.Invoice{}, seq: map[string]int{}}
}

func (m *memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *memInvoices) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (m *memInvoices) GetByReceivable(_ context.Context, receivableID uuid.UUID) (*entity.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.ReceivableID != nil && *inv.ReceivableID == receivableID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memInvoices) MarkSigned(ctx context.Context, inv *entity.Invoice) error {
	if m.markErr != nil {
		return m.markErr
	}
	return m.Create(ctx, inv)
}

func (m *memInvoices) UpdateArtifacts(ctx context.Context, inv *entity.Invoice) error {
	return m.Create(ctx, inv)
}

func (m *memInvoices) Delete(_ context.Context, id uuid.UUID) error {
	inv, ok := m.invoices[id]
	if ok && inv.IsSigned() {
		return nil
	}
	delete(m.invoices, id)
	return nil
}

func (m *memInvoices) Count(context.Context) (int64, error) {
	return int64(len(m.invoices)), nil
}

// NextSequence mirrors the database: the next folio follows the invoices
// that exist, so a deleted invoice frees its number.
func (m *memInvoices) NextSequence(_ context.Context, prefix string) (int, error) {
	n := 0
	for _, inv := range m.invoices {
		if strings.HasPrefix(inv.Folio, prefix) {
			n++
		}
	}
	return n + 1, nil
}

func (m *memInvoices) snapshot() func() {
	invoices := cloneMap(m.invoices)
	return func() { m.invoices = invoices }
}

type memContracts struct {
	repository.ContractRepository
	templates map[uuid.UUID]*entity.ContractTemplate
	contracts map[uuid.UUID]*entity.Contract
}

func newMemContracts() *memContracts {
	return &memContracts{templates: map[uuid.UUID]*entity.ContractTemplate{}, contracts: map[uuid.UUID]*entity.Contract{}}
}

func (m *memContracts) CreateTemplate(_ context.Context, tpl *entity.ContractTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	cp := *tpl
	m.templates[tpl.ID] = &cp
	return nil
}

func (m *memContracts) GetTemplate(_ context.Context, id uuid.UUID) (*entity.ContractTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *tpl
	return &cp, nil
}

func (m *memContracts) Create(_ context.Context, c *entity.Contract) error {
	cp := *c
	m.contracts[c.ID] = &cp
	return nil
}

func (m *memContracts) GetByID(_ context.Context, id uuid.UUID) (*entity.Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memContracts) ListByClient(_ context.Context, clientID uuid.UUID) ([]entity.Contract, error) {
	var out []entity.Contract
	for _, c := range m.contracts {
		if c.ClientID == clientID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) Sign(ctx context.Context, doc *signing.CFDIRequest) (*signing.Result, error) {
	args := m.Called(ctx, doc)
	if r, ok := args.Get(0).(*signing.Result); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type stubRenderer struct {
	contracts []render.ContractView
}

func (r *stubRenderer) Quote(render.QuoteView) ([]byte, error)     { return []byte("%PDF-quote"), nil }
func (r *stubRenderer) Invoice(render.InvoiceView) ([]byte, error) { return []byte("%PDF-invoice"), nil }
func (r *stubRenderer) Receipt(render.ReceiptView) ([]byte, error) { return []byte("%PDF-receipt"), nil }
func (r *stubRenderer) Contract(v render.ContractView) ([]byte, error) {
	r.contracts = append(r.contracts, v)
	return []byte("%PDF-contract"), nil
}

var testBilling = BillingConfig{
	TaxRate:           decimal.RequireFromString("0.16"),
	DepositFraction:   decimal.RequireFromString("0.50"),
	ReceivableDueDays: 30,
	QuotePrefix:       "COT-",
	InvoicePrefix:     "F-",
}

var testIssuer = IssuerConfig{RFC: "EKU9003173C9", Name: "Despacho Demo", Regime: "601", ExpeditionPlace: "42501"}

// env wires every service over in-memory fakes for one tenant.
type env struct {
	tenant      *entity.Tenant
	tenants     *memTenants
	tx          *memTx
	clients     *memClients
	fields      *memFields
	folders     *memFolders
	documents   *memDocuments
	reqs        *memRequirements
	quotes      *memQuotes
	receivables *memReceivables
	payments    *memPayments
	ledger      *memAccounting
	activity    *memActivity
	invoices    *memInvoices
	contracts   *memContracts
	files       *storage.Memory
	signer      *mockSigner
	renderer    *stubRenderer

	clientSvc      *ClientService
	paymentSvc     *PaymentService
	conversionSvc  *ConversionService
	invoiceSvc     *InvoiceService
	driveSvc       *DriveService
	requirementSvc *RequirementService
	contractSvc    *ContractService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tenant := &entity.Tenant{ID: uuid.New(), Name: "Despacho Demo", Slug: "demo"}
	e := &env{
		tenant:      tenant,
		tx:          &memTx{},
		clients:     newMemClients(),
		fields:      &memFields{},
		folders:     newMemFolders(),
		documents:   newMemDocuments(),
		reqs:        newMemRequirements(),
		quotes:      newMemQuotes(),
		receivables: newMemReceivables(),
		payments:    &memPayments{},
		ledger:      newMemAccounting(tenant.ID),
		activity:    &memActivity{},
		invoices:    newMemInvoices(),
		contracts:   newMemContracts(),
		files:       storage.NewMemory(),
		signer:      &mockSigner{},
		renderer:    &stubRenderer{},
	}
	e.tx.stores = []snapshotter{e.clients, e.folders, e.documents, e.reqs, e.quotes,
		e.receivables, e.payments, e.ledger, e.activity, e.invoices}
	tenants := &memTenants{tenants: map[uuid.UUID]*entity.Tenant{tenant.ID: tenant}}
	e.tenants = tenants
	activity := NewActivityService(e.activity)

	e.clientSvc = NewClientService(e.clients, e.fields, e.folders, e.reqs, nil, e.tx, e.files, activity)
	e.invoiceSvc = e.invoiceServiceWith(e.signer)
	e.paymentSvc = NewPaymentService(e.receivables, e.payments, e.clients, tenants, e.tx,
		NewAccountingService(e.ledger), activity, e.invoiceSvc, e.renderer, testBilling, testIssuer)
	e.conversionSvc = NewConversionService(e.quotes, e.receivables, e.clients, tenants, e.tx,
		e.clientSvc, e.paymentSvc, activity, testBilling)
	e.driveSvc = NewDriveService(e.folders, e.documents, e.clients, e.reqs, e.tx, e.files, activity, 1<<20)
	e.requirementSvc = NewRequirementService(e.reqs, e.documents, e.folders, e.driveSvc)
	e.contractSvc = NewContractService(e.contracts, e.clients, tenants, e.files, e.renderer, activity, testIssuer)
	return e
}

// invoiceServiceWith builds an invoice service over the env fakes that signs
// through signer.
func (e *env) invoiceServiceWith(signer Signer) *InvoiceService {
	svc := NewInvoiceService(e.invoices, e.clients, e.receivables, e.quotes, e.tenants, e.tx,
		signer, e.files, e.renderer, nil, NewActivityService(e.activity), testBilling, testIssuer)
	svc.retryDelay = 0
	return svc
}

// ctx returns a request context for an administrator of the env tenant.
func (e *env) ctx() context.Context {
	return e.ctxAs(&authz.Principal{UserID: uuid.New(), Roles: []string{entity.RoleAdmin}})
}

// member is a non-admin principal holding perms.
func member(perms ...string) *authz.Principal {
	return &authz.Principal{UserID: uuid.New(), Roles: []string{entity.RoleJunior}, Permissions: perms}
}

func (e *env) ctxAs(p *authz.Principal) context.Context {
	ctx := infraRepo.WithTenant(context.Background(), e.tenant.ID)
	return authz.WithPrincipal(ctx, p)
}

// fiscalClient stores a client ready to be invoiced.
func (e *env) fiscalClient(name string) *entity.Client {
	c := &entity.Client{
		ID:           uuid.New(),
		TenantID:     e.tenant.ID,
		CompanyName:  name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com",
		RFC:          "XAXX010101000",
		FiscalName:   strings.ToUpper(name),
		FiscalRegime: "601",
		TaxZipCode:   "54948",
	}
	c.SetExtra(entity.ExtraFields{})
	e.clients.clients[c.ID] = c
	return c
}

// quote stores a sent quote with a single line.
func (e *env) quote(company, email, price string) *entity.Quote {
	q := &entity.Quote{
		ID:              uuid.New(),
		TenantID:        e.tenant.ID,
		Number:          "COT-202610-0001",
		ProspectCompany: company,
		ProspectEmail:   email,
		ProspectName:    "Ana López",
	}
	item, _ := entity.NewQuoteItem(nil, "Licencia de funcionamiento", 1, decimal.RequireFromString(price))
	_ = q.AddItem(item)
	e.quotes.quotes[q.ID] = q
	return q
}
