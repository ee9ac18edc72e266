// Package authz decides whether the caller may perform an action on a
// resource. Services call Require at the top of every protected operation.
package authz

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
)

// Action is what the caller wants to do
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Resource is what the action applies to
type Resource string

const (
	ResourceClient   Resource = "client"
	ResourceMatter   Resource = "matter"
	ResourceDocument Resource = "document"
	ResourceUser     Resource = "user"
	ResourceQuote    Resource = "quote"
	ResourceFinance  Resource = "finance"
	ResourceInvoice  Resource = "invoice"
	ResourceAgenda   Resource = "agenda"
	ResourceContract Resource = "contract"
	ResourceSettings Resource = "settings"
)

// Principal is the authenticated caller
type Principal struct {
	UserID       uuid.UUID
	Email        string
	Roles        []string
	Permissions  []string
	IsSuperAdmin bool
}

type principalKey struct{}

// WithPrincipal stores the caller in ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the caller stored in ctx, if any
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// IsAdmin reports whether the principal bypasses permission checks
func (p *Principal) IsAdmin() bool {
	if p.IsSuperAdmin {
		return true
	}
	for _, r := range p.Roles {
		if r == entity.RoleAdmin {
			return true
		}
	}
	return false
}

// SeesAllClients reports whether the principal is not limited to the
// clients assigned to them.
func (p *Principal) SeesAllClients() bool {
	return p.IsAdmin()
}

// HasPermission checks a single permission name
func (p *Principal) HasPermission(name string) bool {
	for _, perm := range p.Permissions {
		if perm == name {
			return true
		}
	}
	return false
}

type rule struct {
	action   Action
	resource Resource
}

// any-of permission names per rule; an empty list means any member.
var rules = map[rule][]string{
	{ActionView, ResourceClient}:   nil,
	{ActionCreate, ResourceClient}: {entity.PermClientsCreate},
	{ActionEdit, ResourceClient}:   {entity.PermClientsEdit},
	{ActionDelete, ResourceClient}: {entity.PermClientsDelete},

	{ActionView, ResourceMatter}:   nil,
	{ActionCreate, ResourceMatter}: {entity.PermMattersManage},
	{ActionEdit, ResourceMatter}:   {entity.PermMattersManage},
	{ActionDelete, ResourceMatter}: {entity.PermMattersManage},

	{ActionView, ResourceDocument}:   {entity.PermDocumentsView},
	{ActionCreate, ResourceDocument}: {entity.PermDocumentsUpload},
	{ActionEdit, ResourceDocument}:   {entity.PermDocumentsUpload},
	{ActionDelete, ResourceDocument}: {entity.PermDocumentsUpload},

	{ActionView, ResourceUser}:   {entity.PermUsersManage},
	{ActionCreate, ResourceUser}: {entity.PermUsersManage},
	{ActionEdit, ResourceUser}:   {entity.PermUsersManage},
	{ActionDelete, ResourceUser}: {entity.PermUsersManage},

	{ActionView, ResourceQuote}:   {entity.PermQuotesManage, entity.PermFinanceAccess},
	{ActionCreate, ResourceQuote}: {entity.PermQuotesManage},
	{ActionEdit, ResourceQuote}:   {entity.PermQuotesManage},
	{ActionDelete, ResourceQuote}: {entity.PermQuotesManage},

	{ActionView, ResourceFinance}:   {entity.PermFinanceAccess},
	{ActionCreate, ResourceFinance}: {entity.PermFinanceAccess},
	{ActionEdit, ResourceFinance}:   {entity.PermFinanceAccess},

	{ActionView, ResourceInvoice}:   {entity.PermFinanceAccess, entity.PermInvoicesIssue},
	{ActionCreate, ResourceInvoice}: {entity.PermInvoicesIssue},

	{ActionView, ResourceAgenda}:   nil,
	{ActionCreate, ResourceAgenda}: {entity.PermAgendaManage},
	{ActionEdit, ResourceAgenda}:   {entity.PermAgendaManage},
	{ActionDelete, ResourceAgenda}: {entity.PermAgendaManage},

	{ActionView, ResourceContract}:   {entity.PermContractsManage},
	{ActionCreate, ResourceContract}: {entity.PermContractsManage},
	{ActionEdit, ResourceContract}:   {entity.PermContractsManage},
	{ActionDelete, ResourceContract}: {entity.PermContractsManage},

	{ActionView, ResourceSettings}: nil,
	{ActionEdit, ResourceSettings}: {entity.PermSettingsManage},
}

// Can reports whether p may perform action on resource. Pairs without a
// rule are denied to everyone but admins.
func Can(p *Principal, action Action, resource Resource) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	perms, ok := rules[rule{action, resource}]
	if !ok {
		return false
	}
	if len(perms) == 0 {
		return true
	}
	for _, name := range perms {
		if p.HasPermission(name) {
			return true
		}
	}
	return false
}

// Require returns the principal in ctx when it may perform action on
// resource, ErrUnauthorized when there is none and ErrForbidden otherwise.
func Require(ctx context.Context, action Action, resource Resource) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	if !Can(p, action, resource) {
		return nil, apperror.ErrForbidden
	}
	return p, nil
}
