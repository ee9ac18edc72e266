package authz

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principalFor(role string) *Principal {
	return &Principal{UserID: uuid.New(), Roles: []string{role}, Permissions: entity.DefaultRoles[role]}
}

func TestCan_SeededRoles(t *testing.T) {
	admin := principalFor(entity.RoleAdmin)
	senior := principalFor(entity.RoleSenior)
	junior := principalFor(entity.RoleJunior)

	cases := []struct {
		name     string
		p        *Principal
		action   Action
		resource Resource
		want     bool
	}{
		{"admin deletes clients", admin, ActionDelete, ResourceClient, true},
		{"admin has unmapped pairs", admin, ActionDelete, ResourceInvoice, true},
		{"senior creates clients", senior, ActionCreate, ResourceClient, true},
		{"senior cannot delete clients", senior, ActionDelete, ResourceClient, false},
		{"senior edits quotes", senior, ActionEdit, ResourceQuote, true},
		{"senior has no finance", senior, ActionCreate, ResourceFinance, false},
		{"junior views documents", junior, ActionView, ResourceDocument, true},
		{"junior cannot upload", junior, ActionCreate, ResourceDocument, false},
		{"junior views clients", junior, ActionView, ResourceClient, true},
		{"junior cannot issue invoices", junior, ActionCreate, ResourceInvoice, false},
		{"nobody deletes signed invoices", senior, ActionDelete, ResourceInvoice, false},
		{"nil principal", nil, ActionView, ResourceClient, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Can(tc.p, tc.action, tc.resource))
		})
	}
}

func TestCan_AnyOfPermissions(t *testing.T) {
	p := &Principal{Permissions: []string{entity.PermFinanceAccess}}
	assert.True(t, Can(p, ActionView, ResourceQuote))
	assert.False(t, Can(p, ActionEdit, ResourceQuote))
	assert.True(t, Can(p, ActionView, ResourceInvoice))
}

func TestRequire(t *testing.T) {
	_, err := Require(context.Background(), ActionView, ResourceClient)
	assert.True(t, apperror.HasCode(err, http.StatusUnauthorized))

	ctx := WithPrincipal(context.Background(), principalFor(entity.RoleJunior))
	_, err = Require(ctx, ActionCreate, ResourceFinance)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.True(t, apperror.HasCode(err, http.StatusForbidden))

	p, err := Require(ctx, ActionView, ResourceDocument)
	require.NoError(t, err)
	assert.False(t, p.SeesAllClients())
}

func TestSuperAdmin(t *testing.T) {
	p := &Principal{IsSuperAdmin: true}
	assert.True(t, p.IsAdmin())
	assert.True(t, Can(p, ActionEdit, ResourceSettings))
}
