package entity

// Permission names checked by the authorization layer.
const (
	PermClientsCreate   = "clients.create"
	PermClientsEdit     = "clients.edit"
	PermClientsDelete   = "clients.delete"
	PermDocumentsView   = "documents.view"
	PermDocumentsUpload = "documents.upload"
	PermUsersManage     = "users.manage"
	PermFinanceAccess   = "finance.access"
	PermQuotesManage    = "quotes.manage"
	PermInvoicesIssue   = "invoices.issue"
	PermAgendaManage    = "agenda.manage"
	PermContractsManage = "contracts.manage"
	PermMattersManage   = "matters.manage"
	PermSettingsManage  = "settings.manage"
)

// Built-in role names.
const (
	RoleAdmin   = "admin"
	RoleSenior  = "analista_sr"
	RoleJunior  = "analista_jr"
	RoleDefault = RoleJunior
)

// AllPermissions lists every permission the system knows about.
var AllPermissions = []string{
	PermClientsCreate,
	PermClientsEdit,
	PermClientsDelete,
	PermDocumentsView,
	PermDocumentsUpload,
	PermUsersManage,
	PermFinanceAccess,
	PermQuotesManage,
	PermInvoicesIssue,
	PermAgendaManage,
	PermContractsManage,
	PermMattersManage,
	PermSettingsManage,
}

// DefaultRoles maps each seeded role to its permissions.
var DefaultRoles = map[string][]string{
	RoleAdmin: AllPermissions,
	RoleSenior: {
		PermClientsCreate,
		PermClientsEdit,
		PermDocumentsView,
		PermDocumentsUpload,
		PermQuotesManage,
		PermAgendaManage,
		PermContractsManage,
		PermMattersManage,
	},
	RoleJunior: {
		PermDocumentsView,
		PermAgendaManage,
	},
}
