package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/config"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/middleware"
	"github.com/sangkips/lexdesk-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Tenant    *handler.TenantHandler
	Dashboard *handler.DashboardHandler
	Client    *handler.ClientHandler
	Matter    *handler.MatterHandler
	Drive     *handler.DriveHandler
	Quote     *handler.QuoteHandler
	Finance   *handler.FinanceHandler
	Agenda    *handler.AgendaHandler
	Contract  *handler.ContractHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	TenantRepo      domainRepo.TenantRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	handler.RegisterValidation()

	router := gin.New()
	router.MaxMultipartMemory = deps.Cfg.Storage.UploadMaxSize

	// Global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(
		deps.Cfg.RateLimit.Requests,
		deps.Cfg.RateLimit.Duration,
		deps.Cfg.RateLimit.Burst,
	))
	router.Use(rateLimiter.Middleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		registerAccountRoutes(protected, h)

		// Everything below works inside one firm
		scoped := protected.Group("")
		scoped.Use(middleware.TenantMiddleware(deps.TenantRepo), middleware.RequireTenant())
		registerTenantScopedRoutes(scoped, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		auth.GET("/google", h.Auth.GoogleURL)
		auth.POST("/google", h.Auth.GoogleLogin)
	}
}

// registerAccountRoutes holds routes that need a user but no firm
func registerAccountRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/auth/me", h.Auth.Me)
	protected.PUT("/auth/change-password", h.Auth.ChangePassword)

	protected.POST("/tenants", h.Tenant.Create)
	protected.GET("/tenants/mine", h.Tenant.Mine)

	users := protected.Group("", middleware.RequirePermission(entity.PermUsersManage))
	{
		users.GET("/users", h.User.List)
		users.GET("/users/:id", h.User.Get)
		users.POST("/users/:id/approve", h.User.Approve)
		users.POST("/users/:id/deactivate", h.User.Deactivate)
		users.PUT("/users/:id/roles", h.User.UpdateRoles)
		users.DELETE("/users/:id", h.User.Delete)
		users.GET("/roles", h.User.ListRoles)
		users.PUT("/roles/:name/permissions", h.User.SyncRolePermissions)
		users.GET("/permissions", h.User.ListPermissions)
	}

	admin := protected.Group("/admin", middleware.RequireSuperAdmin())
	{
		admin.GET("/tenants", h.Tenant.ListAllTenants)
		admin.POST("/tenants/assign", h.Tenant.AssignUserToTenant)
	}
}

func registerTenantScopedRoutes(scoped *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(deps.IdempotencyRepo)

	tenant := scoped.Group("/tenants/current")
	{
		tenant.GET("", h.Tenant.GetCurrentTenant)
		tenant.PUT("", h.Tenant.UpdateTenant)
		tenant.GET("/members", h.Tenant.ListMembers)
		tenant.POST("/members", h.Tenant.InviteMember)
		tenant.PUT("/members/:user_id", h.Tenant.UpdateMemberRole)
		tenant.DELETE("/members/:user_id", h.Tenant.RemoveMember)
	}

	scoped.GET("/dashboard", h.Dashboard.GetStats)
	scoped.GET("/activity", h.Dashboard.Activity)

	registerClientRoutes(scoped, h)
	registerDriveRoutes(scoped, h)

	matters := scoped.Group("/matters")
	{
		matters.GET("", h.Matter.List)
		matters.POST("", h.Matter.Create)
		matters.GET("/:id", h.Matter.Get)
		matters.PUT("/:id", h.Matter.Update)
		matters.PATCH("/:id/status", h.Matter.ChangeStatus)
		matters.DELETE("/:id", h.Matter.Delete)
	}

	services := scoped.Group("/services")
	{
		services.GET("", h.Quote.ListServices)
		services.POST("", h.Quote.CreateService)
		services.GET("/:id", h.Quote.GetService)
		services.PUT("/:id", h.Quote.UpdateService)
		services.DELETE("/:id", h.Quote.DeleteService)
	}

	quotes := scoped.Group("/quotes")
	{
		quotes.GET("", h.Quote.List)
		quotes.POST("", h.Quote.Create)
		quotes.GET("/:id", h.Quote.Get)
		quotes.PUT("/:id", h.Quote.Update)
		quotes.DELETE("/:id", h.Quote.Delete)
		quotes.POST("/:id/items", h.Quote.AddItem)
		quotes.PUT("/:id/items/:item_id", h.Quote.UpdateItem)
		quotes.DELETE("/:id/items/:item_id", h.Quote.RemoveItem)
		quotes.PATCH("/:id/status", h.Quote.ChangeStatus)
		quotes.GET("/:id/pdf", h.Quote.PDF)
		quotes.POST("/:id/send", h.Quote.Send)
		quotes.POST("/:id/convert", idempotent, h.Quote.Convert)
	}

	registerFinanceRoutes(scoped, h, idempotent)
	registerAgendaRoutes(scoped, h)

	templates := scoped.Group("/contract-templates")
	{
		templates.GET("", h.Contract.ListTemplates)
		templates.POST("", h.Contract.CreateTemplate)
		templates.GET("/:id", h.Contract.GetTemplate)
		templates.PUT("/:id", h.Contract.UpdateTemplate)
		templates.DELETE("/:id", h.Contract.DeleteTemplate)
	}

	contracts := scoped.Group("/contracts")
	{
		contracts.POST("/preview", h.Contract.Preview)
		contracts.POST("", h.Contract.Generate)
		contracts.GET("/:id", h.Contract.Get)
		contracts.GET("/:id/pdf", h.Contract.PDF)
	}

	scoped.GET("/reports/clients", h.Finance.ExportClients)
}

func registerClientRoutes(scoped *gin.RouterGroup, h *Handlers) {
	clients := scoped.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
		clients.POST("/:id/logo", h.Client.UploadLogo)
		clients.PUT("/:id/extra-fields", h.Client.SetExtraFields)
		clients.POST("/:id/users", h.Client.AssignUser)
		clients.DELETE("/:id/users/:user_id", h.Client.UnassignUser)
		clients.POST("/:id/fiscal-certificate", h.Client.ImportFiscalCertificate)

		clients.GET("/:id/requirements", h.Drive.ListRequirements)
		clients.GET("/:id/matters", h.Matter.ListByClient)
		clients.GET("/:id/drive", h.Drive.ListContents)
		clients.POST("/:id/folders", h.Drive.CreateFolder)
		clients.POST("/:id/documents", h.Drive.UploadDocument)
		clients.GET("/:id/contracts", h.Contract.ListByClient)
	}

	fields := scoped.Group("/client-fields")
	{
		fields.GET("", h.Client.ListFields)
		fields.POST("", h.Client.CreateField)
		fields.PUT("/:id", h.Client.UpdateField)
		fields.DELETE("/:id", h.Client.DeleteField)
	}
}

func registerDriveRoutes(scoped *gin.RouterGroup, h *Handlers) {
	scoped.PUT("/folders/:id", h.Drive.RenameFolder)
	scoped.DELETE("/folders/:id", h.Drive.DeleteFolder)

	documents := scoped.Group("/documents")
	{
		documents.GET("/:id/download", h.Drive.Download)
		documents.PUT("/:id", h.Drive.UpdateDocument)
		documents.DELETE("/:id", h.Drive.TrashDocument)
		documents.POST("/:id/restore", h.Drive.RestoreDocument)
	}

	trash := scoped.Group("/trash")
	{
		trash.GET("", h.Drive.ListTrash)
		trash.DELETE("", h.Drive.EmptyTrash)
		trash.DELETE("/:id", h.Drive.PurgeDocument)
	}

	requirements := scoped.Group("/requirements")
	{
		requirements.POST("/:id/attach", h.Drive.AttachDocument)
		requirements.POST("/:id/upload", h.Drive.UploadRequirement)
		requirements.POST("/:id/approve", h.Drive.ApproveRequirement)
		requirements.POST("/:id/reset", h.Drive.ResetRequirement)
	}
}

func registerFinanceRoutes(scoped *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	receivables := scoped.Group("/receivables")
	{
		receivables.GET("", h.Finance.ListReceivables)
		receivables.GET("/export", h.Finance.ExportReceivables)
		receivables.GET("/:id", h.Finance.GetReceivable)
		receivables.POST("/:id/payments", idempotent, h.Finance.ApplyPayment)
		receivables.GET("/:id/payments/:payment_id/receipt", h.Finance.Receipt)
		receivables.POST("/:id/invoice", h.Finance.InvoiceReceivable)
	}

	scoped.GET("/accounts", h.Finance.ListAccounts)
	scoped.GET("/journal-entries", h.Finance.ListEntries)
	scoped.GET("/trial-balance", h.Finance.TrialBalance)

	invoices := scoped.Group("/invoices")
	{
		invoices.GET("", h.Finance.ListInvoices)
		invoices.POST("", h.Finance.IssueInvoice)
		invoices.GET("/:id", h.Finance.GetInvoice)
		invoices.DELETE("/:id", h.Finance.DeleteInvoice)
		invoices.GET("/:id/xml", h.Finance.InvoiceXML)
		invoices.GET("/:id/pdf", h.Finance.InvoicePDF)
		invoices.GET("/:id/qr", h.Finance.InvoiceQR)
		invoices.POST("/:id/send", h.Finance.SendInvoice)
	}
}

func registerAgendaRoutes(scoped *gin.RouterGroup, h *Handlers) {
	tasks := scoped.Group("/tasks")
	{
		tasks.GET("", h.Agenda.ListTasks)
		tasks.POST("", h.Agenda.CreateTask)
		tasks.PUT("/:id", h.Agenda.UpdateTask)
		tasks.PATCH("/:id/complete", h.Agenda.CompleteTask)
		tasks.DELETE("/:id", h.Agenda.DeleteTask)
	}

	events := scoped.Group("/events")
	{
		events.GET("/calendar", h.Agenda.Calendar)
		events.POST("", h.Agenda.CreateEvent)
		events.GET("/:id", h.Agenda.GetEvent)
		events.PUT("/:id", h.Agenda.UpdateEvent)
		events.DELETE("/:id", h.Agenda.DeleteEvent)
	}

	scoped.GET("/notifications", h.Agenda.Notifications)
}
