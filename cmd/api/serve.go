package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/config"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/render"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/signing"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/storage"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/routes"
	"github.com/sangkips/lexdesk-api/pkg/email"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/oauth"
	"github.com/sangkips/lexdesk-api/pkg/utils"
)

const (
	shutdownTimeout     = 10 * time.Second
	idempotencySweepGap = time.Hour
)

func serve(ctx context.Context, cfg *config.Config) error {
	zl := logger.WithComponent("server")

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.App.Timezone, err)
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	files, err := storage.New(cfg.Storage.Driver, cfg.Storage.Path, cfg.Storage.PublicBaseURL)
	if err != nil {
		return err
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.JWT.RefreshExpiryHours)

	// Repositories
	txManager := database.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	passwordResetRepo := repository.NewPasswordResetTokenRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	clientRepo := repository.NewClientRepository(db)
	clientFieldRepo := repository.NewClientFieldRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	matterRepo := repository.NewMatterRepository(db)
	serviceItemRepo := repository.NewServiceItemRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	receivableRepo := repository.NewReceivableRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	accountingRepo := repository.NewAccountingRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	eventRepo := repository.NewEventRepository(db)
	contractRepo := repository.NewContractRepository(db)

	// Outbound integrations
	mailer := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.Host,
		SMTPPort:     cfg.Email.Port,
		SMTPUsername: cfg.Email.Username,
		SMTPPassword: cfg.Email.Password,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.From,
		FrontendURL:  cfg.App.FrontendURL,
	})
	google := oauth.NewGoogle(oauth.GoogleConfig{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		HostedDomain: cfg.OAuth.GoogleHostedDomain,
	})
	signer := signing.NewClient(signing.Config{
		BaseURL:  cfg.Signing.BaseURL(),
		User:     cfg.Signing.User,
		Password: cfg.Signing.Password,
		Timeout:  cfg.Signing.Timeout,
	})
	renderer := render.NewPDF()

	billing := service.BillingConfig{
		TaxRate:           cfg.Billing.TaxRate,
		DepositFraction:   cfg.Billing.DepositFraction,
		AutoInvoiceOnPaid: cfg.Billing.AutoInvoiceOnPaid,
		ReceivableDueDays: cfg.Billing.ReceivableDueDays,
	}
	issuer := service.IssuerConfig{
		RFC:             cfg.Signing.IssuerRFC,
		Name:            cfg.Signing.IssuerName,
		Regime:          cfg.Signing.IssuerRegime,
		ExpeditionPlace: cfg.Signing.ExpeditionPlace,
	}

	// Services
	activityService := service.NewActivityService(activityRepo)
	authService := service.NewAuthService(userRepo, roleRepo, passwordResetRepo, jwtManager, mailer, google)
	userService := service.NewUserService(userRepo, roleRepo, permissionRepo)
	tenantService := service.NewTenantService(tenantRepo, accountingRepo, txManager)
	clientService := service.NewClientService(clientRepo, clientFieldRepo, folderRepo, requirementRepo, userRepo, txManager, files, activityService)
	clientFieldService := service.NewClientFieldService(clientFieldRepo)
	driveService := service.NewDriveService(folderRepo, documentRepo, clientRepo, requirementRepo, txManager, files, activityService, cfg.Storage.UploadMaxSize)
	requirementService := service.NewRequirementService(requirementRepo, documentRepo, folderRepo, driveService)
	matterService := service.NewMatterService(matterRepo, clientRepo, folderRepo, documentRepo, txManager, activityService)
	catalogService := service.NewCatalogService(serviceItemRepo)
	quoteService := service.NewQuoteService(quoteRepo, serviceItemRepo, tenantRepo, txManager, renderer, mailer, activityService, billing, issuer)
	accountingService := service.NewAccountingService(accountingRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, receivableRepo, quoteRepo, tenantRepo, txManager,
		signer, files, renderer, mailer, activityService, billing, issuer)
	paymentService := service.NewPaymentService(receivableRepo, paymentRepo, clientRepo, tenantRepo, txManager,
		accountingService, activityService, invoiceService, renderer, billing, issuer)
	conversionService := service.NewConversionService(quoteRepo, receivableRepo, clientRepo, tenantRepo, txManager,
		clientService, paymentService, activityService, billing)
	agendaService := service.NewAgendaService(taskRepo, eventRepo, clientRepo, receivableRepo, loc)
	contractService := service.NewContractService(contractRepo, clientRepo, tenantRepo, files, renderer, activityService, issuer)
	reportService := service.NewReportService(clientRepo, receivableRepo, loc)
	dashboardService := service.NewDashboardService(clientRepo, matterRepo, quoteRepo, receivableRepo, paymentRepo, userRepo, loc)

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Tenant:    handler.NewTenantHandler(tenantService),
		Dashboard: handler.NewDashboardHandler(dashboardService, activityService),
		Client:    handler.NewClientHandler(clientService, clientFieldService),
		Matter:    handler.NewMatterHandler(matterService),
		Drive:     handler.NewDriveHandler(driveService, requirementService),
		Quote:     handler.NewQuoteHandler(catalogService, quoteService, conversionService),
		Finance:   handler.NewFinanceHandler(paymentService, accountingService, invoiceService, reportService),
		Agenda:    handler.NewAgendaHandler(agendaService),
		Contract:  handler.NewContractHandler(contractService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		TenantRepo:      tenantRepo,
		IdempotencyRepo: idempotencyRepo,
	})

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepIdempotencyKeys(ctx, idempotencyRepo)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info().Str("port", cfg.App.Port).Str("env", cfg.App.Env).Msg("starting " + cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zl.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zl.Info().Msg("server stopped")
	return nil
}

// sweepIdempotencyKeys drops expired replay records until ctx ends
func sweepIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository) {
	zl := logger.WithComponent("idempotency")
	ticker := time.NewTicker(idempotencySweepGap)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				zl.Warn().Err(err).Msg("sweep failed")
				continue
			}
			if n > 0 {
				zl.Debug().Int64("deleted", n).Msg("expired keys removed")
			}
		}
	}
}
