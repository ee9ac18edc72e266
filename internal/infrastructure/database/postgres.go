package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/config"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	applog "github.com/sangkips/lexdesk-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	zl := applog.WithComponent("gorm")
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.New(&zl, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	zl.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("connected to PostgreSQL")
	return db, nil
}

// Models lists every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.PasswordResetToken{},
		&entity.Tenant{},
		&entity.TenantMembership{},

		&entity.Client{},
		&entity.ClientFieldDefinition{},
		&entity.Matter{},
		&entity.Folder{},
		&entity.Document{},
		&entity.Requirement{},
		&entity.Task{},
		&entity.Event{},

		&entity.ServiceItem{},
		&entity.Quote{},
		&entity.QuoteItem{},
		&entity.Receivable{},
		&entity.Payment{},
		&entity.LedgerAccount{},
		&entity.JournalEntry{},
		&entity.JournalLine{},
		&entity.Invoice{},

		&entity.ContractTemplate{},
		&entity.Contract{},
		&entity.ActivityLog{},
		&entity.IdempotencyKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	zl := applog.WithComponent("migrate")
	zl.Info().Msg("running database migrations")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zl.Info().Msg("database migrations completed")
	return nil
}

// SeedOptions configures the bootstrap administrator and firm.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	TenantName    string
	TenantSlug    string
}

// SeedDefaultData creates permissions, roles and, when configured, the first
// administrator with their firm and its chart of accounts. It is idempotent.
func SeedDefaultData(db *gorm.DB, opts SeedOptions) error {
	zl := applog.WithComponent("seed")

	for _, name := range entity.AllPermissions {
		perm := entity.Permission{Name: name}
		if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", name, err)
		}
	}

	var allPermissions []entity.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return err
	}
	byName := make(map[string]entity.Permission, len(allPermissions))
	for _, p := range allPermissions {
		byName[p.Name] = p
	}

	for roleName, permNames := range entity.DefaultRoles {
		role := entity.Role{Name: roleName, Label: roleName}
		if err := db.Where(entity.Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", roleName, err)
		}
		perms := make([]entity.Permission, 0, len(permNames))
		for _, n := range permNames {
			perms = append(perms, byName[n])
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("sync role %s: %w", roleName, err)
		}
	}

	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		zl.Info().Msg("no bootstrap admin configured, skipping")
		return nil
	}

	var admin entity.User
	err := db.Where("email = ?", opts.AdminEmail).First(&admin).Error
	if err == nil {
		zl.Info().Str("email", opts.AdminEmail).Msg("admin user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	name := opts.AdminName
	if name == "" {
		name = "Administrador"
	}
	now := time.Now()
	admin = entity.User{
		ID:           uuid.New(),
		Name:         name,
		Username:     opts.AdminEmail,
		Email:        opts.AdminEmail,
		Password:     string(hashed),
		IsActive:     true,
		IsSuperAdmin: true,
		ApprovedAt:   &now,
		Roles:        []entity.Role{adminRole},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		if opts.TenantSlug == "" {
			return nil
		}
		tenant := entity.Tenant{
			Name:     opts.TenantName,
			Slug:     opts.TenantSlug,
			OwnerID:  admin.ID,
			IsActive: true,
			Settings: entity.DefaultTenantSettings(),
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		if err := tx.Create(&entity.TenantMembership{TenantID: tenant.ID, UserID: admin.ID, Role: "owner"}).Error; err != nil {
			return err
		}
		accounts := entity.DefaultChartOfAccounts(tenant.ID)
		if err := tx.Create(&accounts).Error; err != nil {
			return fmt.Errorf("create chart of accounts: %w", err)
		}
		zl.Info().Str("email", admin.Email).Str("tenant", tenant.Slug).Msg("bootstrap admin created")
		return nil
	})
}
