package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	facturamaSandboxURL    = "https://apisandbox.facturama.mx/3"
	facturamaProductionURL = "https://api.facturama.mx/3"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Email     EmailConfig
	OAuth     OAuthConfig
	Signing   SigningConfig
	Billing   BillingConfig
	Seed      SeedConfig
}

type AppConfig struct {
	Name        string
	Env         string
	Port        string
	Debug       bool
	BaseURL     string
	FrontendURL string
	Timezone    string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type StorageConfig struct {
	// Driver is "local" or "memory"; memory loses every file on restart
	Driver        string
	Path          string
	PublicBaseURL string
	UploadMaxSize int64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig is expressed as a token bucket: Requests per Duration seconds
// with a burst of Burst.
type RateLimitConfig struct {
	Requests int
	Duration int
	Burst    int
}

type LogConfig struct {
	Level  string
	Format string
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	// restricts Google sign-in to one Workspace domain when set
	GoogleHostedDomain string
}

// SigningConfig holds the credentials and issuer data for the CFDI signing API.
type SigningConfig struct {
	Sandbox         bool
	User            string
	Password        string
	Timeout         time.Duration
	ExpeditionPlace string
	IssuerRFC       string
	IssuerName      string
	IssuerRegime    string
}

type BillingConfig struct {
	TaxRate           decimal.Decimal
	DepositFraction   decimal.Decimal
	AutoInvoiceOnPaid bool
	ReceivableDueDays int
}

// SeedConfig names the bootstrap administrator and firm created by the
// seed command. Empty values skip that part of the seed.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	TenantName    string
	TenantSlug    string
}

// Load reads configuration from an optional env file and the process environment.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	viper.SetConfigFile(envFile)
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	setDefaults()

	taxRate, err := decimal.NewFromString(viper.GetString("BILLING_TAX_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid BILLING_TAX_RATE: %w", err)
	}
	deposit, err := decimal.NewFromString(viper.GetString("BILLING_DEPOSIT_FRACTION"))
	if err != nil {
		return nil, fmt.Errorf("invalid BILLING_DEPOSIT_FRACTION: %w", err)
	}
	if deposit.IsNegative() || deposit.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("BILLING_DEPOSIT_FRACTION must be between 0 and 1, got %s", deposit)
	}

	return &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Env:         viper.GetString("APP_ENV"),
			Port:        viper.GetString("APP_PORT"),
			Debug:       viper.GetBool("APP_DEBUG"),
			BaseURL:     viper.GetString("APP_BASE_URL"),
			FrontendURL: viper.GetString("APP_FRONTEND_URL"),
			Timezone:    viper.GetString("APP_TIMEZONE"),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			Name:         viper.GetString("DB_NAME"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			SSLMode:      viper.GetString("DB_SSL_MODE"),
			Timezone:     viper.GetString("DB_TIMEZONE"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		Storage: StorageConfig{
			Driver:        viper.GetString("STORAGE_DRIVER"),
			Path:          viper.GetString("STORAGE_PATH"),
			PublicBaseURL: viper.GetString("STORAGE_PUBLIC_BASE_URL"),
			UploadMaxSize: viper.GetInt64("UPLOAD_MAX_SIZE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
			Burst:    viper.GetInt("RATE_LIMIT_BURST"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			Username: viper.GetString("SMTP_USERNAME"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
			FromName: viper.GetString("SMTP_FROM_NAME"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
			GoogleHostedDomain: viper.GetString("GOOGLE_HOSTED_DOMAIN"),
		},
		Signing: SigningConfig{
			Sandbox:         viper.GetBool("FACTURAMA_SANDBOX"),
			User:            viper.GetString("FACTURAMA_USER"),
			Password:        viper.GetString("FACTURAMA_PASS"),
			Timeout:         time.Duration(viper.GetInt("FACTURAMA_TIMEOUT_SECONDS")) * time.Second,
			ExpeditionPlace: viper.GetString("FACTURAMA_EXPEDITION_PLACE"),
			IssuerRFC:       viper.GetString("FACTURAMA_ISSUER_RFC"),
			IssuerName:      viper.GetString("FACTURAMA_ISSUER_NAME"),
			IssuerRegime:    viper.GetString("FACTURAMA_ISSUER_REGIME"),
		},
		Billing: BillingConfig{
			TaxRate:           taxRate,
			DepositFraction:   deposit,
			AutoInvoiceOnPaid: viper.GetBool("BILLING_AUTO_INVOICE_ON_PAID"),
			ReceivableDueDays: viper.GetInt("BILLING_RECEIVABLE_DUE_DAYS"),
		},
		Seed: SeedConfig{
			AdminEmail:    viper.GetString("SEED_ADMIN_EMAIL"),
			AdminPassword: viper.GetString("SEED_ADMIN_PASSWORD"),
			AdminName:     viper.GetString("SEED_ADMIN_NAME"),
			TenantName:    viper.GetString("SEED_TENANT_NAME"),
			TenantSlug:    viper.GetString("SEED_TENANT_SLUG"),
		},
	}, nil
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "lexdesk-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("APP_FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("APP_TIMEZONE", "America/Mexico_City")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "lexdesk")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "America/Mexico_City")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 50)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/media")
	viper.SetDefault("UPLOAD_MAX_SIZE", 10485760)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_FROM_NAME", "LexDesk")
	viper.SetDefault("FACTURAMA_SANDBOX", true)
	viper.SetDefault("FACTURAMA_TIMEOUT_SECONDS", 30)
	viper.SetDefault("FACTURAMA_EXPEDITION_PLACE", "54948")
	viper.SetDefault("FACTURAMA_ISSUER_REGIME", "601")
	viper.SetDefault("BILLING_TAX_RATE", "0.16")
	viper.SetDefault("BILLING_DEPOSIT_FRACTION", "0.50")
	viper.SetDefault("BILLING_AUTO_INVOICE_ON_PAID", false)
	viper.SetDefault("BILLING_RECEIVABLE_DUE_DAYS", 30)
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// BaseURL returns the signing API root for the configured environment.
func (c *SigningConfig) BaseURL() string {
	if c.Sandbox {
		return facturamaSandboxURL
	}
	return facturamaProductionURL
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
