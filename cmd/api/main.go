package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/lexdesk-api/internal/config"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "lexdesk",
	Short: "LexDesk practice management API",
	Long: `LexDesk serves the multi-tenant API used by law firms to manage their
clients, matters, documents, quotes, collections and CFDI invoices.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		return database.AutoMigrate(db)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create permissions, roles and the bootstrap administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		return database.SeedDefaultData(db, database.SeedOptions{
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
			AdminName:     cfg.Seed.AdminName,
			TenantName:    cfg.Seed.TenantName,
			TenantSlug:    cfg.Seed.TenantSlug,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to the env file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (trace, debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// bootstrap loads configuration and installs the global logger
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stdout}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
