package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/config"
	"github.com/pageza/mealmatch/backend/internal/database"
	"github.com/pageza/mealmatch/backend/internal/logging"
)

// rootCmd applies pending migrations
var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply the embedded SQL migrations to the configured database.

Configuration is read the same way the API server reads it: CONFIG_FILE,
environment variables and, outside CI, Docker secrets.`,
	SilenceUsage: true,
	RunE:         runUp,
}

// statusCmd lists migrations not applied yet
var statusCmd = &cobra.Command{
	Use:          "status",
	Short:        "List pending migrations",
	SilenceUsage: true,
	RunE:         runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, true)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, logger); err != nil {
		return err
	}
	logger.Info("migrations complete")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	pending, err := database.PendingMigrations(db)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
		return nil
	}
	for _, name := range pending {
		fmt.Fprintln(cmd.OutOrStdout(), "pending:", name)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
