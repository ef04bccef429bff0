package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/storage"
)

func (c *CLI) migrateCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = config.Load().SQLiteDBPath
			}
			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return fmt.Errorf("create database directory: %w", err)
			}
			if err := storage.RunMigrations(dbPath); err != nil {
				return err
			}
			if c.logger != nil {
				c.logger.Info("Migrations applied", log.FieldOperation, log.OpMigrate, log.FieldPath, dbPath)
			}
			fmt.Fprintf(c.out, "database %s is up to date\n", dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default $SQLITE_DB_PATH or ./data/budget.db)")

	return cmd
}
