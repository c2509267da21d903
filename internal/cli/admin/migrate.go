package admin

import (
	"fmt"

	"github.com/cloo-solutions/linkshelf/internal/config"
	"github.com/cloo-solutions/linkshelf/internal/database"
	"github.com/cloo-solutions/linkshelf/internal/logging"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE:      runMigrate,
	}

	cmd.Flags().String("migrations", database.DefaultMigrationsDir, "Migrations directory")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	direction := database.MigrateUp
	if len(args) == 1 {
		switch args[0] {
		case "up":
		case "down":
			direction = database.MigrateDown
		default:
			return fmt.Errorf("unknown direction %q (expected up or down)", args[0])
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.LogFormat, cfg.Debug)

	dir, _ := cmd.Flags().GetString("migrations")
	version, err := database.Migrate(cfg.DatabaseURL, dir, direction, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Database at migration version %d\n", version)
	return nil
}
