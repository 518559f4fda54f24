package cli

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-thoughts/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

var migrateMax int

func init() {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded PostgreSQL migrations",
	}
	cmd.PersistentFlags().IntVar(&migrateMax, "max", 0, "Maximum number of migrations to apply (0 = all)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd, migrate.Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back applied migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd, migrate.Down)
			},
		},
	)

	RootCmd.AddCommand(cmd)
}

func runMigrate(cmd *cobra.Command, direction migrate.MigrationDirection) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations need DB_DRIVER=%s, got %q", config.DriverPostgres, cfg.Database.Driver)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	n, err := database.Migrate(db, direction, migrateMax)
	if err != nil {
		return err
	}

	verb := "Applied"
	if direction == migrate.Down {
		verb = "Rolled back"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d migration(s)\n", verb, n)
	return nil
}
