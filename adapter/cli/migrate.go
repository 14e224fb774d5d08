package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
	_ "github.com/daybreakhq/daybreak/internal/shared/infrastructure/database/postgres"
	_ "github.com/daybreakhq/daybreak/internal/shared/infrastructure/database/sqlite"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/migrations"
	"github.com/daybreakhq/daybreak/pkg/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			conn, err := database.NewConnection(cmd.Context(), database.Config{URL: cfg.DatabaseURL})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer conn.Close()

			if err := migrations.Run(cmd.Context(), conn); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("migrations applied")
			return nil
		},
	}
}
