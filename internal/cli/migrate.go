package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	postgres "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/platform/logging"
)

func newMigrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded Postgres migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			log := logging.New(os.Getenv("LOG_LEVEL"), cmd.ErrOrStderr())

			pool, err := postgres.NewPool(cmd.Context(), dsn, postgres.PoolOptions{MaxConns: 1})
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			if applied == nil {
				applied = []string{}
			}
			for _, name := range applied {
				log.Info().Str("migration", name).Msg("applied")
			}
			return outputJSON(cmd.OutOrStdout(), map[string]any{"applied": applied})
		},
	}
	cmd.Flags().StringVar(&dsn, "database-url", "", "Postgres DSN (defaults to $DATABASE_URL)")
	return cmd
}
