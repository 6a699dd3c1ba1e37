package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ratescope/internal/adapters/observability"
	"ratescope/internal/shared"
	pgrepo "ratescope/internal/storage/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg := shared.Load()
			log.Logger = observability.NewLogger(cfg.AppEnv)

			db, err := sql.Open("postgres", cfg.PostgresDSN)
			if err != nil {
				return fmt.Errorf("sql.Open: %w", err)
			}
			defer db.Close()
			if err := pgrepo.AutoMigrate(db); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}
