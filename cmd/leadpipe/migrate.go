package main

import (
	"github.com/spf13/cobra"

	"github.com/xavierca1/lead-pipeline/internal/infra/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `migrate creates the leads, outreach_activities and meetings tables, their
indexes and the trigger that publishes row changes on the lead_changes channel.
Every statement is idempotent, so migrate is safe to run on each deploy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := database.Migrate(ctx, a.db); err != nil {
			return err
		}
		a.logger.Info("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
