package main

import (
	"job-trail/internal/app"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		container, err := app.NewContainer(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer container.Close()

		n, err := container.Migrate(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("migrations applied", "count", n)
		return nil
	},
}
