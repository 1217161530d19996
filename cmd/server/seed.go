package main

import (
	"job-trail/internal/app"
	"job-trail/internal/database/seeder"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create or promote the administrator from ADMIN_EMAIL and ADMIN_PASSWORD",
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

		seeders := seeder.Defaults(cfg)
		if len(seeders) == 0 {
			log.Warn("nothing to seed: ADMIN_EMAIL and ADMIN_PASSWORD are not set")
			return nil
		}
		return seeder.Runner{Seeders: seeders, Logger: log.WithPrefix("seeder")}.Run(cmd.Context(), container.DB)
	},
}
