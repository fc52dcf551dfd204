package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neu-csye6225/webapp/internal/repository"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeDB, err := openMigrator()
			if err != nil {
				return err
			}
			defer closeDB()

			applied, err := migrator.Migrate(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeDB, err := openMigrator()
			if err != nil {
				return err
			}
			defer closeDB()

			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return err
			}

			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-8s  %s\n", s.Version, state, s.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Revert the most recently applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeDB, err := openMigrator()
			if err != nil {
				return err
			}
			defer closeDB()

			return migrator.Rollback(cmd.Context())
		},
	})

	return cmd
}

func openMigrator() (*repository.Migrator, func(), error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := repository.NewDB(repository.DBConfig{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN()}, log)
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if err := repository.CloseDB(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
	return repository.NewMigrator(db), closeDB, nil
}
