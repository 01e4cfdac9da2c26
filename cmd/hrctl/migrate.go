package main

import (
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the embedded schema migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: withMigrator(func(cmd *cobra.Command, m *database.Migrator) error {
				applied, err := m.Up(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withMigrator(func(cmd *cobra.Command, m *database.Migrator) error {
				if err := m.Down(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rolled back 1 migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version and pending migrations",
			RunE: withMigrator(func(cmd *cobra.Command, m *database.Migrator) error {
				status, err := m.Status(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Current version: %d\n", status.CurrentVersion)
				fmt.Fprintf(out, "Total migrations: %d\n", status.TotalMigrations)
				if status.HasPendingChanges {
					fmt.Fprintf(out, "Pending: %v\n", status.PendingMigrations)
				} else {
					fmt.Fprintln(out, "Schema is up to date")
				}
				return nil
			}),
		},
	)
	return migrateCmd
}

func withMigrator(fn func(cmd *cobra.Command, m *database.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		migrator, err := database.NewMigrator(db)
		if err != nil {
			return err
		}
		return fn(cmd, migrator)
	}
}
