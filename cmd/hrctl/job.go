package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

func newJobScheduler(db *database.DB) *cron.Scheduler {
	scheduler := cron.NewScheduler()
	// Intervals are irrelevant here, jobs run once.
	cron.NewAttendanceJobs(
		postgresql.NewCompanyRepository(db),
		postgresql.NewSettingsRepository(db),
		postgresql.NewHolidayRepository(db),
		postgresql.NewAttendanceRepository(db),
		time.Hour,
	).RegisterJobs(scheduler)
	cron.NewTokenJobs(postgresql.NewJWTRepository(db), time.Hour).RegisterJobs(scheduler)
	return scheduler
}

func newRunJobCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run-job [name]",
		Short: "Run a background job once, or every job when no name is given",
		Long: `Run a background job once, outside the API server. Known jobs:
  mark_absent             record absent for employees with no check-in or leave
  expire_refresh_tokens   delete expired and revoked refresh tokens`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			scheduler := newJobScheduler(db)
			if len(args) == 0 {
				if err := scheduler.RunOnce(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ran jobs: %s\n", strings.Join(scheduler.JobNames(), ", "))
				return nil
			}

			if err := scheduler.RunJob(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ran job: %s\n", args[0])
			return nil
		},
	}
}
