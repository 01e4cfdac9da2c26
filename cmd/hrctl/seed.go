package main

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/seed"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	emailFlag    = "email"
	passwordFlag = "password"
)

var superAdminFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Login email of the super admin (or SUPER_ADMIN_EMAIL)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Initial password, at least 8 characters (or SUPER_ADMIN_PASSWORD)",
	},
}

func newSeedService(db *database.DB) *seed.Service {
	return seed.NewService(
		postgresql.NewTransactor(db),
		postgresql.NewUserRepository(db),
		postgresql.NewCompanyRepository(db),
		postgresql.NewEmployeeRepository(db),
		postgresql.NewLeaveTypeRepository(db),
		postgresql.NewLeaveBalanceRepository(db),
		postgresql.NewSettingsRepository(db),
	)
}

func newSeedDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Create the demo company and one demo account per role",
		Long: `Create the demo company with one demo login per role. The accounts are
used by POST /api/v1/auth/demo when DEMO_LOGIN_ENABLED=true.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := newSeedService(db).SeedDemo(cmd.Context())
			if errors.Is(err, seed.ErrAlreadySeeded) {
				fmt.Fprintln(cmd.OutOrStdout(), "Demo company already exists, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Demo company %s created\n", result.CompanyID)
			for _, email := range result.Accounts {
				fmt.Fprintf(out, "  %s / %s\n", email, fixtures.DemoPassword)
			}
			return nil
		},
	}
}

func newCreateSuperAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-super-admin",
		Short: "Create a super_admin login that can manage every company",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email := superAdminFlags[emailFlag].GetString()
			if email == "" {
				email = viper.GetString("super_admin_email")
			}
			password := superAdminFlags[passwordFlag].GetString()
			if password == "" {
				password = viper.GetString("super_admin_password")
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			created, err := newSeedService(db).CreateSuperAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Super admin %s created (id %s)\n", created.Email, created.ID)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, superAdminFlags)
	return cmd
}
