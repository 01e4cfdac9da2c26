package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const databaseURLFlag = "database-url"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hrctl",
		Short:         "Administrative tasks for the HRIS attendance service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load .env file: %w", err)
			}
			level := slog.LevelInfo
			if viper.GetBool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	root.PersistentFlags().String(databaseURLFlag, "", "PostgreSQL connection string (defaults to DATABASE_URL or the DB_* variables)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	_ = viper.BindPFlag(databaseURLFlag, root.PersistentFlags().Lookup(databaseURLFlag))
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_user", "postgres")
	viper.SetDefault("db_name", "hris_attendance")
	viper.SetDefault("db_ssl_mode", "disable")

	root.AddCommand(
		newMigrateCommand(),
		newSeedDemoCommand(),
		newCreateSuperAdminCommand(),
		newRunJobCommand(),
	)
	return root
}

// databaseURL prefers an explicit URL and otherwise builds one from the same
// DB_* variables the API server reads.
func databaseURL() string {
	if url := viper.GetString(databaseURLFlag); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		viper.GetString("db_user"),
		viper.GetString("db_password"),
		viper.GetString("db_host"),
		viper.GetInt("db_port"),
		viper.GetString("db_name"),
		viper.GetString("db_ssl_mode"),
	)
}

func openDB(ctx context.Context) (*database.DB, error) {
	db, err := database.NewPostgreSQLDB(ctx, databaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
