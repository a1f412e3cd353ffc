package main

import (
	"context"
	"database/sql"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"cyberkids_accounts/internal/config"
	"cyberkids_accounts/internal/repository"
	"cyberkids_accounts/internal/repository/db"
)

// NewRootCmd creates the root command. Without a subcommand it serves HTTP.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cyberkids",
		Short:        "Cyberkids accounts service",
		Long:         `Registration, login and parent/child account linking for cyberkids.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file path (default configs/config.yml)")
	flags.String("port", "", "HTTP listen port")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewAccountsCmd())

	return cmd
}

// loadConfig builds the settings from file, env and the persistent flags.
// Flags only override when set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViper()
	flags := cmd.Flags()
	if f := flags.Lookup("port"); f != nil && f.Changed {
		v.Set("port", f.Value.String())
	}
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		v.Set("log.level", f.Value.String())
	}
	path, _ := flags.GetString("config")

	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
	}
	return cfg, nil
}

// openStore connects to the configured database and applies pending
// migrations. The caller closes the returned db.
func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, *repository.Repository, int, error) {
	conn, dialect, err := db.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, 0, oops.Code("DB_CONNECT_FAILED").With("driver", cfg.DB.Driver).Wrap(err)
	}
	applied, err := db.Migrate(ctx, conn, dialect)
	if err != nil {
		_ = conn.Close()
		return nil, nil, 0, oops.Code("MIGRATION_FAILED").With("driver", cfg.DB.Driver).Wrap(err)
	}
	return conn, repository.NewRepository(conn, dialect), applied, nil
}
