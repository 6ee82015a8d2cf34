package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sqlorm/sqlorm"
	"github.com/sqlorm/sqlorm/internal/cli"
	"github.com/sqlorm/sqlorm/store"
)

var migrateDB string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or repair the table in a SQLite database",
	Long: `Bring a SQLite database in line with the table schema.

Creates the table if it doesn't exist, otherwise adds the schema columns it
lacks. If the schema version is above PRAGMA user_version, stores the new
version. Columns are never dropped and the version is never lowered.`,
	Example: `  # Migrate the configured database
  sqlorm migrate

  # Migrate another database file
  sqlorm migrate --db app.db --schema tables/users.yaml -v`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := loadSchema()
		if err != nil {
			return err
		}

		dsn := resolveString(migrateDB, cfg.Database)
		if dsn == "" {
			return cli.ConfigError("database is required (use --db or set in config)", nil)
		}

		return runMigrate(cmd.Context(), cmd.OutOrStdout(), dsn, schema)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDB, "db", "", "SQLite database path or DSN")
}

func runMigrate(ctx context.Context, out io.Writer, dsn string, schema store.Schema) error {
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return cli.DBConnectError("connecting to database", err)
	}
	defer func() { _ = db.Close() }()

	conf := cfg.BuilderConfig(schema.Name)
	tab := store.NewTable(db, schema,
		store.WithBuilder(sqlorm.WithConfig(conf)),
		store.WithLogger(logger),
	)

	if err := tab.Init(ctx); err != nil {
		return cli.GeneralError("migration failed", err)
	}

	if !quiet {
		version, err := tab.StoredVersion(ctx)
		if err != nil {
			return cli.GeneralError("reading version", err)
		}
		fmt.Fprintf(out, "Table %q is up to date (version %d).\n", schema.Name, version)
	}
	return nil
}
