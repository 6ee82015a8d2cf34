package main

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sqlorm/sqlorm"
	"github.com/sqlorm/sqlorm/internal/cli"
	"github.com/sqlorm/sqlorm/store"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string
	logger     = zap.NewNop()

	// Persistent flags
	cfgFile    string
	schemaFile string
	tableName  string
	verbose    int
	quiet      bool
)

// Set via ldflags at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sqlorm",
	Short: "SQLite table schemas and statements",
	Long: `sqlorm - SQLite table schemas and statements

Renders DDL for YAML table schemas and brings SQLite databases in line with
them: missing tables are created, missing columns added, and the schema
version tracked in PRAGMA user_version.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		logger, err = cli.NewLogger(verbose, quiet)
		if err != nil {
			return cli.GeneralError("creating logger", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Command group IDs
const (
	groupStatement = "statement"
	groupDatabase  = "database"
	groupUtility   = "utility"
)

func init() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	rootCmd.Version = version

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default: auto-discover sqlorm.yaml)")
	f.StringVar(&schemaFile, "schema", "", "table schema file (default: from config)")
	f.StringVar(&tableName, "table", "", "table name (default: from config or schema)")
	f.CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	f.BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupStatement, Title: "Statements:"},
		&cobra.Group{ID: groupDatabase, Title: "Database:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	createCmd.GroupID = groupStatement
	dropCmd.GroupID = groupStatement
	addColumnCmd.GroupID = groupStatement
	versionCmd.GroupID = groupStatement
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(addColumnCmd)
	rootCmd.AddCommand(versionCmd)

	migrateCmd.GroupID = groupDatabase
	rootCmd.AddCommand(migrateCmd)

	configCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadSchema reads the schema file from the flag or config.
func loadSchema() (store.Schema, error) {
	path := resolveString(schemaFile, cfg.Schema)
	schema, err := store.LoadSchema(path)
	if err != nil {
		return store.Schema{}, cli.SchemaParseError("loading schema", err)
	}
	schema.Name = resolveString(tableName, cfg.Table, schema.Name)
	return schema, nil
}

// newBuilder creates a builder for the given table using the configured settings.
func newBuilder(table string) *sqlorm.Builder {
	return sqlorm.New(table, sqlorm.WithConfig(cfg.BuilderConfig(table)), sqlorm.WithLogger(logger))
}

// printStatement writes the statement text, followed by its args as a comment.
func printStatement(out io.Writer, stmt sqlorm.Statement) {
	fmt.Fprintln(out, stmt.Text)
	if len(stmt.Args) > 0 {
		fmt.Fprintf(out, "-- args: %v\n", stmt.Args)
	}
}
