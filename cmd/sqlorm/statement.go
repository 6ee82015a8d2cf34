package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlorm/sqlorm"
	"github.com/sqlorm/sqlorm/internal/cli"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Print the CREATE TABLE statement of the schema",
	Example: `  # Print DDL for the configured schema
  sqlorm create

  # Print DDL for another schema file
  sqlorm create --schema tables/users.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := loadSchema()
		if err != nil {
			return err
		}

		stmt, err := newBuilder(schema.Name).CreateTable(schema.Fields)
		if err != nil {
			return cli.SchemaParseError("rendering CREATE TABLE", err)
		}
		printStatement(cmd.OutOrStdout(), stmt)
		return nil
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Print the DROP TABLE statement",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolveTable()
		if err != nil {
			return err
		}
		printStatement(cmd.OutOrStdout(), newBuilder(table).DropTable())
		return nil
	},
}

var addColumnCmd = &cobra.Command{
	Use:   "add-column <name> <type>",
	Short: "Print an ALTER TABLE statement adding one column",
	Long: `Print an ALTER TABLE statement adding one column.

Supported types: INTEGER, LONG, FLOAT, VARCHAR, TEXT.`,
	Example: `  sqlorm add-column --table users age INTEGER`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolveTable()
		if err != nil {
			return err
		}

		typ := sqlorm.DataType(strings.ToUpper(args[1]))
		stmt, err := newBuilder(table).AddColumn(args[0], typ)
		if err != nil {
			return cli.GeneralError("rendering ALTER TABLE", err)
		}
		printStatement(cmd.OutOrStdout(), stmt)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version [number]",
	Short: "Print the PRAGMA statement reading or storing the schema version",
	Example: `  # Read the version
  sqlorm version

  # Store version 3
  sqlorm version 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bui := newBuilder(resolveString(tableName, cfg.Table))
		if len(args) == 0 {
			printStatement(cmd.OutOrStdout(), bui.UserVersion())
			return nil
		}

		num, err := strconv.Atoi(args[0])
		if err != nil || num < 0 {
			return cli.GeneralError(fmt.Sprintf("invalid version %q", args[0]), sqlorm.ErrInvalidInput)
		}
		// SQLite doesn't bind PRAGMA args.
		printStatement(cmd.OutOrStdout(), bui.Fill(false).SetVersion(num))
		return nil
	},
}

// resolveTable returns the table from the flag or config, falling back to the
// schema file.
func resolveTable() (string, error) {
	if table := resolveString(tableName, cfg.Table); table != "" {
		return table, nil
	}
	schema, err := loadSchema()
	if err != nil {
		return "", err
	}
	return schema.Name, nil
}
