// Package main provides a CLI for SQLite table schemas managed by sqlorm.
//
// The CLI supports:
//   - create: Print the CREATE TABLE statement of a schema file
//   - drop: Print the DROP TABLE statement
//   - add-column: Print an ALTER TABLE statement adding one column
//   - version: Print the PRAGMA statement reading or storing the schema version
//   - migrate: Create or repair the table in a SQLite database
//   - config show: Print the effective configuration
//
// Usage:
//
//	sqlorm [flags] <command>
package main

func main() {
	Execute()
}
