/*
sqlorm: fluent, stateful SQL statement builder for SQLite. Accumulates an
operation, WHERE predicates, grouping, ordering and pagination through chained
calls, then renders one statement on demand. It's an "ORM" in name only: it
never executes anything. See the sibling package "store" for running the
statements against a database.

Key Features

• Two rendering modes. Fill mode emits `?` placeholders and an ordered list of
args; literal mode inlines the values.

• Clear-on-read: every render resets the builder, so one instance can render
any number of unrelated statements in sequence.

• Per-render and persistent scoping of the target table and fill mode.

• Batch INSERT sliced by the placeholder limit, and batch UPDATE via
`CASE WHEN` sliced by a row limit.

• Typed values: unsupported Go values are rejected with `ErrInvalidValue`
instead of being stringified.

• Converts structs with `db:"..."` tags into ordered rows.

Examples

See `Builder`, `(*Builder).InsertMany`, `BuildCaseUpdate` and
`(*Builder).CreateTable` for examples.
*/
package sqlorm
