package sqlorm

import (
	"strings"
)

// Name of the SQLite schema table queried by `(*Builder).TableInfo`.
const SchemaTable = `sqlite_master`

/*
Renders a select of the schema entry of the given table:

	SELECT * FROM "sqlite_master" WHERE type="table" AND name="<name>"

Empty name means the builder's current table. The result's `sql` column holds
the table's CREATE statement, see `ParseCreate`. Resets the accumulated state.
*/
func (self *Builder) TableInfo(name string) (Statement, error) {
	conf, _ := self.take()
	if name == `` {
		name = conf.Table
	}
	conf.Table = SchemaTable

	return New(SchemaTable, WithConfig(conf), WithLogger(self.log)).
		Select().
		Where(`type`, Eq, `table`).
		And(`name`, Eq, name).
		Build()
}

/*
Renders `SELECT * FROM "<table>" WHERE <field>=<id>`. Empty field means `id`.
Previously accumulated clauses are discarded; per-render overrides apply.
*/
func (self *Builder) FindByID(id any, field string) (Statement, error) {
	return self.restart().Select().Where(idField(field), Eq, id).Build()
}

// Renders `SELECT * FROM "<table>"`, discarding previously accumulated clauses.
func (self *Builder) SelectAll() (Statement, error) {
	return self.restart().Select().Build()
}

/*
Renders `DELETE FROM "<table>" WHERE <field>=<id>`. Empty field means `id`.
Previously accumulated clauses are discarded; per-render overrides apply.
*/
func (self *Builder) DeleteByID(id any, field string) (Statement, error) {
	return self.restart().Delete().Where(idField(field), Eq, id).Build()
}

/*
Renders `DELETE FROM "<table>" WHERE 1=1`, discarding previously accumulated
clauses.
*/
func (self *Builder) DeleteAll() (Statement, error) {
	return self.restart().Delete().Where(`1`, Eq, 1).Build()
}

// Renders `PRAGMA user_version`. Resets the accumulated state.
func (self *Builder) UserVersion() Statement {
	self.take()
	return Statement{Text: `PRAGMA user_version`, Args: []any{}}
}

// Drops accumulated clauses and errors, keeping per-render overrides.
func (self *Builder) restart() *Builder {
	prev := self.state
	self.state = state{
		table:    prev.table,
		hasTable: prev.hasTable,
		fill:     prev.fill,
		hasFill:  prev.hasFill,
	}
	return self
}

func idField(field string) string {
	if field == `` {
		return `id`
	}
	return field
}

/*
Recovers the column list from a CREATE TABLE statement, such as the `sql`
column of `sqlite_master`. The inverse of `(*Builder).CreateTable` for the
statements it renders. Table constraints (`PRIMARY KEY (...)`, `UNIQUE`,
`CHECK`, `FOREIGN KEY`, `CONSTRAINT`) are skipped. Type parameters such as
`VARCHAR(255)` are dropped. Types outside of `DataType` constants, such as
`BLOB` or `REAL`, are kept as written in upper case, and a column declared
without a type gets an empty one.
*/
func ParseCreate(src string) ([]Field, error) {
	const while = `parsing CREATE TABLE`

	start := strings.IndexByte(src, '(')
	end := strings.LastIndexByte(src, ')')
	if start < 0 || end < start {
		return nil, errInvalidInput(while, `missing column list in %q`, src)
	}

	var out []Field
	for _, def := range splitTopLevel(src[start+1:end], ',') {
		words := strings.Fields(def)
		if len(words) == 0 || isTableConstraint(words[0]) {
			continue
		}

		field := Field{Name: unquoteIdent(words[0])}
		rest := words[1:]
		if len(rest) > 0 && !isColumnConstraint(rest[0]) {
			typ := strings.ToUpper(rest[0])
			if ind := strings.IndexByte(typ, '('); ind >= 0 {
				typ = typ[:ind]
			}
			field.Type = DataType(typ)
			rest = rest[1:]
		}
		field.PrimaryKey = hasWords(rest, `PRIMARY`, `KEY`)
		field.NotNull = hasWords(rest, `NOT`, `NULL`)
		out = append(out, field)
	}

	if len(out) == 0 {
		return nil, errInvalidInput(while, `no columns in %q`, src)
	}
	return out, nil
}

// Splits on `sep` outside of nested parens and quotes.
func splitTopLevel(src string, sep byte) []string {
	var out []string
	var quote byte
	depth, prev := 0, 0

	for ind := 0; ind < len(src); ind++ {
		char := src[ind]
		switch {
		case quote != 0:
			if char == quote {
				quote = 0
			}
		case char == '"' || char == '\'' || char == '`':
			quote = char
		case char == '(':
			depth++
		case char == ')':
			depth--
		case char == sep && depth == 0:
			out = append(out, src[prev:ind])
			prev = ind + 1
		}
	}
	return append(out, src[prev:])
}

func isTableConstraint(word string) bool {
	switch strings.ToUpper(word) {
	case `PRIMARY`, `UNIQUE`, `CHECK`, `FOREIGN`, `CONSTRAINT`:
		return true
	default:
		return false
	}
}

// First words of column constraints, which may directly follow an untyped column.
func isColumnConstraint(word string) bool {
	switch strings.ToUpper(word) {
	case `PRIMARY`, `NOT`, `NULL`, `UNIQUE`, `CHECK`, `DEFAULT`, `COLLATE`, `REFERENCES`, `CONSTRAINT`, `GENERATED`, `AS`:
		return true
	default:
		return false
	}
}

func hasWords(words []string, first, second string) bool {
	for ind := 0; ind+1 < len(words); ind++ {
		if strings.EqualFold(words[ind], first) && strings.EqualFold(words[ind+1], second) {
			return true
		}
	}
	return false
}

func unquoteIdent(src string) string {
	if len(src) >= 2 {
		switch src[0] {
		case '"', '`', '[':
			return src[1 : len(src)-1]
		}
	}
	return src
}
