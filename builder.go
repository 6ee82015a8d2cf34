package sqlorm

import (
	"strings"

	"go.uber.org/zap"
)

type operation uint8

const (
	opNone operation = iota
	opSelect
	opCount
	opUpdate
	opDelete
)

func (self operation) String() string {
	switch self {
	case opSelect:
		return `select`
	case opCount:
		return `count`
	case opUpdate:
		return `update`
	case opDelete:
		return `delete`
	default:
		return `none`
	}
}

type orderClause struct {
	dir   Dir
	field string
}

type limitClause struct {
	count     int
	offset    int
	hasOffset bool
}

/*
Everything accumulated for one statement. Reset to zero by every render. The
operation payloads (`fields` for select and count, `set` for update) belong to
the active operation only.
*/
type state struct {
	op     operation
	fields string
	set    Row

	where   whereExpr
	groupBy string
	order   *orderClause
	limit   *limitClause

	// Per-render overrides of the persistent config.
	table    string
	hasTable bool
	fill     bool
	hasFill  bool

	// First error recorded by a chained call.
	err error
}

/*
Stateful SQL statement builder for SQLite. Chained calls accumulate an
operation (select, count, update or delete), WHERE predicates, grouping,
ordering and pagination; `(*Builder).Build` renders the statement and resets
the accumulated state, so one builder can be reused for unrelated statements
in sequence:

	b := sqlorm.New(`users`)

	stmt, err := b.Select().Where(`name`, sqlorm.Eq, `A`).And(`age`, sqlorm.Neq, 18).Build()
	// stmt.Text == `SELECT * FROM "users" WHERE name=? AND age!=?`
	// stmt.Args == []any{"A", int64(18)}

	stmt, err = b.Delete().Where(`id`, sqlorm.Eq, 3).Build()
	// stmt.Text == `DELETE FROM "users" WHERE id=?`

Every render is destructive. Interleaving the calls of two statements on one
builder corrupts both; use one builder per in-flight statement, or strictly
sequential reuse. A builder is not safe for concurrent use.

Chained calls never fail immediately. Invalid input, such as an unsupported
value type, is recorded and returned by the next render.
*/
type Builder struct {
	base  Config
	log   *zap.Logger
	state state
}

// Creates a builder for the given table with the default configuration.
func New(table string, opts ...Option) *Builder {
	self := &Builder{
		base: DefaultConfig(table),
		log:  zap.L(),
	}
	for _, opt := range opts {
		opt(self)
	}
	return self
}

// Returns the persistent configuration.
func (self *Builder) Config() Config { return self.base }

// Returns the table the next render targets, including a per-render override.
func (self *Builder) TableName() string {
	if self.state.hasTable {
		return self.state.table
	}
	return self.base.Table
}

// True if the next render uses fill mode, including a per-render override.
func (self *Builder) IsFill() bool {
	if self.state.hasFill {
		return self.state.fill
	}
	return self.base.Fill
}

// Persistently changes the target table, for this and all future renders.
func (self *Builder) SetTable(name string) *Builder {
	self.base.Table = name
	return self
}

// Overrides the target table for the next render only.
func (self *Builder) Table(name string) *Builder {
	self.state.table, self.state.hasTable = name, true
	return self
}

// Persistently changes the fill mode, for this and all future renders.
func (self *Builder) SetFill(fill bool) *Builder {
	self.base.Fill = fill
	return self
}

/*
Overrides the fill mode for the next render only. May be called at any point
of the chain: values are rendered by `(*Builder).Build`, never earlier.
*/
func (self *Builder) Fill(fill bool) *Builder {
	self.state.fill, self.state.hasFill = fill, true
	return self
}

// Discards the accumulated state, including per-render overrides.
func (self *Builder) Clear() *Builder {
	self.state = state{}
	return self
}

/*
Selects `SELECT <fields> FROM`. Fields are joined with commas; no fields means
`*`. Replaces any previously selected operation.
*/
func (self *Builder) Select(fields ...string) *Builder {
	self.setOp(opSelect)
	self.state.fields = strings.Join(fields, `, `)
	if self.state.fields == `` {
		self.state.fields = `*`
	}
	return self
}

/*
Selects `SELECT count(<field>) FROM`. A field already written as `count(...)`
is used as-is. Empty field means `*`.
*/
func (self *Builder) Count(field string) *Builder {
	self.setOp(opCount)
	switch {
	case field == ``:
		self.state.fields = `count(*)`
	case strings.HasPrefix(field, `count(`):
		self.state.fields = field
	default:
		self.state.fields = `count(` + field + `)`
	}
	return self
}

/*
Selects `UPDATE ... SET`. The row is anything accepted by `RowOf`; its column
order is the order of assignments.
*/
func (self *Builder) Update(row any) *Builder {
	self.setOp(opUpdate)
	set, err := RowOf(row)
	if err != nil {
		return self.fail(err)
	}
	self.state.set = set
	return self
}

// Selects `DELETE FROM`.
func (self *Builder) Delete() *Builder {
	self.setOp(opDelete)
	return self
}

// Sets `GROUP BY <field>`.
func (self *Builder) GroupBy(field string) *Builder {
	self.state.groupBy = field
	return self
}

// Sets `ORDER BY <field> <dir>`.
func (self *Builder) OrderBy(dir Dir, field string) *Builder {
	if !dir.valid() {
		return self.fail(errInvalidInput(`setting order`, `unknown direction %q`, dir))
	}
	self.state.order = &orderClause{dir: dir, field: field}
	return self
}

/*
Sets `LIMIT <count>` or, with an offset, `LIMIT <count>,<offset>`. At most one
offset is accepted.
*/
func (self *Builder) Limit(count int, offset ...int) *Builder {
	if len(offset) > 1 {
		return self.fail(errInvalidInput(`setting limit`, `expected at most one offset, got %d`, len(offset)))
	}
	lim := &limitClause{count: count}
	if len(offset) == 1 {
		lim.offset, lim.hasOffset = offset[0], true
	}
	self.state.limit = lim
	return self
}

/*
Renders the accumulated statement and resets the accumulated state, including
per-render overrides. The persistent configuration is kept.

Returns a zero `Statement` and no error if no operation was selected. Returns
the first error recorded by a chained call, if any. In literal mode the
statement's args are empty.
*/
func (self *Builder) Build() (Statement, error) {
	conf, st := self.resolve(), self.state
	self.state = state{}
	if st.err != nil {
		return Statement{}, st.err
	}
	return render(conf, st)
}

/*
Effective configuration of the next render: the persistent config with the
per-render overrides applied.
*/
func (self *Builder) resolve() Config {
	conf := self.base
	conf.Table = self.TableName()
	conf.Fill = self.IsFill()
	return conf
}

// Terminal calls other than `Build` go through this to honor the reset.
func (self *Builder) take() (Config, state) {
	conf, st := self.resolve(), self.state
	self.state = state{}
	return conf, st
}

func (self *Builder) setOp(op operation) {
	self.state.op = op
	self.state.fields = ``
	self.state.set = nil
}

func (self *Builder) fail(err error) *Builder {
	if self.state.err == nil {
		self.state.err = err
	}
	return self
}
