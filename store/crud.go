package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlorm/sqlorm"
)

// Selects every row.
func (self *Table) List(ctx context.Context) ([]sqlorm.Row, error) {
	stmt, err := self.builder().SelectAll()
	if err != nil {
		return nil, err
	}
	return self.read(ctx, stmt)
}

/*
Selects the rows matching the scope. The scope receives a builder with SELECT
already chosen and may add predicates, ordering and pagination.
*/
func (self *Table) Find(ctx context.Context, scope Scope, fields ...string) ([]sqlorm.Row, error) {
	stmt, err := applyScope(self.builder().Select(fields...), scope).Build()
	if err != nil {
		return nil, err
	}
	return self.read(ctx, stmt)
}

// Selects the row with the given key, or false if there is none.
func (self *Table) Get(ctx context.Context, id any) (sqlorm.Row, bool, error) {
	stmt, err := self.builder().FindByID(id, self.Key)
	if err != nil {
		return nil, false, err
	}

	rows, err := self.read(ctx, stmt)
	if err != nil || len(rows) == 0 {
		return nil, false, err
	}
	return rows[0], true, nil
}

/*
Selects the rows whose `field` is one of `vals`. Large inputs are split into
several queries, each within the builder's placeholder limit.
*/
func (self *Table) FindIn(ctx context.Context, field string, vals []any) ([]sqlorm.Row, error) {
	bui := self.builder()
	chunks, err := sqlorm.Chunk(vals, bui.Config().MaxBoundVariables)
	if err != nil {
		return nil, err
	}

	var out []sqlorm.Row
	for _, chunk := range chunks {
		stmt, err := bui.Select().Where(field, sqlorm.In, chunk).Build()
		if err != nil {
			return nil, err
		}

		rows, err := self.read(ctx, stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// Counts the rows matching the scope. Nil scope counts every row.
func (self *Table) Count(ctx context.Context, scope Scope) (int64, error) {
	stmt, err := applyScope(self.builder().Count(``), scope).Build()
	if err != nil {
		return 0, err
	}

	rows, err := self.read(ctx, stmt)
	if err != nil {
		return 0, err
	}
	val, err := scalar(rows)
	if err != nil {
		return 0, fmt.Errorf("counting %q: %w", self.Name, err)
	}
	return toInt64(val)
}

// Inserts or replaces one row. Accepts anything understood by `sqlorm.RowOf`.
func (self *Table) Insert(ctx context.Context, row any) error {
	stmt, err := self.builder().Insert(row)
	if err != nil {
		return err
	}
	return self.write(ctx, stmt)
}

// Updates the row with the given key. Returns the number of affected rows.
func (self *Table) UpdateByID(ctx context.Context, id any, row any) (int64, error) {
	return self.UpdateWhere(ctx, row, func(bui *sqlorm.Builder) *sqlorm.Builder {
		return bui.Where(self.Key, sqlorm.Eq, id)
	})
}

/*
Updates the rows matching the scope. Nil scope updates every row. Returns the
number of affected rows.
*/
func (self *Table) UpdateWhere(ctx context.Context, row any, scope Scope) (int64, error) {
	stmt, err := applyScope(self.builder().Update(row), scope).Build()
	if err != nil {
		return 0, err
	}
	return self.affect(ctx, stmt)
}

// Deletes the row with the given key. Returns the number of affected rows.
func (self *Table) DeleteByID(ctx context.Context, id any) (int64, error) {
	stmt, err := self.builder().DeleteByID(id, self.Key)
	if err != nil {
		return 0, err
	}
	return self.affect(ctx, stmt)
}

/*
Deletes the rows matching the scope. A nil scope is rejected: use `Clear` to
delete everything.
*/
func (self *Table) DeleteWhere(ctx context.Context, scope Scope) (int64, error) {
	if scope == nil {
		return 0, fmt.Errorf("deleting from %q: %w", self.Name, sqlorm.ErrInvalidInput)
	}
	stmt, err := scope(self.builder().Delete()).Build()
	if err != nil {
		return 0, err
	}
	return self.affect(ctx, stmt)
}

/*
Deletes the rows whose `field` is one of `vals`, split into statements within
the placeholder limit. Returns the total number of affected rows.
*/
func (self *Table) DeleteIn(ctx context.Context, field string, vals []any) (int64, error) {
	bui := self.builder()
	chunks, err := sqlorm.Chunk(vals, bui.Config().MaxBoundVariables)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, chunk := range chunks {
		stmt, err := bui.Delete().Where(field, sqlorm.In, chunk).Build()
		if err != nil {
			return total, err
		}

		count, err := self.affect(ctx, stmt)
		total += count
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Deletes every row. Returns the number of affected rows.
func (self *Table) Clear(ctx context.Context) (int64, error) {
	stmt, err := self.builder().DeleteAll()
	if err != nil {
		return 0, err
	}
	return self.affect(ctx, stmt)
}

func applyScope(bui *sqlorm.Builder, scope Scope) *sqlorm.Builder {
	if scope == nil {
		return bui
	}
	return scope(bui)
}

func (self *Table) read(ctx context.Context, stmt sqlorm.Statement) ([]sqlorm.Row, error) {
	rows, err := self.query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", self.Name, err)
	}
	return rows, nil
}

func (self *Table) write(ctx context.Context, stmt sqlorm.Statement) error {
	_, err := self.affect(ctx, stmt)
	return err
}

func (self *Table) affect(ctx context.Context, stmt sqlorm.Statement) (int64, error) {
	res, err := self.execute(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("writing %q: %w", self.Name, err)
	}
	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int64, error) {
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return count, nil
}
