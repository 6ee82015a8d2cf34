package sqlorm

import (
	"fmt"
	r "reflect"
	"sort"

	"github.com/mitranim/refut"
)

// Named value of a row.
type Col struct {
	Name  string
	Value any
}

/*
Ordered set of column values, used by INSERT and UPDATE. Unlike a map, a `Row`
keeps the order of its columns, which determines the order of fields in the
generated SQL.
*/
type Row []Col

// Column names in order.
func (self Row) Names() []string {
	out := make([]string, len(self))
	for ind, col := range self {
		out[ind] = col.Name
	}
	return out
}

// Returns the value of the first column with the given name.
func (self Row) Get(name string) (any, bool) {
	for _, col := range self {
		if col.Name == name {
			return col.Value, true
		}
	}
	return nil, false
}

// Returns a copy of the row. Nil stays nil.
func (self Row) Clone() Row {
	if self == nil {
		return nil
	}
	return append(make(Row, 0, len(self)), self...)
}

// Returns a copy of the row without the named column.
func (self Row) Without(name string) Row {
	out := make(Row, 0, len(self))
	for _, col := range self {
		if col.Name != name {
			out = append(out, col)
		}
	}
	return out
}

/*
Converts the input into a `Row`. Accepts:

	* `Row`, copied as-is.
	* `map[string]any`, with columns sorted by name.
	* Struct or struct pointer. Fields with a `db:"..."` tag become columns,
	  in declaration order. Embedded structs are traversed.

Nil pointers and other inputs result in `ErrInvalidInput`.
*/
func RowOf(src any) (Row, error) {
	switch src := src.(type) {
	case Row:
		return append(Row(nil), src...), nil
	case map[string]any:
		return mapRow(src), nil
	case nil:
		return nil, errInvalidInput(`converting row`, `expected struct, Row or map, got nil`)
	}

	rval := r.ValueOf(src)
	rtype := refut.RtypeDeref(rval.Type())
	if rtype.Kind() != r.Struct {
		return nil, errInvalidInput(`converting row`, `expected struct, Row or map, got %q`, rtype)
	}
	if refut.IsRvalNil(rval) {
		return nil, errInvalidInput(`converting row`, `expected struct, got nil %q`, rval.Type())
	}
	for rval.Kind() == r.Ptr {
		rval = rval.Elem()
	}

	var out Row
	err := refut.TraverseStructRval(rval, func(rval r.Value, sfield r.StructField, _ []int) error {
		colName := sfieldColumnName(sfield)
		if colName == `` || !sfield.IsExported() {
			return nil
		}
		out = append(out, Col{Name: colName, Value: rval.Interface()})
		return nil
	})
	if err != nil {
		return nil, ErrInternal.while(`traversing struct for DB fields`).because(err)
	}
	return out, nil
}

/*
Converts each element of a slice via `RowOf`. Accepts `[]Row` directly and any
other slice or array whose elements `RowOf` understands.
*/
func RowsOf(src any) ([]Row, error) {
	if rows, ok := src.([]Row); ok {
		out := make([]Row, len(rows))
		for ind, row := range rows {
			out[ind] = append(Row(nil), row...)
		}
		return out, nil
	}

	rval := r.ValueOf(src)
	if rval.Kind() != r.Slice && rval.Kind() != r.Array {
		return nil, errInvalidInput(`converting rows`, `expected slice, got %v`, rval.Kind())
	}

	out := make([]Row, rval.Len())
	for ind := range out {
		row, err := RowOf(rval.Index(ind).Interface())
		if err != nil {
			return nil, err
		}
		out[ind] = row
	}
	return out, nil
}

func mapRow(src map[string]any) Row {
	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(Row, len(keys))
	for ind, key := range keys {
		out[ind] = Col{Name: key, Value: src[key]}
	}
	return out
}

func sfieldColumnName(sfield r.StructField) string {
	return refut.TagIdent(sfield.Tag.Get(`db`))
}

// Converts the values of the given fields in order. Extra columns of the row
// are ignored, missing ones are an error.
func rowValues(row Row, fields []string, while string) ([]Value, error) {
	out := make([]Value, len(fields))
	for ind, field := range fields {
		src, ok := row.Get(field)
		if !ok {
			return nil, ErrMissingField.while(while).because(fmt.Errorf(`row has no field %q`, field))
		}
		val, err := scalarOf(src)
		if err != nil {
			return nil, errInvalidValue(while, field, src, err)
		}
		out[ind] = val
	}
	return out, nil
}
