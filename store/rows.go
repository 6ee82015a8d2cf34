package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/sqlorm/sqlorm"
)

/*
Reads all rows into `sqlorm.Row` values, in column order, and closes `rows`.
Byte slices returned by the driver for text columns are converted to strings.
*/
func scanRows(rows *sql.Rows) (_ []sqlorm.Row, err error) {
	defer func() {
		if closeErr := rows.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var out []sqlorm.Row
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for ind := range vals {
		ptrs[ind] = &vals[ind]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(sqlorm.Row, len(cols))
		for ind, col := range cols {
			val := vals[ind]
			if bytes, ok := val.([]byte); ok {
				val = string(bytes)
			}
			row[ind] = sqlorm.Col{Name: col, Value: val}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Single value of a single-row result, such as `count(*)` or a PRAGMA.
func scalar(rows []sqlorm.Row) (any, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, sql.ErrNoRows
	}
	return rows[0][0].Value, nil
}

func toInt64(src any) (int64, error) {
	switch src := src.(type) {
	case int64:
		return src, nil
	case int:
		return int64(src), nil
	case int32:
		return int64(src), nil
	case float64:
		return int64(src), nil
	case string:
		return strconv.ParseInt(src, 10, 64)
	default:
		return 0, fmt.Errorf("expected integer, got %T", src)
	}
}

func toString(src any) string {
	switch src := src.(type) {
	case nil:
		return ``
	case string:
		return src
	default:
		return fmt.Sprint(src)
	}
}
