package sqlorm

import (
	"strconv"
)

/*
Clause renderers. Each one appends its fragment to the shared `bui`. In fill
mode they also append args, in the same order as the placeholders they emit.
*/

func renderGroupBy(bui *bui, field string) {
	if field == `` {
		return
	}
	bui.Str(`GROUP BY`)
	bui.Space()
	if bui.Fill {
		bui.Arg(field)
		return
	}
	bui.Raw(field)
}

/*
Literal mode renders `ORDER BY <field> <dir>`. Fill mode renders `ORDER BY ? ?`
and appends the field first, then the direction.
*/
func renderOrderBy(bui *bui, order *orderClause) {
	if order == nil {
		return
	}
	bui.Str(`ORDER BY`)
	bui.Space()
	if bui.Fill {
		bui.Arg(order.field)
		bui.Raw(` `)
		bui.Arg(string(order.dir))
		return
	}
	bui.Raw(order.field)
	bui.Raw(` `)
	bui.Raw(string(order.dir))
}

func renderLimit(bui *bui, lim *limitClause) {
	if lim == nil {
		return
	}
	bui.Str(`LIMIT`)
	bui.Space()
	appendInt(bui, lim.count)
	if lim.hasOffset {
		bui.Raw(`,`)
		appendInt(bui, lim.offset)
	}
}

func appendInt(bui *bui, num int) {
	if bui.Fill {
		bui.Arg(int64(num))
		return
	}
	bui.Text = strconv.AppendInt(bui.Text, int64(num), 10)
}

/*
Renders `f1=?, f2=?` in fill mode or `f1="v1", f2="v2"` in literal mode. Literal
mode quotes every value and doesn't convert booleans to 1/0, unlike
`renderValues`.
*/
func renderSet(bui *bui, set Row) error {
	const while = `building SET clause`

	if len(set) == 0 {
		return errInvalidInput(while, `no columns to update`)
	}

	bui.Str(`SET`)
	bui.Space()
	for ind, col := range set {
		val, err := scalarOf(col.Value)
		if err != nil {
			return errInvalidValue(while, col.Name, col.Value, err)
		}
		if ind > 0 {
			bui.Raw(`, `)
		}
		bui.Raw(col.Name)
		bui.Raw(`=`)
		bui.QuotedValue(val)
	}
	return nil
}

/*
Renders `(f1, f2) VALUES (v1, v2), (v1, v2)`. The fields come from the first
row; every row must have them. Values are appended row by row.
*/
func renderValues(bui *bui, rows []Row) error {
	const while = `building VALUES clause`

	if len(rows) == 0 {
		return errInvalidInput(while, `no rows to insert`)
	}
	fields := rows[0].Names()
	if len(fields) == 0 {
		return errInvalidInput(while, `first row has no columns`)
	}

	bui.Space()
	bui.Raw(`(`)
	for ind, field := range fields {
		if ind > 0 {
			bui.Raw(`, `)
		}
		bui.Raw(field)
	}
	bui.Raw(`) VALUES `)

	for ind, row := range rows {
		vals, err := rowValues(row, fields, while)
		if err != nil {
			return err
		}
		if ind > 0 {
			bui.Raw(`, `)
		}
		bui.Raw(`(`)
		for ind, val := range vals {
			if ind > 0 {
				bui.Raw(`, `)
			}
			bui.Value(val)
		}
		bui.Raw(`)`)
	}
	return nil
}
