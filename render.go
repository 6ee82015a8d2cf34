package sqlorm

import (
	"fmt"
)

/*
Renders the accumulated state under the given config. Pure: neither input is
modified, and the caller is responsible for resetting the builder.

Clause order is fixed: verb and table, SET (update only), WHERE, GROUP BY,
ORDER BY, LIMIT. Every clause appends to the same accumulator, which keeps
placeholders and args aligned.
*/
func render(conf Config, st state) (Statement, error) {
	if st.op == opNone {
		return Statement{}, nil
	}

	bui := makeBui(conf.Fill, 128, len(st.where.tokens)+len(st.set)+4)

	switch st.op {
	case opSelect, opCount:
		bui.Str(`SELECT`)
		bui.Str(st.fields)
		bui.Str(`FROM`)
		appendTable(&bui, conf.Table)

	case opDelete:
		bui.Str(`DELETE FROM`)
		appendTable(&bui, conf.Table)

	case opUpdate:
		bui.Str(`UPDATE`)
		appendTable(&bui, conf.Table)
		err := renderSet(&bui, st.set)
		if err != nil {
			return Statement{}, err
		}

	default:
		return Statement{}, ErrInternal.while(`rendering statement`).because(
			fmt.Errorf(`unknown operation %d`, st.op),
		)
	}

	st.where.render(&bui)
	renderGroupBy(&bui, st.groupBy)
	renderOrderBy(&bui, st.order)
	renderLimit(&bui, st.limit)
	return bui.Reify(), nil
}

// Appends `"<table>"`. Names are not escaped.
func appendTable(bui *bui, name string) {
	bui.Space()
	bui.Raw(`"`)
	bui.Raw(name)
	bui.Raw(`"`)
}
