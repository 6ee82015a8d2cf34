package sqlorm

import (
	"go.uber.org/zap"
)

/*
One column assignment of a conditional batch update. For every row, adds the
arm `WHEN <WhenField(row)>=<WhenValue(row)> THEN <ThenValue(row)>` to
`<Target> = CASE ... END`.
*/
type CaseField[T any] struct {
	Target    string
	WhenField func(T) string
	WhenValue func(T) any
	ThenValue func(T) any
}

/*
Input of `BuildCaseUpdate`.

`MaxRows` limits the rows per statement; zero means the builder's
`Config.MaxCaseRows`. `ExtraSet` and `ExtraWhere` are optional and receive the
whole chunk. Their text is spliced in verbatim after the CASE assignments and
after `WHERE` respectively, and their args follow the CASE args in order. In
literal mode the fragments must have no args and be ready to execute as-is.
Without `ExtraWhere`, every statement affects the whole table.
*/
type CaseUpdate[T any] struct {
	Rows       []T
	MaxRows    int
	Fields     []CaseField[T]
	ExtraSet   func([]T) Statement
	ExtraWhere func([]T) Statement
}

/*
Renders one statement per chunk of rows:

	UPDATE "<table>" SET
		<f1> = CASE WHEN <k>=? THEN ? WHEN <k>=? THEN ? END,
		<f2> = CASE ... END
		[, <extra set>]
		[WHERE <extra where>]

In literal mode, both sides of every arm are double-quoted. Uses the builder's
table, fill mode and logger, and resets its accumulated state. Empty rows log
a warning and return nil.
*/
func BuildCaseUpdate[T any](builder *Builder, opt CaseUpdate[T]) ([]Statement, error) {
	const while = `building conditional batch update`

	conf, st := builder.take()
	if st.err != nil {
		return nil, st.err
	}

	if len(opt.Rows) == 0 {
		builder.log.Warn(`no rows to update, ignoring`, zap.String(`table`, conf.Table))
		return nil, nil
	}
	if len(opt.Fields) == 0 {
		return nil, errInvalidInput(while, `no fields to update`)
	}
	for _, field := range opt.Fields {
		if field.Target == `` || field.WhenField == nil || field.WhenValue == nil || field.ThenValue == nil {
			return nil, errInvalidInput(while, `incomplete field mapping for %q`, field.Target)
		}
	}

	size := opt.MaxRows
	if size <= 0 {
		size = conf.MaxCaseRows
	}

	chunks, err := Chunk(opt.Rows, size)
	if err != nil {
		return nil, err
	}

	out := make([]Statement, 0, len(chunks))
	for _, chunk := range chunks {
		stmt, err := renderCaseUpdate(conf, opt, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func renderCaseUpdate[T any](conf Config, opt CaseUpdate[T], rows []T) (Statement, error) {
	const while = `building conditional batch update`

	bui := makeBui(conf.Fill, 64+len(rows)*len(opt.Fields)*24, len(rows)*len(opt.Fields)*2)
	bui.Str(`UPDATE`)
	appendTable(&bui, conf.Table)
	bui.Str(`SET`)

	for ind, field := range opt.Fields {
		if ind > 0 {
			bui.Raw(`,`)
		}
		bui.Str(field.Target)
		bui.Str(`= CASE`)

		for _, row := range rows {
			when, err := scalarOf(field.WhenValue(row))
			if err != nil {
				return Statement{}, errInvalidValue(while, field.Target, field.WhenValue(row), err)
			}
			then, err := scalarOf(field.ThenValue(row))
			if err != nil {
				return Statement{}, errInvalidValue(while, field.Target, field.ThenValue(row), err)
			}

			bui.Str(`WHEN`)
			bui.Str(field.WhenField(row))
			bui.Raw(`=`)
			bui.QuotedValue(when)
			bui.Str(`THEN`)
			bui.Space()
			bui.QuotedValue(then)
		}
		bui.Str(`END`)
	}

	if opt.ExtraSet != nil {
		if err := appendFragment(&bui, `,`, opt.ExtraSet(rows)); err != nil {
			return Statement{}, err
		}
	}
	if opt.ExtraWhere != nil {
		if err := appendFragment(&bui, ` WHERE`, opt.ExtraWhere(rows)); err != nil {
			return Statement{}, err
		}
	}
	return bui.Reify(), nil
}

/*
Appends a caller-provided fragment with its args. Empty fragments are skipped.
Literal statements carry no args, so a fragment with args is rejected there.
*/
func appendFragment(bui *bui, prefix string, frag Statement) error {
	if frag.IsEmpty() {
		return nil
	}
	if !bui.Fill && len(frag.Args) > 0 {
		return errInvalidInput(
			`building conditional batch update`,
			`fragment %q has %d args, which literal mode can't bind`, frag.Text, len(frag.Args),
		)
	}
	bui.Raw(prefix)
	bui.Str(frag.Text)
	bui.Args = append(bui.Args, frag.Args...)
	return nil
}
