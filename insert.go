package sqlorm

import (
	"go.uber.org/zap"
)

/*
Renders `INSERT or REPLACE INTO "<table>" (<fields>) VALUES (<values>)` for a
single row. The row is anything accepted by `RowOf`. Like `(*Builder).Build`,
resets the accumulated state, including per-render overrides.
*/
func (self *Builder) Insert(row any) (Statement, error) {
	conf, st := self.take()
	if st.err != nil {
		return Statement{}, st.err
	}

	val, err := RowOf(row)
	if err != nil {
		return Statement{}, err
	}
	return renderInsert(conf, []Row{val})
}

/*
Renders one INSERT statement per chunk of rows. The chunk size is the
configured placeholder limit divided by the number of fields of the first row,
so no statement exceeds the limit. Fields are taken from the first row; every
other row must have them.

Empty input logs a warning and returns nil. Resets the accumulated state.
*/
func (self *Builder) InsertMany(rows any) ([]Statement, error) {
	conf, st := self.take()
	if st.err != nil {
		return nil, st.err
	}

	vals, err := RowsOf(rows)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		self.log.Warn(`no rows to insert, ignoring`, zap.String(`table`, conf.Table))
		return nil, nil
	}

	size, err := insertChunkSize(conf.MaxBoundVariables, len(vals[0]))
	if err != nil {
		return nil, err
	}

	chunks, err := Chunk(vals, size)
	if err != nil {
		return nil, err
	}

	out := make([]Statement, 0, len(chunks))
	for _, chunk := range chunks {
		stmt, err := renderInsert(conf, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func renderInsert(conf Config, rows []Row) (Statement, error) {
	bui := makeBui(conf.Fill, 64+len(rows)*32, len(rows)*len(rows[0]))
	bui.Str(`INSERT or REPLACE INTO`)
	appendTable(&bui, conf.Table)

	err := renderValues(&bui, rows)
	if err != nil {
		return Statement{}, err
	}
	return bui.Reify(), nil
}
