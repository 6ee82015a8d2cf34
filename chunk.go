package sqlorm

/*
Splits `rows` into consecutive chunks of at most `size` elements, preserving
order. The chunks are backed by a copy of the input, and elements that have a
`Clone() T` method, such as `Row`, are cloned. Appending to a chunk or
mutating its elements never affects the caller's input. Other elements are
copied by value, so pointers and maps inside them remain shared. Empty input
returns an empty result. A size below 1 is `ErrInvalidInput`.
*/
func Chunk[T any](rows []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, errInvalidInput(`chunking rows`, `chunk size must be positive, got %d`, size)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	buf := make([]T, len(rows))
	for ind, row := range rows {
		if src, ok := any(row).(interface{ Clone() T }); ok {
			row = src.Clone()
		}
		buf[ind] = row
	}
	out := make([][]T, 0, (len(buf)+size-1)/size)

	for len(buf) > 0 {
		end := size
		if end > len(buf) {
			end = len(buf)
		}
		// Full slice expression caps each chunk so appends reallocate.
		out = append(out, buf[:end:end])
		buf = buf[end:]
	}
	return out, nil
}

/*
Rows per INSERT statement such that `rows * fields` stays within the
placeholder limit.
*/
func insertChunkSize(maxBound, fields int) (int, error) {
	if fields < 1 {
		return 0, errInvalidInput(`sizing insert batch`, `rows have no columns`)
	}
	size := maxBound / fields
	if size < 1 {
		return 0, errInvalidInput(
			`sizing insert batch`,
			`%d columns per row exceed the limit of %d bound variables`, fields, maxBound,
		)
	}
	return size, nil
}
