package sqlorm

import (
	"errors"
	"math"
	r "reflect"
	"strconv"
)

/*
Closed sum type of the values accepted wherever the builder embeds data: `Str`,
`Int`, `Float`, `Bool` and `List`. Go values are converted via `ValueOf`, which
rejects everything else. Implementations outside this package are not
possible.
*/
type Value interface {
	// Driver-level scalar appended to the args in fill mode.
	Arg() any
	appendLiteral([]byte) []byte
	isZero() bool
}

// Text value. Rendered double-quoted in literal mode, without escaping.
type Str string

// Integer value of any width.
type Int int64

// Floating point value.
type Float float64

// Boolean value. Rendered as `1`/`0` in literal mode.
type Bool bool

/*
Homogeneous list of scalars. Only meaningful with the `IN` operator. Renders
as a parenthesized comma-separated list, one placeholder per element in fill
mode.
*/
type List []Value

func (self Str) Arg() any   { return string(self) }
func (self Int) Arg() any   { return int64(self) }
func (self Float) Arg() any { return float64(self) }
func (self Bool) Arg() any  { return bool(self) }

// Lists never appear as a single arg; see `(*bui).value`.
func (self List) Arg() any {
	out := make([]any, len(self))
	for ind, val := range self {
		out[ind] = val.Arg()
	}
	return out
}

func (self Str) appendLiteral(buf []byte) []byte {
	buf = append(buf, '"')
	buf = append(buf, self...)
	return append(buf, '"')
}

func (self Int) appendLiteral(buf []byte) []byte {
	return strconv.AppendInt(buf, int64(self), 10)
}

func (self Float) appendLiteral(buf []byte) []byte {
	return strconv.AppendFloat(buf, float64(self), 'g', -1, 64)
}

func (self Bool) appendLiteral(buf []byte) []byte {
	if self {
		return append(buf, '1')
	}
	return append(buf, '0')
}

func (self List) appendLiteral(buf []byte) []byte {
	buf = append(buf, '(')
	for ind, val := range self {
		if ind > 0 {
			buf = append(buf, `, `...)
		}
		buf = val.appendLiteral(buf)
	}
	return append(buf, ')')
}

func (self Str) isZero() bool   { return self == `` }
func (self Int) isZero() bool   { return self == 0 }
func (self Float) isZero() bool { return self == 0 }

// Booleans are never treated as empty, `false` still renders as `0`.
func (self Bool) isZero() bool { return false }
func (self List) isZero() bool { return false }

/*
Converts an arbitrary Go value into a `Value`. Accepts strings, integers,
floats and booleans (including named types with those underlying kinds), their
slices and arrays, and values that already implement `Value`. Everything else,
including nil, byte slices, nested lists, NaN and infinities, results in
`ErrInvalidValue`.
*/
func ValueOf(src any) (Value, error) {
	val, err := valueOf(src, true)
	if err != nil {
		return nil, ErrInvalidValue.while(`converting value`).because(ValueError{Value: src, Cause: err})
	}
	return val, nil
}

func valueOf(src any, allowList bool) (Value, error) {
	switch src := src.(type) {
	case nil:
		return nil, errors.New(`nil is not supported`)
	case List:
		if !allowList {
			return nil, errors.New(`nested lists are not supported`)
		}
		for _, val := range src {
			switch val := val.(type) {
			case List:
				return nil, errors.New(`nested lists are not supported`)
			case Float:
				if _, err := floatOf(float64(val)); err != nil {
					return nil, err
				}
			}
		}
		return src, nil
	case Float:
		return floatOf(float64(src))
	case Value:
		return src, nil
	case string:
		return Str(src), nil
	case bool:
		return Bool(src), nil
	case int:
		return Int(src), nil
	case int64:
		return Int(src), nil
	case float64:
		return floatOf(src)
	case []byte:
		return nil, errors.New(`byte slices are not supported`)
	}

	rval := r.ValueOf(src)
	switch rval.Kind() {
	case r.String:
		return Str(rval.String()), nil
	case r.Bool:
		return Bool(rval.Bool()), nil
	case r.Int, r.Int8, r.Int16, r.Int32, r.Int64:
		return Int(rval.Int()), nil
	case r.Uint, r.Uint8, r.Uint16, r.Uint32, r.Uint64, r.Uintptr:
		num := rval.Uint()
		if num > 1<<63-1 {
			return nil, errors.New(`unsigned integer overflows int64`)
		}
		return Int(num), nil
	case r.Float32, r.Float64:
		return floatOf(rval.Float())
	case r.Slice, r.Array:
		if !allowList {
			return nil, errors.New(`nested lists are not supported`)
		}
		if rval.Kind() == r.Slice && rval.IsNil() {
			return nil, errors.New(`nil slice is not supported`)
		}
		out := make(List, rval.Len())
		for ind := range out {
			elem, err := valueOf(rval.Index(ind).Interface(), false)
			if err != nil {
				return nil, err
			}
			out[ind] = elem
		}
		return out, nil
	}
	return nil, errors.New(`expected string, number, boolean or a list of them, got ` + rval.Type().String())
}

// SQL has no literal for NaN or infinities.
func floatOf(num float64) (Value, error) {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return nil, errors.New(`non-finite floats are not supported`)
	}
	return Float(num), nil
}

// Like `ValueOf` but only accepts scalars.
func scalarOf(src any) (Value, error) {
	return valueOf(src, false)
}
