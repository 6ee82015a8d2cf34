package sqlorm

import (
	"strings"
)

/*
Short for "builder". Accumulates the text and args of one statement during a
single render. Every clause renderer appends to the same `bui`, which keeps the
order of `?` placeholders in `.Text` identical to the order of `.Args`.
*/
type bui struct {
	Text []byte
	Args []any
	Fill bool
}

func makeBui(fill bool, textCap, argsCap int) bui {
	return bui{
		Text: make([]byte, 0, textCap),
		Args: make([]any, 0, argsCap),
		Fill: fill,
	}
}

// Appends the provided string, delimiting it from the previous text with a
// space if necessary. Empty input is a nop.
func (self *bui) Str(val string) {
	if val == `` {
		return
	}
	self.Space()
	self.Text = append(self.Text, val...)
}

// Appends the provided string as-is.
func (self *bui) Raw(val string) {
	self.Text = append(self.Text, val...)
}

// Adds a space if the preceding text doesn't already end with one.
func (self *bui) Space() {
	if len(self.Text) > 0 && self.Text[len(self.Text)-1] != ' ' {
		self.Text = append(self.Text, ' ')
	}
}

// Appends `?` and the corresponding arg.
func (self *bui) Arg(val any) {
	self.Args = append(self.Args, val)
	self.Text = append(self.Text, '?')
}

/*
Appends a value according to the fill mode. In fill mode, appends one
placeholder per scalar; lists become `(?, ?, ...)`. In literal mode, appends
the literal representation.
*/
func (self *bui) Value(val Value) {
	if !self.Fill {
		self.Text = val.appendLiteral(self.Text)
		return
	}

	list, ok := val.(List)
	if !ok {
		self.Arg(val.Arg())
		return
	}

	self.Text = append(self.Text, '(')
	for ind, elem := range list {
		if ind > 0 {
			self.Text = append(self.Text, `, `...)
		}
		self.Arg(elem.Arg())
	}
	self.Text = append(self.Text, ')')
}

/*
Same as `(*bui).Value`, but in literal mode empty strings and numeric zeros
render as nothing. Booleans are unaffected. Used for WHERE predicates.
*/
func (self *bui) PredicateValue(val Value) {
	if !self.Fill && val.isZero() {
		return
	}
	self.Value(val)
}

/*
Appends a value double-quoted regardless of its type in literal mode, as
`"18"` or `"true"`. Used by SET assignments and CASE arms, which never coerce
booleans.
*/
func (self *bui) QuotedValue(val Value) {
	if self.Fill {
		self.Value(val)
		return
	}
	self.Text = append(self.Text, '"')
	self.Text = appendRawLiteral(self.Text, val)
	self.Text = append(self.Text, '"')
}

// Text representation without quoting or boolean coercion.
func appendRawLiteral(buf []byte, val Value) []byte {
	switch val := val.(type) {
	case Str:
		return append(buf, val...)
	case Bool:
		if val {
			return append(buf, `true`...)
		}
		return append(buf, `false`...)
	default:
		return val.appendLiteral(buf)
	}
}

/*
Collapses runs of whitespace into single spaces, trims the result and pairs
it with the accumulated args. Args are never nil, which keeps literal-mode
statements comparable with `Statement{Text: ..., Args: []any{}}`.
*/
func (self bui) Reify() Statement {
	args := self.Args
	if args == nil {
		args = []any{}
	}
	return Statement{
		Text: strings.Join(strings.Fields(string(self.Text)), ` `),
		Args: args,
	}
}
