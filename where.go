package sqlorm

import (
	"errors"
	r "reflect"

	"go.uber.org/zap"
)

type tokenKind uint8

const (
	tokPredicate tokenKind = iota
	tokAnd
	tokOr
	tokOpen
	tokClose
)

func conjToken(conj Conj) whereToken {
	if conj == Or {
		return whereToken{kind: tokOr}
	}
	return whereToken{kind: tokAnd}
}

// Atomic piece of a WHERE clause: a predicate or a connector.
type whereToken struct {
	kind tokenKind
	key  string
	op   Op
	val  Value
}

func (self whereToken) isConnector() bool {
	return self.kind == tokAnd || self.kind == tokOr
}

func (self whereToken) render(bui *bui) {
	switch self.kind {
	case tokAnd:
		bui.Raw(string(And))
	case tokOr:
		bui.Raw(string(Or))
	case tokOpen:
		bui.Raw(`(`)
	case tokClose:
		bui.Raw(`)`)
	default:
		bui.Raw(self.key)
		bui.Raw(self.op.text())
		bui.PredicateValue(self.val)
	}
}

/*
Tokens in emission order. `explicit` is set by `(*Builder).Where`; without it,
the first token is a connector left over by `And`/`Or`/array helpers and is
dropped at render time.
*/
type whereExpr struct {
	tokens   []whereToken
	explicit bool
}

func (self whereExpr) last() (whereToken, bool) {
	if len(self.tokens) == 0 {
		return whereToken{}, false
	}
	return self.tokens[len(self.tokens)-1], true
}

func (self whereExpr) render(bui *bui) {
	tokens := self.tokens
	if !self.explicit && len(tokens) > 0 {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return
	}

	bui.Str(`WHERE`)
	for _, tok := range tokens {
		bui.Space()
		tok.render(bui)
	}
}

/*
Sets the primary condition. Unlike `And`/`Or`, the predicate is placed FIRST
in the WHERE clause, regardless of the call order. When called again, the
newest predicate goes first and is joined to the rest with AND.
*/
func (self *Builder) Where(key string, op Op, val any) *Builder {
	tok, err := predicate(key, op, val)
	if err != nil {
		return self.fail(err)
	}

	where := &self.state.where
	where.explicit = true

	switch {
	case len(where.tokens) == 0:
		where.tokens = []whereToken{tok}
	case where.tokens[0].isConnector():
		where.tokens = append([]whereToken{tok}, where.tokens...)
	default:
		where.tokens = append([]whereToken{tok, {kind: tokAnd}}, where.tokens...)
	}
	return self
}

// Appends `AND <key><op><val>`.
func (self *Builder) And(key string, op Op, val any) *Builder {
	return self.appendPredicate(And, key, op, val)
}

// Appends `OR <key><op><val>`.
func (self *Builder) Or(key string, op Op, val any) *Builder {
	return self.appendPredicate(Or, key, op, val)
}

/*
Appends `<conj> ( <key><op><v1> <conj> <key><op><v2> ... )`, one predicate per
element of `vals`, which must be a slice or array. An empty input logs a
warning and leaves the builder unchanged.
*/
func (self *Builder) WhereArray(key string, op Op, vals any, conj Conj) *Builder {
	if !conj.valid() {
		return self.fail(errInvalidInput(`building array condition`, `unknown connector %q`, conj))
	}

	list, err := arrayValues(key, vals)
	if err != nil {
		return self.fail(err)
	}
	if len(list) == 0 {
		self.log.Warn(`empty array in WHERE condition, ignoring`,
			zap.String(`table`, self.TableName()),
			zap.String(`key`, key),
		)
		return self
	}

	where := &self.state.where
	where.tokens = append(where.tokens, conjToken(conj), whereToken{kind: tokOpen})
	for _, val := range list {
		self.appendPredicate(conj, key, op, val)
	}
	where.tokens = append(where.tokens, whereToken{kind: tokClose})
	return self
}

// Shortcut for `WhereArray(key, op, vals, And)`.
func (self *Builder) AndArray(key string, op Op, vals any) *Builder {
	return self.WhereArray(key, op, vals, And)
}

// Shortcut for `WhereArray(key, op, vals, Or)`.
func (self *Builder) OrArray(key string, op Op, vals any) *Builder {
	return self.WhereArray(key, op, vals, Or)
}

func (self *Builder) appendPredicate(conj Conj, key string, op Op, val any) *Builder {
	tok, err := predicate(key, op, val)
	if err != nil {
		return self.fail(err)
	}

	where := &self.state.where
	if last, ok := where.last(); ok && last.kind == tokOpen {
		where.tokens = append(where.tokens, tok)
	} else {
		where.tokens = append(where.tokens, conjToken(conj), tok)
	}
	return self
}

func predicate(key string, op Op, src any) (whereToken, error) {
	const while = `building WHERE predicate`

	if !op.valid() {
		return whereToken{}, errInvalidInput(while, `unknown operator %q`, op)
	}

	val, err := valueOf(src, true)
	if err != nil {
		return whereToken{}, errInvalidValue(while, key, src, err)
	}
	_, isList := val.(List)
	if isList && op != In {
		return whereToken{}, errInvalidValue(while, key, src, errors.New(`lists are only supported with IN`))
	}
	if !isList && op == In {
		return whereToken{}, errInvalidValue(while, key, src, errors.New(`IN requires a list`))
	}
	return whereToken{kind: tokPredicate, key: key, op: op, val: val}, nil
}

func arrayValues(key string, src any) (List, error) {
	const while = `building array condition`

	if src == nil {
		return nil, nil
	}
	if rval := r.ValueOf(src); (rval.Kind() == r.Slice || rval.Kind() == r.Array) && rval.Len() == 0 {
		return nil, nil
	}
	val, err := valueOf(src, true)
	if err != nil {
		return nil, errInvalidValue(while, key, src, err)
	}
	list, ok := val.(List)
	if !ok {
		return nil, errInvalidValue(while, key, src, errors.New(`expected a slice or array`))
	}
	return list, nil
}
