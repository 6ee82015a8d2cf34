package sqlorm

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type Internal struct {
	Id   int64  `db:"id"`
	Name string `db:"name"`
}

// nolint:govet
type Embed struct {
	Kind      string `db:"kind"`
	private   string `db:"private"`
	Untagged0 string ``
	Untagged1 string `db:"-"`
}

type Person struct {
	Embed
	Id       int64  `db:"id"`
	Name     string `db:"name"`
	Age      int    `db:"age"`
	Active   bool   `db:"active"`
	OnlyJson string `json:"onlyJson"`
}

var testPerson = Person{
	Embed: Embed{
		Kind:      `admin`,
		private:   `private`,
		Untagged0: `untagged 0`,
		Untagged1: `untagged 1`,
	},
	Id:       1,
	Name:     `Alice`,
	Age:      30,
	Active:   true,
	OnlyJson: `json`,
}

type Trio struct {
	One   any `db:"one"`
	Two   any `db:"two"`
	Three any `db:"three"`
}

type list = []any

// Short for "statement".
func stmt(text string, args ...any) Statement {
	if args == nil {
		args = list{}
	}
	return Statement{Text: text, Args: args}
}

func testStmt(t testing.TB, exp Statement, act Statement, err error) {
	t.Helper()
	require.NoError(t, err)
	require.Equal(t, exp, act)
	require.NoError(t, act.Check())
}

func testBuild(t testing.TB, exp Statement, bui *Builder) {
	t.Helper()
	act, err := bui.Build()
	testStmt(t, exp, act, err)
}

func testBuildErr(t testing.TB, exp error, bui *Builder) {
	t.Helper()
	act, err := bui.Build()
	require.ErrorIs(t, err, exp)
	require.Equal(t, Statement{}, act)
}

func literal(table string) *Builder { return New(table, WithFill(false)) }

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}
