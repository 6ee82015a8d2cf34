package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sqlorm/sqlorm"
)

type Person struct {
	Id   int64  `db:"id"`
	Name string `db:"name"`
	Age  int64  `db:"age"`
}

type list = []any

const infoQuery = `SELECT * FROM "sqlite_master" WHERE type=? AND name=?`

var infoCols = []string{`type`, `name`, `tbl_name`, `rootpage`, `sql`}

func userSchema() Schema {
	return Schema{
		Name: `users`,
		Fields: []sqlorm.Field{
			{Name: `id`, Type: sqlorm.TypeInteger, PrimaryKey: true},
			{Name: `name`, Type: sqlorm.TypeText, NotNull: true},
			{Name: `age`, Type: sqlorm.TypeInteger},
		},
	}
}

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func mockDB(t testing.TB) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func memoryDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), `:memory:`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func expectInfo(mock sqlmock.Sqlmock, table string, create string) {
	rows := sqlmock.NewRows(infoCols)
	if create != `` {
		rows.AddRow(`table`, table, table, int64(2), create)
	}
	mock.ExpectQuery(infoQuery).WithArgs(`table`, table).WillReturnRows(rows)
}

func expectVersion(mock sqlmock.Sqlmock, version int64) {
	mock.ExpectQuery(`PRAGMA user_version`).
		WillReturnRows(sqlmock.NewRows([]string{`user_version`}).AddRow(version))
}

func rowNames(rows []sqlorm.Row, col string) list {
	out := make(list, len(rows))
	for ind, row := range rows {
		out[ind], _ = row.Get(col)
	}
	return out
}
