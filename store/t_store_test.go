package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sqlorm/sqlorm"
)

const createUsers = `CREATE TABLE IF NOT EXISTS "users" (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, age INTEGER);`

func TestTable_Init(t *testing.T) {
	ctx := context.Background()

	t.Run(`creates a missing table`, func(t *testing.T) {
		db, mock := mockDB(t)
		expectInfo(mock, `users`, ``)
		mock.ExpectExec(createUsers).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, NewTable(db, userSchema()).Init(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`adds missing columns`, func(t *testing.T) {
		db, mock := mockDB(t)
		expectInfo(mock, `users`, `CREATE TABLE "users" (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)`)
		mock.ExpectExec(`ALTER TABLE "users" ADD age INTEGER;`).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, NewTable(db, userSchema()).Init(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`leaves a complete table alone`, func(t *testing.T) {
		db, mock := mockDB(t)
		expectInfo(mock, `users`, `CREATE TABLE "users" (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, age INTEGER)`)

		require.NoError(t, NewTable(db, userSchema()).Init(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`upgrades the version`, func(t *testing.T) {
		db, mock := mockDB(t)
		expectInfo(mock, `users`, ``)
		mock.ExpectExec(createUsers).WillReturnResult(sqlmock.NewResult(0, 0))
		expectVersion(mock, 1)
		mock.ExpectExec(`PRAGMA user_version = 3`).WillReturnResult(sqlmock.NewResult(0, 0))

		var calls [][2]int
		schema := userSchema()
		schema.Version = 3

		tab := NewTable(db, schema, WithUpgrade(func(_ context.Context, _ *Table, from, to int) error {
			calls = append(calls, [2]int{from, to})
			return nil
		}))

		require.NoError(t, tab.Init(ctx))
		require.Equal(t, [][2]int{{1, 3}}, calls)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`never downgrades the version`, func(t *testing.T) {
		db, mock := mockDB(t)
		expectInfo(mock, `users`, ``)
		mock.ExpectExec(createUsers).WillReturnResult(sqlmock.NewResult(0, 0))
		expectVersion(mock, 5)

		schema := userSchema()
		schema.Version = 3

		require.NoError(t, NewTable(db, schema).Init(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`failed upgrade keeps the version`, func(t *testing.T) {
		db, mock := mockDB(t)
		expectInfo(mock, `users`, ``)
		mock.ExpectExec(createUsers).WillReturnResult(sqlmock.NewResult(0, 0))
		expectVersion(mock, 0)

		schema := userSchema()
		schema.Version = 1
		fail := errors.New(`fail`)

		tab := NewTable(db, schema, WithUpgrade(func(context.Context, *Table, int, int) error {
			return fail
		}))

		err := tab.Init(ctx)
		require.ErrorIs(t, err, fail)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`invalid schema`, func(t *testing.T) {
		db, mock := mockDB(t)
		require.Error(t, NewTable(db, Schema{Name: `users`}).Init(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTable_crud(t *testing.T) {
	ctx := context.Background()

	t.Run(`Insert`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(`INSERT or REPLACE INTO "users" (id, name, age) VALUES (?, ?, ?)`).
			WithArgs(int64(1), `Alice`, int64(30)).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, NewTable(db, userSchema()).Insert(ctx, Person{1, `Alice`, 30}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`Get`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(`SELECT * FROM "users" WHERE id=?`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{`id`, `name`}).AddRow(int64(1), `Alice`))
		mock.ExpectQuery(`SELECT * FROM "users" WHERE id=?`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{`id`, `name`}))

		tab := NewTable(db, userSchema())

		row, ok, err := tab.Get(ctx, 1)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, sqlorm.Row{{Name: `id`, Value: int64(1)}, {Name: `name`, Value: `Alice`}}, row)

		_, ok, err = tab.Get(ctx, 2)
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`Get with custom key`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(`SELECT * FROM "users" WHERE uid=?`).
			WithArgs(`u1`).
			WillReturnRows(sqlmock.NewRows([]string{`uid`}))

		schema := userSchema()
		schema.Key = `uid`

		_, ok, err := NewTable(db, schema).Get(ctx, `u1`)
		require.NoError(t, err)
		require.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`Count`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(`SELECT count(*) FROM "users" WHERE age>?`).
			WithArgs(int64(18)).
			WillReturnRows(sqlmock.NewRows([]string{`count(*)`}).AddRow(int64(2)))

		count, err := NewTable(db, userSchema()).Count(ctx, func(bui *sqlorm.Builder) *sqlorm.Builder {
			return bui.Where(`age`, sqlorm.Gt, 18)
		})
		require.NoError(t, err)
		require.Equal(t, int64(2), count)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`Find`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(`SELECT id, name FROM "users" WHERE age>=? ORDER BY ? ? LIMIT ?`).
			WithArgs(int64(18), `name`, `ASC`, int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{`id`, `name`}).AddRow(int64(1), []byte(`Alice`)))

		rows, err := NewTable(db, userSchema()).Find(ctx, func(bui *sqlorm.Builder) *sqlorm.Builder {
			return bui.Where(`age`, sqlorm.Gte, 18).OrderBy(sqlorm.Asc, `name`).Limit(10)
		}, `id`, `name`)
		require.NoError(t, err)
		require.Equal(t, list{`Alice`}, rowNames(rows, `name`))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`FindIn splits by placeholder limit`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(`SELECT * FROM "users" WHERE id IN (?, ?)`).
			WithArgs(int64(1), int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{`id`}).AddRow(int64(1)).AddRow(int64(2)))
		mock.ExpectQuery(`SELECT * FROM "users" WHERE id IN (?)`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{`id`}).AddRow(int64(3)))

		tab := NewTable(db, userSchema(), WithBuilder(sqlorm.WithMaxBoundVariables(2)))
		rows, err := tab.FindIn(ctx, `id`, list{1, 2, 3})
		require.NoError(t, err)
		require.Equal(t, list{int64(1), int64(2), int64(3)}, rowNames(rows, `id`))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`UpdateByID`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(`UPDATE "users" SET age=? WHERE id=?`).
			WithArgs(int64(31), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		count, err := NewTable(db, userSchema()).UpdateByID(ctx, 1, map[string]any{`age`: 31})
		require.NoError(t, err)
		require.Equal(t, int64(1), count)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`DeleteByID`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(`DELETE FROM "users" WHERE id=?`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		count, err := NewTable(db, userSchema()).DeleteByID(ctx, 7)
		require.NoError(t, err)
		require.Equal(t, int64(1), count)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`DeleteWhere requires a scope`, func(t *testing.T) {
		db, mock := mockDB(t)
		_, err := NewTable(db, userSchema()).DeleteWhere(ctx, nil)
		require.ErrorIs(t, err, sqlorm.ErrInvalidInput)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`Clear`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(`DELETE FROM "users" WHERE 1=?`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := NewTable(db, userSchema()).Clear(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(3), count)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`literal mode`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(`DELETE FROM "users" WHERE id=7`).WillReturnResult(sqlmock.NewResult(0, 1))

		tab := NewTable(db, userSchema(), WithBuilder(sqlorm.WithFill(false)))
		_, err := tab.DeleteByID(ctx, 7)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`driver errors are wrapped`, func(t *testing.T) {
		db, mock := mockDB(t)
		fail := errors.New(`disk I/O error`)
		mock.ExpectExec(`DELETE FROM "users" WHERE id=?`).WithArgs(int64(7)).WillReturnError(fail)

		_, err := NewTable(db, userSchema()).DeleteByID(ctx, 7)
		require.ErrorIs(t, err, fail)
		require.Contains(t, err.Error(), `"users"`)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTable_RunBatch(t *testing.T) {
	ctx := context.Background()

	rows := []Person{{1, `a`, 10}, {2, `b`, 20}, {3, `c`, 30}, {4, `d`, 40}, {5, `e`, 50}}
	const two = `INSERT or REPLACE INTO "users" (id, name, age) VALUES (?, ?, ?), (?, ?, ?)`
	const one = `INSERT or REPLACE INTO "users" (id, name, age) VALUES (?, ?, ?)`

	t.Run(`executes every chunk`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.MatchExpectationsInOrder(false)
		mock.ExpectExec(two).WithArgs(int64(1), `a`, int64(10), int64(2), `b`, int64(20)).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(two).WithArgs(int64(3), `c`, int64(30), int64(4), `d`, int64(40)).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(one).WithArgs(int64(5), `e`, int64(50)).WillReturnResult(sqlmock.NewResult(0, 1))

		tab := NewTable(db, userSchema(), WithBuilder(sqlorm.WithMaxBoundVariables(6)))
		require.NoError(t, tab.InsertMany(ctx, rows))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`reports failed chunks and keeps going`, func(t *testing.T) {
		db, mock := mockDB(t)
		fail := errors.New(`constraint failed`)
		mock.ExpectExec(two).WithArgs(int64(1), `a`, int64(10), int64(2), `b`, int64(20)).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(two).WithArgs(int64(3), `c`, int64(30), int64(4), `d`, int64(40)).WillReturnError(fail)
		mock.ExpectExec(one).WithArgs(int64(5), `e`, int64(50)).WillReturnResult(sqlmock.NewResult(0, 1))

		log, logs := observed(zap.ErrorLevel)
		tab := NewTable(db, userSchema(),
			WithBuilder(sqlorm.WithMaxBoundVariables(6)),
			WithWorkers(1),
			WithLogger(log),
		)

		err := tab.InsertMany(ctx, rows)

		var batchErr *BatchError
		require.ErrorAs(t, err, &batchErr)
		require.Equal(t, []int{1}, batchErr.Failed)
		require.Equal(t, 3, batchErr.Total)
		require.ErrorIs(t, err, fail)

		require.Equal(t, 1, logs.Len())
		require.Equal(t, `batch statement failed`, logs.All()[0].Message)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`empty input`, func(t *testing.T) {
		db, mock := mockDB(t)
		log, logs := observed(zap.WarnLevel)

		require.NoError(t, NewTable(db, userSchema(), WithLogger(log)).InsertMany(ctx, []Person{}))
		require.Equal(t, 1, logs.Len())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`UpdateByCase`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(`UPDATE "users" SET age = CASE WHEN id=? THEN ? WHEN id=? THEN ? END`).
			WithArgs(int64(1), int64(11), int64(2), int64(21)).
			WillReturnResult(sqlmock.NewResult(0, 2))

		tab := NewTable(db, userSchema())
		err := UpdateByCase(ctx, tab, sqlorm.CaseUpdate[Person]{
			Rows: rows[:2],
			Fields: []sqlorm.CaseField[Person]{{
				Target:    `age`,
				WhenField: func(Person) string { return `id` },
				WhenValue: func(val Person) any { return val.Id },
				ThenValue: func(val Person) any { return val.Age + 1 },
			}},
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTable_Tx(t *testing.T) {
	ctx := context.Background()
	const insert = `INSERT or REPLACE INTO "users" (id, name, age) VALUES (?, ?, ?)`

	t.Run(`commit`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(insert).WithArgs(int64(1), `a`, int64(10)).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := NewTable(db, userSchema()).Tx(ctx, func(tab *Table) error {
			return tab.Insert(ctx, Person{1, `a`, 10})
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`rollback`, func(t *testing.T) {
		db, mock := mockDB(t)
		fail := errors.New(`fail`)
		mock.ExpectBegin()
		mock.ExpectExec(insert).WithArgs(int64(1), `a`, int64(10)).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectRollback()

		err := NewTable(db, userSchema()).Tx(ctx, func(tab *Table) error {
			if err := tab.Insert(ctx, Person{1, `a`, 10}); err != nil {
				return err
			}
			return fail
		})
		require.ErrorIs(t, err, fail)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`rollback on panic`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(insert).WithArgs(int64(1), `a`, int64(10)).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectRollback()

		require.PanicsWithValue(t, `boom`, func() {
			_ = NewTable(db, userSchema()).Tx(ctx, func(tab *Table) error {
				if err := tab.Insert(ctx, Person{1, `a`, 10}); err != nil {
					return err
				}
				panic(`boom`)
			})
		})
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`requires a transactional executor`, func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectBegin()
		tx, err := db.Begin()
		require.NoError(t, err)

		err = NewTable(tx, userSchema()).Tx(ctx, func(*Table) error { return nil })
		require.ErrorIs(t, err, ErrNotTransactional)

		mock.ExpectRollback()
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTable_prepare(t *testing.T) {
	db, mock := mockDB(t)
	tab := NewTable(db, userSchema())

	_, err := tab.execute(context.Background(), sqlorm.Statement{})
	require.ErrorIs(t, err, ErrEmptyStatement)

	_, err = tab.execute(context.Background(), sqlorm.Statement{Text: `DELETE FROM "users" WHERE id=?`})
	require.ErrorIs(t, err, sqlorm.ErrArgCountMismatch)

	require.NoError(t, mock.ExpectationsWereMet())
}
