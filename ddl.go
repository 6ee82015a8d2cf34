package sqlorm

import (
	"fmt"
)

/*
Renders:

	CREATE TABLE IF NOT EXISTS "<table>" (<name> <type> [PRIMARY KEY AUTOINCREMENT] [NOT NULL], ...);

Fields render in the given order. Empty input, unnamed fields and unknown
types are `ErrInvalidInput`. Discards and resets the accumulated state.
*/
func (self *Builder) CreateTable(fields []Field) (Statement, error) {
	const while = `building CREATE TABLE`

	conf, _ := self.take()
	if len(fields) == 0 {
		return Statement{}, errInvalidInput(while, `no fields`)
	}

	bui := makeBui(false, 64+len(fields)*32, 0)
	bui.Str(`CREATE TABLE IF NOT EXISTS`)
	appendTable(&bui, conf.Table)
	bui.Raw(` (`)

	for ind, field := range fields {
		err := field.validate()
		if err != nil {
			return Statement{}, ErrInvalidInput.while(while).because(err)
		}
		if ind > 0 {
			bui.Raw(`, `)
		}
		bui.Raw(field.Name)
		bui.Str(string(field.Type))
		if field.PrimaryKey {
			bui.Str(`PRIMARY KEY AUTOINCREMENT`)
		}
		if field.NotNull {
			bui.Str(`NOT NULL`)
		}
	}

	bui.Raw(`);`)
	return bui.Reify(), nil
}

/*
Renders `ALTER TABLE "<table>" ADD <name> <type>;`. Discards and resets the
accumulated state.
*/
func (self *Builder) AddColumn(name string, typ DataType) (Statement, error) {
	conf, _ := self.take()

	field := Field{Name: name, Type: typ}
	err := field.validate()
	if err != nil {
		return Statement{}, ErrInvalidInput.while(`building ALTER TABLE`).because(err)
	}

	bui := makeBui(false, 64, 0)
	bui.Str(`ALTER TABLE`)
	appendTable(&bui, conf.Table)
	bui.Str(`ADD`)
	bui.Str(name)
	bui.Str(string(typ))
	bui.Raw(`;`)
	return bui.Reify(), nil
}

// Renders `DROP TABLE IF EXISTS "<table>"`. Discards and resets the accumulated state.
func (self *Builder) DropTable() Statement {
	conf, _ := self.take()

	bui := makeBui(false, 64, 0)
	bui.Str(`DROP TABLE IF EXISTS`)
	appendTable(&bui, conf.Table)
	return bui.Reify()
}

/*
Renders `PRAGMA user_version = <version>`, or `PRAGMA user_version = ?` in
fill mode. SQLite doesn't bind parameters in PRAGMA statements, so statements
meant for execution should be rendered in literal mode. Discards and resets
the accumulated state.
*/
func (self *Builder) SetVersion(version int) Statement {
	conf, _ := self.take()

	bui := makeBui(conf.Fill, 32, 1)
	bui.Str(`PRAGMA user_version =`)
	bui.Space()
	appendInt(&bui, version)
	return bui.Reify()
}

func (self Field) validate() error {
	if self.Name == `` {
		return fmt.Errorf(`unnamed field of type %q`, self.Type)
	}
	if !self.Type.valid() {
		return fmt.Errorf(`field %q: unknown type %q`, self.Name, self.Type)
	}
	return nil
}
