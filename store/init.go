package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sqlorm/sqlorm"
)

/*
Brings the database in line with the schema:

	* Creates the table if it doesn't exist.
	* Otherwise adds the schema fields missing from the table.
	* If `Schema.Version` is above the stored `PRAGMA user_version`, calls the
	  upgrade hook and stores the new version.

The version is database-wide. A lower schema version never downgrades it.
*/
func (self *Table) Init(ctx context.Context) error {
	if err := self.Validate(); err != nil {
		return err
	}

	info, ok, err := self.Info(ctx)
	if err != nil {
		return err
	}

	if !ok {
		if err := self.Create(ctx); err != nil {
			return err
		}
	} else {
		have, err := sqlorm.ParseCreate(createSQL(info))
		if err != nil {
			return fmt.Errorf("reading columns of %q: %w", self.Name, err)
		}
		if err := self.AddColumns(ctx, self.Missing(have)...); err != nil {
			return err
		}
	}

	return self.upgradeVersion(ctx)
}

func (self *Table) upgradeVersion(ctx context.Context) error {
	if self.Version <= 0 {
		return nil
	}

	current, err := self.StoredVersion(ctx)
	if err != nil {
		return err
	}
	if current >= self.Version {
		return nil
	}

	self.log.Info(`upgrading schema version`,
		zap.String(`table`, self.Name),
		zap.Int(`from`, current),
		zap.Int(`to`, self.Version),
	)

	if self.upgrade != nil {
		if err := self.upgrade(ctx, self, current, self.Version); err != nil {
			return fmt.Errorf("upgrading %q from version %d to %d: %w", self.Name, current, self.Version, err)
		}
	}
	return self.StoreVersion(ctx, self.Version)
}

// CREATE statement from a `sqlite_master` row.
func createSQL(info sqlorm.Row) string {
	val, _ := info.Get(`sql`)
	return toString(val)
}

/*
Returns the `sqlite_master` entry of the table, or false if the table doesn't
exist. The `sql` column holds its CREATE statement.
*/
func (self *Table) Info(ctx context.Context) (sqlorm.Row, bool, error) {
	stmt, err := self.builder().TableInfo(``)
	if err != nil {
		return nil, false, err
	}

	rows, err := self.query(ctx, stmt)
	if err != nil {
		return nil, false, fmt.Errorf("reading schema of %q: %w", self.Name, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// Columns currently in the database, parsed from the stored CREATE statement.
func (self *Table) Columns(ctx context.Context) ([]sqlorm.Field, error) {
	info, ok, err := self.Info(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("table %q doesn't exist", self.Name)
	}
	return sqlorm.ParseCreate(createSQL(info))
}

// Runs `CREATE TABLE IF NOT EXISTS` with the schema fields.
func (self *Table) Create(ctx context.Context) error {
	stmt, err := self.builder().CreateTable(self.Fields)
	if err != nil {
		return err
	}
	if _, err := self.execute(ctx, stmt); err != nil {
		return fmt.Errorf("creating %q: %w", self.Name, err)
	}
	return nil
}

// Runs `ALTER TABLE ... ADD` for one column.
func (self *Table) AddColumn(ctx context.Context, field sqlorm.Field) error {
	stmt, err := self.builder().AddColumn(field.Name, field.Type)
	if err != nil {
		return err
	}

	self.log.Info(`adding column`, zap.String(`table`, self.Name), zap.String(`field`, field.Name))
	if _, err := self.execute(ctx, stmt); err != nil {
		return fmt.Errorf("adding column %q to %q: %w", field.Name, self.Name, err)
	}
	return nil
}

// Adds the columns one by one, stopping at the first failure.
func (self *Table) AddColumns(ctx context.Context, fields ...sqlorm.Field) error {
	for _, field := range fields {
		if err := self.AddColumn(ctx, field); err != nil {
			return err
		}
	}
	return nil
}

// Reads `PRAGMA user_version`.
func (self *Table) StoredVersion(ctx context.Context) (int, error) {
	rows, err := self.query(ctx, self.builder().UserVersion())
	if err != nil {
		return 0, fmt.Errorf("reading version: %w", err)
	}

	val, err := scalar(rows)
	if err != nil {
		return 0, fmt.Errorf("reading version: %w", err)
	}
	num, err := toInt64(val)
	if err != nil {
		return 0, fmt.Errorf("reading version: %w", err)
	}
	return int(num), nil
}

// Sets `PRAGMA user_version`. SQLite doesn't bind PRAGMA args, so the version is inlined.
func (self *Table) StoreVersion(ctx context.Context, version int) error {
	stmt := self.builder().Fill(false).SetVersion(version)
	if _, err := self.execute(ctx, stmt); err != nil {
		return fmt.Errorf("storing version %d: %w", version, err)
	}
	return nil
}

// Runs `DROP TABLE IF EXISTS`.
func (self *Table) Drop(ctx context.Context) error {
	if _, err := self.execute(ctx, self.builder().DropTable()); err != nil {
		return fmt.Errorf("dropping %q: %w", self.Name, err)
	}
	return nil
}
