package sqlorm

import (
	"go.uber.org/zap"
)

const (
	/*
		Default upper bound of `?` placeholders in one statement. Matches the
		historical SQLITE_MAX_VARIABLE_NUMBER.
	*/
	DefaultMaxBoundVariables = 999

	/*
		Default upper bound of rows per conditional batch update. SQLite rejects
		expression trees deeper than 1000.
	*/
	DefaultMaxCaseRows = 999
)

/*
Persistent configuration of a `Builder`. Survives every render. The per-render
overrides set via `(*Builder).Table` and `(*Builder).Fill` take precedence
over `.Table` and `.Fill` for the next render only.
*/
type Config struct {
	Table             string `mapstructure:"table"               json:"table"`
	Fill              bool   `mapstructure:"fill"                json:"fill"`
	MaxBoundVariables int    `mapstructure:"max_bound_variables" json:"max_bound_variables"`
	MaxCaseRows       int    `mapstructure:"max_case_rows"       json:"max_case_rows"`
}

// Default configuration for the given table: fill mode on, SQLite limits.
func DefaultConfig(table string) Config {
	return Config{
		Table:             table,
		Fill:              true,
		MaxBoundVariables: DefaultMaxBoundVariables,
		MaxCaseRows:       DefaultMaxCaseRows,
	}
}

// Replaces non-positive limits with defaults.
func (self Config) normalize() Config {
	if self.MaxBoundVariables <= 0 {
		self.MaxBoundVariables = DefaultMaxBoundVariables
	}
	if self.MaxCaseRows <= 0 {
		self.MaxCaseRows = DefaultMaxCaseRows
	}
	return self
}

// Configures a `Builder` at construction.
type Option func(*Builder)

// Replaces the whole persistent configuration. The table passed to `New` is
// kept if `conf.Table` is empty.
func WithConfig(conf Config) Option {
	return func(self *Builder) {
		if conf.Table == `` {
			conf.Table = self.base.Table
		}
		self.base = conf.normalize()
	}
}

// Sets the persistent fill mode.
func WithFill(fill bool) Option {
	return func(self *Builder) { self.base.Fill = fill }
}

// Sets the placeholder limit used to size INSERT batches.
func WithMaxBoundVariables(max int) Option {
	return func(self *Builder) {
		self.base.MaxBoundVariables = max
		self.base = self.base.normalize()
	}
}

// Sets the default row limit of conditional batch updates.
func WithMaxCaseRows(max int) Option {
	return func(self *Builder) {
		self.base.MaxCaseRows = max
		self.base = self.base.normalize()
	}
}

// Sets the logger used for warnings. Defaults to `zap.L()`.
func WithLogger(log *zap.Logger) Option {
	return func(self *Builder) {
		if log != nil {
			self.log = log
		}
	}
}
