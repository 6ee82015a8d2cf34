package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sqlorm/sqlorm"
)

const (
	maxWalkDepth = 25
	envPrefix    = "SQLORM"
)

// Config represents the sqlorm configuration from sqlorm.yaml.
type Config struct {
	// Path of the YAML table schema used by create, add-column and migrate.
	Schema string `mapstructure:"schema" json:"schema"`

	// SQLite database path or DSN used by migrate.
	Database string `mapstructure:"database" json:"database"`

	// Builder settings. Table overrides the schema's table name when set.
	sqlorm.Config `mapstructure:",squash"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	def := sqlorm.DefaultConfig("")

	v.SetDefault("schema", "schema.yaml")
	v.SetDefault("database", "sqlorm.db")
	v.SetDefault("table", def.Table)
	v.SetDefault("fill", def.Fill)
	v.SetDefault("max_bound_variables", def.MaxBoundVariables)
	v.SetDefault("max_case_rows", def.MaxCaseRows)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for sqlorm.yaml or sqlorm.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"sqlorm.yaml", "sqlorm.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

// BuilderConfig returns the builder settings targeting the given table, or
// the configured table if the argument is empty.
func (c *Config) BuilderConfig(table string) sqlorm.Config {
	out := c.Config
	if table != "" {
		out.Table = table
	}
	return out
}

// NewLogger builds a console logger writing to stderr. Verbosity 0 logs
// warnings, 1 info, 2 and above debug, including every executed statement.
// Quiet logs errors only.
func NewLogger(verbose int, quiet bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	switch {
	case quiet:
		level = zapcore.ErrorLevel
	case verbose == 1:
		level = zapcore.InfoLevel
	case verbose > 1:
		level = zapcore.DebugLevel
	}

	conf := zap.NewDevelopmentConfig()
	conf.Level = zap.NewAtomicLevelAt(level)
	conf.DisableStacktrace = true
	return conf.Build()
}
