// Package config loads and validates the comparison run configuration from a
// JSON file. Connection credentials may also come from SCHEMALIGN_* environment
// variables, which take precedence over file values.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/schemalign/schemalign/internal/ir"
)

// Wildcard is the tables_to_compare marker meaning "all tables in template"
const Wildcard = "*"

// Database describes one connection: the template or a target
type Database struct {
	Name     string `mapstructure:"name" json:"name"`
	Type     string `mapstructure:"type" json:"type"`
	Host     string `mapstructure:"host" json:"host,omitempty"`
	Port     int    `mapstructure:"port" json:"port,omitempty"`
	User     string `mapstructure:"user" json:"user,omitempty"`
	Password string `mapstructure:"password" json:"-"`
	Database string `mapstructure:"database" json:"database,omitempty"`
	Path     string `mapstructure:"path" json:"path,omitempty"` // sqlite file path
}

// Dialect resolves the configured engine type
func (d *Database) Dialect() (ir.Dialect, error) {
	return ir.ParseDialect(d.Type)
}

// Config is the full comparison run configuration
type Config struct {
	TemplateDatabase Database            `mapstructure:"template_database"`
	TargetDatabases  map[string]Database `mapstructure:"target_databases"`
	OutputDir        string              `mapstructure:"output_dir"`
	Concurrency      int                 `mapstructure:"concurrency"`
	ConnectTimeout   int                 `mapstructure:"connect_timeout_seconds"`

	// Tables is the explicit ordered list; empty with AllTables true means
	// "every table in the template"
	Tables    []string `mapstructure:"-"`
	AllTables bool     `mapstructure:"-"`
}

// Load reads, parses, and validates the configuration file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("SCHEMALIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("concurrency", 4)
	v.SetDefault("connect_timeout_seconds", 10)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	tables, wildcard, err := parseTables(v.Get("tables_to_compare"))
	if err != nil {
		return nil, err
	}
	cfg.Tables = tables
	cfg.AllTables = wildcard

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parseTables accepts either an explicit ordered list of names or the
// wildcard marker
func parseTables(raw any) ([]string, bool, error) {
	switch val := raw.(type) {
	case nil:
		return nil, false, fmt.Errorf("tables_to_compare is required (a list of table names, or %q)", Wildcard)
	case string:
		if val == Wildcard {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("tables_to_compare must be a list of table names, or %q", Wildcard)
	case []any:
		tables := make([]string, 0, len(val))
		for _, item := range val {
			name, ok := item.(string)
			if !ok || name == "" {
				return nil, false, fmt.Errorf("tables_to_compare contains a non-string entry: %v", item)
			}
			tables = append(tables, name)
		}
		if len(tables) == 0 {
			return nil, false, fmt.Errorf("tables_to_compare is empty; list table names or use %q", Wildcard)
		}
		return tables, false, nil
	case []string:
		return val, false, nil
	default:
		return nil, false, fmt.Errorf("tables_to_compare has unsupported type %T", raw)
	}
}

func (c *Config) validate() error {
	if _, err := c.TemplateDatabase.Dialect(); err != nil {
		return fmt.Errorf("template_database: %w", err)
	}
	if len(c.TargetDatabases) == 0 {
		return fmt.Errorf("target_databases must contain at least one entry")
	}
	for name, db := range c.TargetDatabases {
		if _, err := db.Dialect(); err != nil {
			return fmt.Errorf("target_databases.%s: %w", name, err)
		}
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.ConnectTimeout < 1 {
		return fmt.Errorf("connect_timeout_seconds must be at least 1, got %d", c.ConnectTimeout)
	}
	return nil
}

// TargetNames returns the configured target names sorted for deterministic
// scheduling and reporting
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.TargetDatabases))
	for name := range c.TargetDatabases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
