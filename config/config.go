// Package config loads the slowq configuration file and derives the
// database target (family and table prefix) every metadata call works against.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Family identifies the database engine behind the log store.
type Family string

const (
	FamilyMySQL    Family = "mysql"
	FamilyMariaDB  Family = "mariadb"
	FamilyPostgres Family = "postgres"
	FamilyOracle   Family = "oracle"
	FamilyMSSQL    Family = "mssql"
	FamilyUnknown  Family = ""
)

// IsMySQL reports whether the family speaks the MySQL dialect.
func (f Family) IsMySQL() bool {
	return f == FamilyMySQL || f == FamilyMariaDB
}

// DefaultPrefix is the host application's stock table prefix.
const DefaultPrefix = "mdl_"

// Target is the explicit database context passed into catalog lookups and
// suggestion runs.
type Target struct {
	Family Family
	Prefix string
}

// Table returns the physical (prefixed) name of a host table.
func (t Target) Table(name string) string {
	return t.Prefix + name
}

// DBOptions mirrors the host's dboptions block. Only logslow is read.
type DBOptions struct {
	// LogSlow may be a boolean, a number of seconds or the string "true".
	LogSlow interface{} `yaml:"logslow"`
}

// Config is the on-disk configuration.
type Config struct {
	Driver    string    `yaml:"driver"`
	DSN       string    `yaml:"dsn"`
	Family    Family    `yaml:"family"`
	Prefix    *string   `yaml:"prefix"`
	Timezone  string    `yaml:"timezone"`
	Language  string    `yaml:"language"`
	DBOptions DBOptions `yaml:"dboptions"`
}

// Load reads a YAML configuration file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// TablePrefix returns the configured prefix, DefaultPrefix when unset.
// An explicit empty prefix is honoured.
func (c *Config) TablePrefix() string {
	if c.Prefix == nil {
		return DefaultPrefix
	}
	return *c.Prefix
}

// ResolveFamily returns the configured family, or derives it from the driver.
func (c *Config) ResolveFamily() Family {
	if c.Family != FamilyUnknown {
		return Family(strings.ToLower(string(c.Family)))
	}
	return FamilyForDriver(c.Driver)
}

// Target builds the database target for this configuration.
func (c *Config) Target() Target {
	return Target{Family: c.ResolveFamily(), Prefix: c.TablePrefix()}
}

// FamilyForDriver maps a database/sql driver name to its family.
func FamilyForDriver(driver string) Family {
	switch strings.ToLower(driver) {
	case "mysql":
		return FamilyMySQL
	case "pgx", "postgres", "postgresql":
		return FamilyPostgres
	default:
		return FamilyUnknown
	}
}

// LogSlowEnabled reports whether the host logs slow queries at all:
// true, a positive number, or the string "true".
func (o DBOptions) LogSlowEnabled() bool {
	switch v := o.LogSlow.(type) {
	case bool:
		return v
	case int:
		return v > 0
	case int64:
		return v > 0
	case float64:
		return v > 0
	case string:
		s := strings.TrimSpace(v)
		if strings.EqualFold(s, "true") {
			return true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f > 0
		}
	}
	return false
}

// LogSlowValue renders the raw logslow setting for display.
func (o DBOptions) LogSlowValue() string {
	switch v := o.LogSlow.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	}
	return ""
}

// LogSlowSnippet is the configuration example shown when logging is disabled.
const LogSlowSnippet = `....
$CFG->prefix    = 'mdl_';
$CFG->dboptions = array(
    ....
    'logslow'     => 3, // 3s.
    ....
);
...
`
