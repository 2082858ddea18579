// Package store reads the host's slow-query log and catalog through sqlx.
//
// All statements are written with "?" placeholders and rebound for the
// driver in use. Table names are always physical: prefix + name.
package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	// Registered drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Alain-L/slowq/config"
)

// ErrNotFound is returned when a requested log entry does not exist.
var ErrNotFound = errors.New("not found")

const (
	logTable      = "log_queries"
	commentsTable = "local_slow_queries_comments"

	connectTimeout = 30 * time.Second
)

var identRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// DB is the slowq view of the host database.
type DB struct {
	db     *sqlx.DB
	target config.Target
	logger *zap.Logger
}

// DriverName maps a configured driver to the database/sql driver name.
func DriverName(driver string) string {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return "pgx"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "", "mysql", "mariadb":
		return "mysql"
	default:
		return driver
	}
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*DB, error) {
	driver := DriverName(cfg.Driver)
	if cfg.DSN == "" {
		return nil, errors.New("no database DSN configured")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	db, err := sqlx.ConnectContext(ctx, driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s database", driver)
	}

	target := cfg.Target()
	if cfg.Family == config.FamilyUnknown {
		target.Family = config.FamilyForDriver(driver)
	}
	return New(db, target, logger), nil
}

// New wraps an open connection.
func New(db *sqlx.DB, target config.Target, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{db: db, target: target, logger: logger}
}

// Target returns the family and prefix the store was opened with.
func (d *DB) Target() config.Target {
	return d.target
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// table returns the physical name of a host table.
func (d *DB) table(name string) string {
	return d.target.Table(name)
}

func (d *DB) rebind(query string) string {
	return d.db.Rebind(query)
}

// checkIdent rejects table names that cannot be safely inlined.
func checkIdent(name string) error {
	if !identRegex.MatchString(name) {
		return errors.Errorf("invalid table name %q", name)
	}
	return nil
}

// closeRows closes rows and folds the close error into err.
func closeRows(rows interface{ Close() error }, err *error) {
	*err = multierr.Append(*err, rows.Close())
}
