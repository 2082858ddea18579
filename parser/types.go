// Package parser interprets the raw columns of a slow-query log row: the
// serialized parameter list and the captured backtrace.
package parser

import (
	"database/sql"
	"time"
)

// LogEntry is one row of the host's slow-query log table.
// Rows are written by the host's logging subsystem; slowq only reads them.
//
// Example row:
//
//	id=42 exectime=7.31250 timelogged=1767225600
//	sqltext="SELECT * FROM {course} c WHERE c.category = ?"
//	sqlparams="array (\n  0 => 3,\n)"
type LogEntry struct {
	ID int64 `db:"id"`

	// SQLText is the statement with `?` placeholders.
	SQLText string `db:"sqltext"`

	// SQLParams is the serialized parameter list, JSON or a legacy
	// "array ( 0 => ..., )" dump. NULL when the statement had no parameters.
	SQLParams sql.NullString `db:"sqlparams"`

	// ExecTime is the execution time in seconds.
	ExecTime float64 `db:"exectime"`

	// TimeLogged is a unix timestamp.
	TimeLogged int64 `db:"timelogged"`

	Backtrace sql.NullString `db:"backtrace"`
}

// LoggedAt returns TimeLogged as a time in loc.
func (e LogEntry) LoggedAt(loc *time.Location) time.Time {
	return time.Unix(e.TimeLogged, 0).In(loc)
}
