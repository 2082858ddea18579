package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/parser"
)

// cronLike matches backtraces captured during a CRON run.
const cronLike = "%/" + parser.CronMarker + "%"

// likeEscape is the escape character of search patterns.
const likeEscape = "!"

// DefaultPerPage is the list page size.
const DefaultPerPage = 30

// GroupedRow is one distinct SQL text of the list view.
type GroupedRow struct {
	ID        int64          `db:"id" json:"id"` // latest entry of the group
	SQLText   string         `db:"sqltext" json:"sqltext"`
	Backtrace sql.NullString `db:"backtrace" json:"-"`
	Count     int64          `db:"cnt" json:"count"`
	AvgTime   float64        `db:"avgtime" json:"avgtime"`
	IsCron    bool           `db:"iscron" json:"iscron"`
	Comments  string         `db:"-" json:"comments,omitempty"`
}

// ListOptions selects and orders the list view.
type ListOptions struct {
	Search  string
	MinExec float64
	Sort    string // avgtime, cnt or id
	Asc     bool
	Page    int // zero-based
	PerPage int
}

// Detail is a single log entry with the aggregate data of its SQL text.
type Detail struct {
	parser.LogEntry
	AvgTime  float64
	Comments string
}

// ThresholdCounts counts entries slower than 5, 20, 40 and 60 seconds.
type ThresholdCounts struct {
	GT5  int64 `db:"gt5"`
	GT20 int64 `db:"gt20"`
	GT40 int64 `db:"gt40"`
	GT60 int64 `db:"gt60"`
}

// ByThreshold returns the count for one of analysis.SlowThresholds.
func (c ThresholdCounts) ByThreshold(seconds int) int64 {
	switch seconds {
	case 5:
		return c.GT5
	case 20:
		return c.GT20
	case 40:
		return c.GT40
	case 60:
		return c.GT60
	}
	return 0
}

// escapeLike escapes the LIKE wildcards and the escape character itself.
func escapeLike(s string) string {
	return strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_").Replace(s)
}

// buildWhere returns the filter shared by the grouped queries.
func buildWhere(search string, minexec float64) (string, []interface{}) {
	wheres := []string{"exectime >= ?"}
	args := []interface{}{minexec}

	if search = strings.TrimSpace(search); search != "" {
		wheres = append(wheres, "LOWER(sqltext) LIKE LOWER(?) ESCAPE '"+likeEscape+"'")
		args = append(args, "%"+escapeLike(search)+"%")
	}
	return strings.Join(wheres, " AND "), args
}

// CountGroupedFiltered counts the distinct SQL texts matching the filter.
func (d *DB) CountGroupedFiltered(ctx context.Context, search string, minexec float64) (int, error) {
	where, args := buildWhere(search, minexec)
	query := fmt.Sprintf(`
		SELECT COUNT(1)
		  FROM (
			SELECT 1
			  FROM %s
			 WHERE %s
		  GROUP BY sqltext
		  ) x`, d.table(logTable), where)

	var n int
	if err := d.db.GetContext(ctx, &n, d.rebind(query), args...); err != nil {
		return 0, errors.Wrap(err, "counting grouped log entries")
	}
	return n, nil
}

// GroupedFrom returns a derived table, aliased lsq, with one row per
// distinct SQL text: id (latest entry), sqltext, backtrace of that entry,
// cnt, avgtime and iscron. The arguments bind its placeholders in order.
func (d *DB) GroupedFrom(search string, minexec float64) (string, []interface{}) {
	where, whereArgs := buildWhere(search, minexec)

	inner := fmt.Sprintf(`
		SELECT sqltext,
		       COUNT(1) AS cnt,
		       AVG(exectime) AS avgtime,
		       MAX(id) AS sampleid,
		       MAX(CASE WHEN LOWER(backtrace) LIKE ? THEN 1 ELSE 0 END) AS iscron
		  FROM %s
		 WHERE %s
	  GROUP BY sqltext`, d.table(logTable), where)

	outer := fmt.Sprintf(`
		SELECT agg.sampleid AS id,
		       agg.sqltext,
		       q.backtrace,
		       agg.cnt,
		       agg.avgtime,
		       agg.iscron
		  FROM (%s) agg
		  JOIN %s q
		    ON q.id = agg.sampleid`, inner, d.table(logTable))

	args := append([]interface{}{cronLike}, whereArgs...)
	return "(" + outer + ") lsq", args
}

var sortColumns = map[string]string{
	"avgtime": "avgtime",
	"cnt":     "cnt",
	"count":   "cnt",
	"id":      "id",
}

// ListGrouped returns one page of grouped rows with their comments.
func (d *DB) ListGrouped(ctx context.Context, opts ListOptions) ([]GroupedRow, error) {
	col, ok := sortColumns[strings.ToLower(opts.Sort)]
	if !ok {
		col = "avgtime"
	}
	dir := "DESC"
	if opts.Asc {
		dir = "ASC"
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := opts.Page
	if page < 0 {
		page = 0
	}

	from, args := d.GroupedFrom(opts.Search, opts.MinExec)
	query := fmt.Sprintf(`
		SELECT lsq.id, lsq.sqltext, lsq.backtrace, lsq.cnt, lsq.avgtime, lsq.iscron
		  FROM %s
	  ORDER BY lsq.%s %s, lsq.id DESC
	     LIMIT %d OFFSET %d`, from, col, dir, perPage, page*perPage)

	var rows []GroupedRow
	if err := d.db.SelectContext(ctx, &rows, d.rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "listing grouped log entries")
	}

	for i := range rows {
		c, err := d.GetComment(ctx, rows[i].SQLText)
		if err != nil {
			return nil, err
		}
		rows[i].Comments = c
	}
	return rows, nil
}

// GetByID loads a log entry. It returns an error wrapping ErrNotFound when
// the entry does not exist.
func (d *DB) GetByID(ctx context.Context, id int64) (*Detail, error) {
	query := fmt.Sprintf(`
		SELECT id, sqltext, sqlparams, exectime, timelogged, backtrace
		  FROM %s
		 WHERE id = ?`, d.table(logTable))

	var det Detail
	if err := d.db.GetContext(ctx, &det.LogEntry, d.rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "log entry %d", id)
		}
		return nil, errors.Wrapf(err, "loading log entry %d", id)
	}

	avgQuery := fmt.Sprintf(`
		SELECT AVG(exectime)
		  FROM %s
		 WHERE sqltext = ?`, d.table(logTable))
	var avg sql.NullFloat64
	if err := d.db.GetContext(ctx, &avg, d.rebind(avgQuery), det.SQLText); err != nil {
		return nil, errors.Wrapf(err, "averaging log entry %d", id)
	}
	det.AvgTime = avg.Float64

	c, err := d.GetComment(ctx, det.SQLText)
	if err != nil {
		return nil, err
	}
	det.Comments = c
	return &det, nil
}

// ForSQLInPeriod returns every execution of exactly sqltext logged in
// [from, to), oldest first.
func (d *DB) ForSQLInPeriod(ctx context.Context, from, to time.Time, sqltext string) ([]analysis.Execution, error) {
	query := fmt.Sprintf(`
		SELECT id, timelogged, exectime
		  FROM %s
		 WHERE timelogged >= ?
		   AND timelogged < ?
		   AND sqltext = ?
	  ORDER BY timelogged ASC, id ASC`, d.table(logTable))

	var out []analysis.Execution
	if err := d.db.SelectContext(ctx, &out, d.rebind(query), from.Unix(), to.Unix(), sqltext); err != nil {
		return nil, errors.Wrap(err, "loading executions in period")
	}
	return out, nil
}

// ThresholdCounts counts log entries over each slow threshold.
func (d *DB) ThresholdCounts(ctx context.Context) (ThresholdCounts, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(CASE WHEN exectime > 5 THEN 1 ELSE 0 END), 0) AS gt5,
		       COALESCE(SUM(CASE WHEN exectime > 20 THEN 1 ELSE 0 END), 0) AS gt20,
		       COALESCE(SUM(CASE WHEN exectime > 40 THEN 1 ELSE 0 END), 0) AS gt40,
		       COALESCE(SUM(CASE WHEN exectime > 60 THEN 1 ELSE 0 END), 0) AS gt60
		  FROM %s`, d.table(logTable))

	var c ThresholdCounts
	if err := d.db.GetContext(ctx, &c, query); err != nil {
		return c, errors.Wrap(err, "counting slow log entries")
	}
	return c, nil
}
