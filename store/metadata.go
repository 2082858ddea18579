package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/config"
)

const mysqlIndexQuery = `
SELECT
	index_name, non_unique, seq_in_index, column_name
FROM
	information_schema.statistics
WHERE
	table_schema = ? AND table_name = ?
ORDER BY
	index_name ASC, seq_in_index ASC
`

const postgresIndexQuery = `
SELECT
	indexname, indexdef
FROM
	pg_indexes
WHERE
	tablename = ?
`

// Column names are aliased: MySQL 8 reports information_schema columns in
// upper case.
const columnsQuery = `
SELECT
	column_name AS column_name,
	data_type AS data_type,
	COALESCE(character_maximum_length, numeric_precision) AS max_length,
	is_nullable AS is_nullable,
	column_default AS column_default
FROM
	information_schema.columns
WHERE
	table_schema = %s AND table_name = ?
ORDER BY
	ordinal_position
`

var (
	indexColumnsRegex = regexp.MustCompile(`\((.+)\)`)
	sortOrderRegex    = regexp.MustCompile(`(?i)\s+(ASC|DESC)\b`)
)

// Indexes lists the indexes of an unprefixed host table. Families without
// catalog support yield no indexes.
func (d *DB) Indexes(ctx context.Context, target config.Target, table string) ([]analysis.ExistingIndex, error) {
	switch {
	case target.Family.IsMySQL():
		return d.mysqlIndexes(ctx, target.Table(table))
	case target.Family == config.FamilyPostgres:
		return d.postgresIndexes(ctx, target.Table(table))
	default:
		return nil, nil
	}
}

func (d *DB) mysqlIndexes(ctx context.Context, table string) (out []analysis.ExistingIndex, err error) {
	var schema string
	if err := d.db.GetContext(ctx, &schema, "SELECT DATABASE()"); err != nil {
		return nil, errors.Wrap(err, "reading current schema")
	}

	rows, err := d.db.QueryContext(ctx, d.rebind(mysqlIndexQuery), schema, table)
	if err != nil {
		return nil, errors.Wrapf(err, "reading indexes of %s", table)
	}
	defer closeRows(rows, &err)

	pos := make(map[string]int)
	for rows.Next() {
		var (
			name      string
			nonUnique int64
			seq       int64
			column    sql.NullString
		)
		if err := rows.Scan(&name, &nonUnique, &seq, &column); err != nil {
			return nil, errors.Wrapf(err, "scanning indexes of %s", table)
		}

		i, ok := pos[name]
		if !ok {
			i = len(out)
			pos[name] = i
			out = append(out, analysis.ExistingIndex{Name: name})
		}
		// Any row flagged unique makes the index unique.
		out[i].Unique = out[i].Unique || nonUnique == 0
		if column.Valid && column.String != "" {
			out[i].Columns = append(out[i].Columns, strings.ToLower(column.String))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading indexes of %s", table)
	}
	return out, nil
}

func (d *DB) postgresIndexes(ctx context.Context, table string) (out []analysis.ExistingIndex, err error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(postgresIndexQuery), table)
	if err != nil {
		return nil, errors.Wrapf(err, "reading indexes of %s", table)
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return nil, errors.Wrapf(err, "scanning indexes of %s", table)
		}
		out = append(out, ParseIndexDef(name, def))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading indexes of %s", table)
	}
	return out, nil
}

// ParseIndexDef reads the uniqueness and plain column list of a PostgreSQL
// index definition. Expression parts are skipped.
func ParseIndexDef(name, def string) analysis.ExistingIndex {
	idx := analysis.ExistingIndex{
		Name:       name,
		Unique:     strings.Contains(strings.ToUpper(def), "CREATE UNIQUE INDEX"),
		Definition: def,
	}

	m := indexColumnsRegex.FindStringSubmatch(def)
	if m == nil {
		return idx
	}
	for _, p := range strings.Split(m[1], ",") {
		p = sortOrderRegex.ReplaceAllString(strings.TrimSpace(p), "")
		p = strings.Trim(p, "\"` ")
		if p == "" || strings.Contains(p, "(") {
			continue
		}
		idx.Columns = append(idx.Columns, strings.ToLower(p))
	}
	return idx
}

// Columns lists the columns of an unprefixed host table in declared order.
func (d *DB) Columns(ctx context.Context, target config.Target, table string) ([]analysis.Column, error) {
	var schemaExpr string
	switch {
	case target.Family.IsMySQL():
		schemaExpr = "DATABASE()"
	case target.Family == config.FamilyPostgres:
		schemaExpr = "current_schema()"
	default:
		return nil, nil
	}

	var cols []analysis.Column
	query := d.rebind(fmt.Sprintf(columnsQuery, schemaExpr))
	if err := d.db.SelectContext(ctx, &cols, query, target.Table(table)); err != nil {
		return nil, errors.Wrapf(err, "reading columns of %s", target.Table(table))
	}
	return cols, nil
}

// RowCount counts the rows of an unprefixed host table.
func (d *DB) RowCount(ctx context.Context, target config.Target, table string) (int64, error) {
	physical := target.Table(table)
	if err := checkIdent(physical); err != nil {
		return 0, err
	}
	var n int64
	if err := d.db.GetContext(ctx, &n, "SELECT COUNT(1) FROM "+physical); err != nil {
		return 0, errors.Wrapf(err, "counting rows of %s", physical)
	}
	return n, nil
}

var _ analysis.Catalog = (*DB)(nil)
