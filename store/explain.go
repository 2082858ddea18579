package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/config"
)

// Explain runs EXPLAIN for a statement inside a read-only transaction that is
// always rolled back. Only MySQL-family databases are explained; for the
// others the result is nil.
func (d *DB) Explain(ctx context.Context, target config.Target, stmt string) (res *analysis.ExplainResult, err error) {
	if !target.Family.IsMySQL() {
		return nil, nil
	}

	tx, err := d.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, errors.Wrap(err, "starting read-only transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = multierr.Append(err, rbErr)
		}
	}()

	rows, err := tx.QueryxContext(ctx, "EXPLAIN "+stmt)
	if err != nil {
		return nil, errors.Wrap(err, "running EXPLAIN")
	}
	defer closeRows(rows, &err)

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "reading EXPLAIN columns")
	}
	res = &analysis.ExplainResult{Columns: cols}
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, errors.Wrap(err, "scanning EXPLAIN row")
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading EXPLAIN rows")
	}
	return res, nil
}

var _ analysis.Explainer = (*DB)(nil)
