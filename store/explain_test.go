package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainRollsBack(t *testing.T) {
	d, mock := newMockStore(t, "mysql", mysqlTarget)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("EXPLAIN SELECT * FROM mdl_course WHERE id = 3")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "select_type", "table", "key"}).
			AddRow(int64(1), "SIMPLE", "mdl_course", "PRIMARY"))
	mock.ExpectRollback()

	res, err := d.Explain(context.Background(), mysqlTarget, "SELECT * FROM mdl_course WHERE id = 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "select_type", "table", "key"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "SIMPLE", res.Rows[0][1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExplainError(t *testing.T) {
	d, mock := newMockStore(t, "mysql", mysqlTarget)
	mock.ExpectBegin()
	mock.ExpectQuery("EXPLAIN").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	res, err := d.Explain(context.Background(), mysqlTarget, "SELEC nothing")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "syntax error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExplainSkipsOtherFamilies(t *testing.T) {
	d, mock := newMockStore(t, "pgx", postgresTarget)

	res, err := d.Explain(context.Background(), postgresTarget, "SELECT 1")
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}
