package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/config"
)

var roleStep = IndexStep{Table: "role_assignments", Columns: []string{"contextid", "userid"}}

const roleCreate = "CREATE INDEX contextid_userid ON mdl_role_assignments (contextid, userid)"

func TestEnsureIndexCreates(t *testing.T) {
	d, mock := newMockStore(t, "mysql", mysqlTarget)
	expectMySQLIndexes(mock, "mdl_role_assignments", statisticsRows().
		AddRow("mdl_roleassi_con_ix", int64(1), int64(1), "contextid"))
	mock.ExpectExec(regexp.QuoteMeta(roleCreate)).WillReturnResult(sqlmock.NewResult(0, 0))

	res, err := d.EnsureIndex(context.Background(), mysqlTarget, roleStep, false)
	require.NoError(t, err)
	assert.Equal(t, "contextid_userid", res.Name)
	assert.Equal(t, roleCreate, res.Statement)
	assert.True(t, res.Created)
	assert.False(t, res.Exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureIndexExists(t *testing.T) {
	d, mock := newMockStore(t, "mysql", mysqlTarget)
	expectMySQLIndexes(mock, "mdl_role_assignments", statisticsRows().
		AddRow("mdl_roleassi_conuse_ix", int64(1), int64(1), "ContextId").
		AddRow("mdl_roleassi_conuse_ix", int64(1), int64(2), "userid"))

	res, err := d.EnsureIndex(context.Background(), mysqlTarget, roleStep, false)
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.False(t, res.Created)
	assert.NoError(t, mock.ExpectationsWereMet(), "no CREATE INDEX expected")
}

func TestEnsureIndexDryRun(t *testing.T) {
	d, mock := newMockStore(t, "mysql", mysqlTarget)
	expectMySQLIndexes(mock, "mdl_role_assignments", statisticsRows())

	res, err := d.EnsureIndex(context.Background(), mysqlTarget, roleStep, true)
	require.NoError(t, err)
	assert.Equal(t, roleCreate, res.Statement)
	assert.False(t, res.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureIndexSkipsUnknownFamily(t *testing.T) {
	d, mock := newMockStore(t, "sqlite", config.Target{Prefix: "mdl_"})

	res, err := d.EnsureIndex(context.Background(), d.Target(), roleStep, false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, res.Statement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpgradeContinuesPastFailures(t *testing.T) {
	d, mock := newMockStore(t, "mysql", mysqlTarget)
	pageStep := IndexStep{Table: "page", Columns: []string{"timemodified"}}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DATABASE()")).WillReturnError(errors.New("gone away"))
	expectMySQLIndexes(mock, "mdl_role_assignments", statisticsRows())
	mock.ExpectExec(regexp.QuoteMeta(roleCreate)).WillReturnError(errors.New("lock wait timeout"))

	results, err := d.Upgrade(context.Background(), mysqlTarget, []IndexStep{pageStep, roleStep}, false)
	require.Error(t, err)
	assert.Empty(t, results)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "checking indexes of page")
	assert.Contains(t, errs[1].Error(), "creating index contextid_userid")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasIndex(t *testing.T) {
	existing := []analysis.ExistingIndex{
		{Name: "named_one", Columns: []string{"a"}},
		{Name: "x", Columns: []string{"b", "c"}},
	}
	assert.True(t, hasIndex(existing, "NAMED_ONE", []string{"z"}))
	assert.True(t, hasIndex(existing, "other", []string{"B", "c"}))
	assert.False(t, hasIndex(existing, "other", []string{"c", "b"}))
	assert.False(t, hasIndex(existing, "other", []string{"b"}))
	assert.False(t, hasIndex(nil, "other", []string{"b"}))
}

func TestTrackerLink(t *testing.T) {
	assert.Equal(t,
		"Global Search indexing very slow. See MDL-87790 for details: https://moodle.atlassian.net/browse/MDL-87790",
		UpgradeSteps[0].TrackerLink())
	assert.Empty(t, roleStep.TrackerLink())
}
