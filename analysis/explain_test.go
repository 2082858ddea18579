package analysis

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/Alain-L/slowq/config"
)

type fakeExplainer struct {
	res  *ExplainResult
	err  error
	last string
}

func (f *fakeExplainer) Explain(_ context.Context, _ config.Target, sql string) (*ExplainResult, error) {
	f.last = sql
	return f.res, f.err
}

func sampleExplain() *ExplainResult {
	return &ExplainResult{
		Columns: []string{"id", "select_type", "table", "key", "Extra"},
		Rows: [][]interface{}{
			{int64(1), []byte("SIMPLE"), "mdl_course", nil, "Using where |\r\nfilesort"},
			{int64(2), "DERIVED", "x", true, false},
		},
	}
}

func TestExplainToMarkdown(t *testing.T) {
	want := "# EXPLAIN output SQL:\n" +
		"| id | select_type | table | key | Extra |\n" +
		"| --- | --- | --- | --- | --- |\n" +
		"| 1 | SIMPLE | mdl_course |  | Using where \\|<br>filesort |\n" +
		"| 2 | DERIVED | x | 1 | 0 |"
	assert.Equal(t, want, ExplainToMarkdown(sampleExplain()))
	assert.Equal(t, "", ExplainToMarkdown(nil))
	assert.Equal(t, "", ExplainToMarkdown(&ExplainResult{Columns: []string{"id"}}))
}

func TestExplainMarkdown(t *testing.T) {
	ex := &fakeExplainer{res: sampleExplain()}
	got := ExplainMarkdown(context.Background(), ex, mysqlTarget, " SELECT * FROM {course} WHERE id = 1;; ", nil)
	assert.Contains(t, got, "# EXPLAIN output SQL:")
	assert.Equal(t, "SELECT * FROM mdl_course WHERE id = 1", ex.last)
}

func TestExplainMarkdownDegrades(t *testing.T) {
	ctx := context.Background()
	pg := config.Target{Family: config.FamilyPostgres, Prefix: "mdl_"}
	maria := config.Target{Family: config.FamilyMariaDB, Prefix: "mdl_"}

	assert.Equal(t, "", ExplainMarkdown(ctx, &fakeExplainer{res: sampleExplain()}, pg, "SELECT 1", nil))
	assert.Equal(t, "", ExplainMarkdown(ctx, &fakeExplainer{err: errors.New("syntax")}, mysqlTarget, "SELECT 1", nil))
	assert.Equal(t, "", ExplainMarkdown(ctx, &fakeExplainer{res: sampleExplain()}, mysqlTarget, " ; ", nil))
	assert.Equal(t, "", ExplainMarkdown(ctx, nil, mysqlTarget, "SELECT 1", nil))
	assert.NotEmpty(t, ExplainMarkdown(ctx, &fakeExplainer{res: sampleExplain()}, maria, "SELECT 1", nil))
}

func TestResolveTableBraces(t *testing.T) {
	assert.Equal(t, "SELECT * FROM m_user u JOIN m_course c", ResolveTableBraces("SELECT * FROM {user} u JOIN {course} c", "m_"))
	assert.Equal(t, "SELECT '{not a table}'", ResolveTableBraces("SELECT '{not a table}'", "m_"))
}
