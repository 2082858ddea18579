package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alain-L/slowq/config"
)

type fakeLister struct {
	indexes map[string][]ExistingIndex
	err     error
	calls   map[string]int
}

func (f *fakeLister) Indexes(_ context.Context, _ config.Target, table string) ([]ExistingIndex, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[table]++
	if f.err != nil {
		return nil, f.err
	}
	return f.indexes[table], nil
}

var mysqlTarget = config.Target{Family: config.FamilyMySQL, Prefix: "mdl_"}

const courseSQL = "SELECT c.fullname FROM {course} c JOIN {user} u ON u.id = c.userid " +
	"WHERE c.category = ? AND c.timemodified > ? ORDER BY c.sortorder LIMIT 10"

func TestExtractUsage(t *testing.T) {
	tables, usage := ExtractUsage(courseSQL, "mdl_")
	assert.Equal(t, []string{"user", "course"}, tables)

	course := usage["course"]
	require.NotNil(t, course)
	assert.Equal(t, []string{"userid", "category"}, course.Eq)
	assert.Equal(t, []string{"timemodified"}, course.Range)
	assert.Equal(t, []string{"sortorder"}, course.Order)

	want := []IndexCandidate{
		{
			Columns: []string{"userid", "category", "timemodified"},
			Reason:  "Equality/join keys: userid, category | Range keys: timemodified | Order keys: sortorder | Heuristic: eq+range",
		},
		{
			Columns: []string{"userid", "category", "sortorder"},
			Reason:  "Equality/join keys: userid, category | Order keys: sortorder | Heuristic: eq+order",
		},
		{Columns: []string{"userid"}, Reason: "Single-column equality/join key: userid"},
		{Columns: []string{"category"}, Reason: "Single-column equality/join key: category"},
	}
	if diff := cmp.Diff(want, course.Candidates); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, usage["user"].Candidates, "id is never an index key")
}

func TestExtractUsageGroupBy(t *testing.T) {
	sql := "SELECT l.userid, COUNT(1) FROM {logstore_standard_log} l WHERE l.courseid IN (?, ?) GROUP BY l.userid, l.action HAVING COUNT(1) > 1"
	tables, usage := ExtractUsage(sql, "mdl_")
	require.Equal(t, []string{"logstore_standard_log"}, tables)

	u := usage["logstore_standard_log"]
	assert.Equal(t, []string{"courseid"}, u.Eq)
	assert.Equal(t, []string{"userid", "action"}, u.Group)
	assert.Empty(t, u.Order)
}

func TestExtractUsageCapsColumns(t *testing.T) {
	sql := "SELECT 1 FROM {t} x WHERE x.a = ? AND x.b = ? AND x.c = ? AND x.d = ? AND x.e = ?"
	_, usage := ExtractUsage(sql, "mdl_")
	first := usage["t"].Candidates[0]
	assert.Equal(t, []string{"a", "b", "c", "d"}, first.Columns)
}

func TestExtractUsageEqualsOnlyCollapsesDuplicates(t *testing.T) {
	// eq+range and eq+order are identical, so only one composite survives.
	_, usage := ExtractUsage("SELECT * FROM {course} c WHERE c.category = ?", "mdl_")
	want := []IndexCandidate{
		{Columns: []string{"category"}, Reason: "Single-column equality/join key: category"},
	}
	if diff := cmp.Diff(want, usage["course"].Candidates); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractAliasMap(t *testing.T) {
	aliases := extractAliasMap("SELECT * FROM {course} AS c LEFT JOIN mdl_user WHERE mdl_user.id = c.id", "mdl_")
	assert.Equal(t, "course", aliases["c"])
	assert.Equal(t, "user", aliases["mdl_user"])
	_, ok := aliases["where"]
	assert.False(t, ok)
}

func TestSuggestFiltersCoveredCandidates(t *testing.T) {
	lister := &fakeLister{indexes: map[string][]ExistingIndex{
		"course": {{Name: "mdl_cour_cat_ix", Columns: []string{"category", "sortorder"}}},
	}}
	got := NewAdvisor(lister, nil).Suggest(context.Background(), mysqlTarget, courseSQL)

	want := []Suggestion{
		{
			Table:   "course",
			Columns: []string{"userid", "category", "timemodified"},
			Reason:  "Equality/join keys: userid, category | Range keys: timemodified | Order keys: sortorder | Heuristic: eq+range",
			Create:  "CREATE INDEX idx_lsq_course_userid_category_timemodified ON mdl_course (userid, category, timemodified);",
		},
		{
			Table:   "course",
			Columns: []string{"userid", "category", "sortorder"},
			Reason:  "Equality/join keys: userid, category | Order keys: sortorder | Heuristic: eq+order",
			Create:  "CREATE INDEX idx_lsq_course_userid_category_sortorder ON mdl_course (userid, category, sortorder);",
		},
		{
			Table:   "course",
			Columns: []string{"userid"},
			Reason:  "Single-column equality/join key: userid",
			Create:  "CREATE INDEX idx_lsq_course_userid ON mdl_course (userid);",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Suggest() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, lister.calls["course"])
	assert.Equal(t, 1, lister.calls["user"])
}

func TestSuggestTreatsLookupErrorAsNoIndexes(t *testing.T) {
	lister := &fakeLister{err: errors.New("boom")}
	got := NewAdvisor(lister, nil).Suggest(context.Background(), mysqlTarget, "SELECT * FROM {course} c WHERE c.category = ?")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"category"}, got[0].Columns)
}

func TestSuggestEmptySQL(t *testing.T) {
	assert.Empty(t, NewAdvisor(&fakeLister{}, nil).Suggest(context.Background(), mysqlTarget, "  "))
}

func TestSuggestNeverEmitsEmptyColumns(t *testing.T) {
	sqls := []string{
		"SELECT * FROM {course}",
		"SELECT * FROM {course} c WHERE c.id = ?",
		"DELETE FROM {sessions} WHERE timemodified < ?",
		courseSQL,
	}
	advisor := NewAdvisor(&fakeLister{}, nil)
	for _, sql := range sqls {
		for _, s := range advisor.Suggest(context.Background(), mysqlTarget, sql) {
			assert.NotEmpty(t, s.Columns, sql)
			assert.NotEmpty(t, s.Table, sql)
		}
	}
}

func TestIsCoveredByExisting(t *testing.T) {
	existing := []ExistingIndex{
		{Name: "a_b_c", Columns: []string{"a", "b", "c"}},
		{Name: "d_e", Columns: []string{"D", "e"}},
	}
	tests := []struct {
		cols []string
		want bool
	}{
		{[]string{"a"}, true},
		{[]string{"a", "b"}, true},
		{[]string{"a", "b", "c"}, true},
		{[]string{"a", "c"}, false},
		{[]string{"b"}, false},
		{[]string{"d"}, true},
		{[]string{"d", "e", "f"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsCoveredByExisting(tt.cols, existing), "%v", tt.cols)
	}
	assert.False(t, IsCoveredByExisting([]string{"a"}, nil))
}

func TestSuggestionIndexName(t *testing.T) {
	assert.Equal(t, "idx_lsq_course_category", SuggestionIndexName("course", []string{"category"}))
	assert.Equal(t, "idx_lsq_my_table_col_x", SuggestionIndexName("My-Table", []string{"col x"}))

	long := SuggestionIndexName("course_completion_crit_compl", []string{"criteriaid", "userid", "timecompleted"})
	assert.Len(t, long, 60)
}
