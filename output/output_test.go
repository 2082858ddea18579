package output

import (
	"time"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/parser"
)

var sampleLogged = time.Date(2026, 10, 17, 9, 15, 0, 0, time.UTC)

// sampleDetail returns a report with every section populated.
func sampleDetail() *analysis.Detail {
	return &analysis.Detail{
		ID:          42,
		QueryID:     "se-1a2b3c",
		QueryType:   "select",
		TimeLogged:  sampleLogged,
		ExecTime:    6.5,
		AvgTime:     4.25,
		Comments:    "seen during the nightly backup",
		IsCron:      true,
		SQLText:     "SELECT * FROM {course} WHERE category = ? AND visible = ?",
		Params:      []parser.Param{parser.IntParam(3), parser.IntParam(1)},
		ParamsBlock: "[0] = 3\n[1] = 1",
		ExpandedSQL: "SELECT * FROM {course} WHERE category = 3 AND visible = 1",
		Backtrace:   "* line 12 of /admin/cli/cron.php: call to x()",
		Origin:      "line 12 of /admin/cli/cron.php",
		Tables:      []string{"course"},
		SchemaBlock: "## TABLE course\nRow count: 1,234",
		Suggestions: []analysis.Suggestion{{
			Table:   "course",
			Columns: []string{"category", "visible"},
			Reason:  "Equality filters: category, visible",
			Create:  "CREATE INDEX idx_lsq_course_category_visible ON mdl_course (category, visible);",
		}},
		Explain: "# EXPLAIN output SQL:\n| id | table |\n| --- | --- |\n| 1 | mdl_course |",
		Timeline: analysis.Timeline{
			Days: []analysis.Day{
				{Day: "2026-10-17", Label: "17 October 2026", Segments: []analysis.Segment{
					{Left: 37.5, Width: 3, Title: "09:00:00 • 6.500s"},
				}},
				{Day: "2026-10-15", Label: "15 October 2026", Segments: []analysis.Segment{
					{Left: 0, Width: 3, Title: "00:00:00 • 2.000s"},
					{Left: 99.9, Width: 10, Title: "23:58:33 • 100.000s"},
				}},
			},
			TotalCount:   3,
			TotalSeconds: 108.5,
			TotalTime:    "1 minute 48 seconds",
			SecPx:        analysis.TimelineSecPx,
			Stats: analysis.DurationStats{
				Count:  3,
				Min:    2 * time.Second,
				Max:    100 * time.Second,
				Avg:    36166 * time.Millisecond,
				Median: 6500 * time.Millisecond,
			},
			Distribution: map[string]int{"<= 5s": 1, "5s - 20s": 1, "> 60s": 1},
		},
		Prompt: "The SQL query below is very slow (~4.25s). ",
	}
}
