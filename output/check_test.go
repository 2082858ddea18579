package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/config"
)

func TestFormatThresholdTable(t *testing.T) {
	got := FormatThresholdTable([]ThresholdRow{{Seconds: 5, Count: 12}, {Seconds: 20, Count: 4}})
	want := strings.Join([]string{
		"┌" + strings.Repeat("─", 13) + "┬" + strings.Repeat("─", 9) + "┐",
		"│ Slower than │ Entries │",
		"├" + strings.Repeat("─", 13) + "┼" + strings.Repeat("─", 9) + "┤",
		"│ 5 s         │      12 │",
		"│ 20 s        │       4 │",
		"└" + strings.Repeat("─", 13) + "┴" + strings.Repeat("─", 9) + "┘",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestPrintCheckError(t *testing.T) {
	res := analysis.CheckResult{
		Status:  analysis.CheckError,
		Summary: "Found 12 queries taking more than 5 seconds",
		Details: []string{"12 queries took more than 5 seconds."},
	}
	var buf bytes.Buffer
	PrintCheck(&buf, res, []ThresholdRow{{Seconds: 5, Count: 12}})
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "ERROR: Found 12 queries taking more than 5 seconds\n"))
	assert.Contains(t, out, "  12 queries took more than 5 seconds.\n")
	assert.Contains(t, out, "│ 5 s         │      12 │")
}

func TestPrintCheckCritical(t *testing.T) {
	res := analysis.EvaluateCheck(config.DBOptions{}, func(int) int64 { return 0 })
	var buf bytes.Buffer
	PrintCheck(&buf, res, nil)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "CRITICAL: Slow query logging is disabled\n"))
	assert.Contains(t, out, "  Current value             : -\n")
	assert.Contains(t, out, "      'logslow'     => 3, // 3s.")
	assert.NotContains(t, out, "Slower than")
}
