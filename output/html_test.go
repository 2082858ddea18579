package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alain-L/slowq/analysis"
)

func TestExportHTML(t *testing.T) {
	d := sampleDetail()
	d.SQLText = "SELECT 1 WHERE a < 2"

	var buf bytes.Buffer
	require.NoError(t, ExportHTML(&buf, d))
	out := buf.String()

	assert.Contains(t, out, "a &lt; 2")
	assert.Contains(t, out, "left: 37.5000%")
	assert.Contains(t, out, "width: 3px")
	assert.Contains(t, out, "<td>category, visible</td>")
	assert.Contains(t, out, "<h2>EXPLAIN</h2>")
	assert.Contains(t, out, "3 executions, total time 1 minute 48 seconds.")
}

func TestExportHTMLDegraded(t *testing.T) {
	d := sampleDetail()
	d.Suggestions = nil
	d.Explain = ""
	d.Timeline = analysis.Timeline{}

	var buf bytes.Buffer
	require.NoError(t, ExportHTML(&buf, d))
	out := buf.String()

	assert.Contains(t, out, "No index suggestions detected for this query.")
	assert.NotContains(t, out, "<h2>EXPLAIN</h2>")
	assert.Contains(t, out, "No executions in the period.")
}
