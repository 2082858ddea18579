package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Alain-L/slowq/config"
)

// ExplainResult is the raw tabular output of an EXPLAIN statement.
type ExplainResult struct {
	Columns []string
	Rows    [][]interface{}
}

// Explainer runs EXPLAIN for a statement against the live database.
type Explainer interface {
	Explain(ctx context.Context, target config.Target, sql string) (*ExplainResult, error)
}

var braceTableRegex = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// ResolveTableBraces replaces {table} placeholders with physical table names.
func ResolveTableBraces(sql, prefix string) string {
	return braceTableRegex.ReplaceAllString(sql, prefix+"$1")
}

// ExplainMarkdown explains sql on MySQL-family databases and renders the plan
// as a Markdown table. It never fails: unsupported families, empty statements
// and execution errors all give "".
func ExplainMarkdown(ctx context.Context, ex Explainer, target config.Target, sql string, logger *zap.Logger) string {
	if ex == nil || !target.Family.IsMySQL() {
		return ""
	}
	sql = strings.TrimRight(strings.TrimSpace(sql), ";")
	if sql == "" {
		return ""
	}

	res, err := ex.Explain(ctx, target, ResolveTableBraces(sql, target.Prefix))
	if err != nil {
		if logger != nil {
			logger.Debug("EXPLAIN failed", zap.Error(err))
		}
		return ""
	}
	return ExplainToMarkdown(res)
}

// ExplainToMarkdown renders an EXPLAIN result, or "" when it has no rows.
func ExplainToMarkdown(res *ExplainResult) string {
	if res == nil || len(res.Rows) == 0 || len(res.Columns) == 0 {
		return ""
	}

	header := make([]string, len(res.Columns))
	sep := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		header[i] = markdownCell(c)
		sep[i] = "---"
	}

	out := []string{
		"# EXPLAIN output SQL:",
		"| " + strings.Join(header, " | ") + " |",
		"| " + strings.Join(sep, " | ") + " |",
	}
	for _, row := range res.Rows {
		cells := make([]string, len(res.Columns))
		for i := range res.Columns {
			if i < len(row) {
				cells[i] = explainValue(row[i])
			}
		}
		out = append(out, "| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(out, "\n")
}

func explainValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "1"
		}
		return "0"
	case []byte:
		return markdownCell(string(val))
	case string:
		return markdownCell(val)
	default:
		return markdownCell(fmt.Sprint(val))
	}
}

var markdownCellReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// markdownCell makes a value safe inside a Markdown table cell.
func markdownCell(s string) string {
	s = markdownCellReplacer.Replace(s)
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", "<br>")
	return strings.TrimSpace(s)
}
