package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Alain-L/slowq/config"
)

const (
	noTablesDetected   = "No tables detected from SQL text."
	noIndexesAvailable = "- (unavailable or none found via metadata)"
)

// FormatIndexesBlock renders existing indexes one per line, preferring the
// column list over the raw definition.
func FormatIndexesBlock(indexes []ExistingIndex) string {
	if len(indexes) == 0 {
		return noIndexesAvailable
	}

	lines := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		tag := "NON-UNIQUE"
		if idx.Unique {
			tag = "UNIQUE"
		}
		switch {
		case len(idx.Columns) > 0:
			lines = append(lines, fmt.Sprintf("- %s (%s): %s", idx.Name, tag, strings.Join(idx.Columns, ", ")))
		case idx.Definition != "":
			lines = append(lines, fmt.Sprintf("- %s (%s): %s", idx.Name, tag, idx.Definition))
		default:
			lines = append(lines, fmt.Sprintf("- %s (%s)", idx.Name, tag))
		}
	}
	return strings.Join(lines, "\n")
}

func formatColumn(c Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  - %s: %s", c.Name, c.Type)
	if c.MaxLength.Valid && c.MaxLength.Int64 > 0 {
		fmt.Fprintf(&b, "(%d)", c.MaxLength.Int64)
	}
	if c.NotNull() {
		b.WriteString(" NOT NULL")
	}
	if c.Default.Valid {
		b.WriteString(" DEFAULT " + c.Default.String)
	}
	return b.String()
}

// BuildSchemaBlock describes the columns, row count and indexes of every table
// in tables (as extracted from SQL text). Tables whose columns cannot be read
// are left out; a failed row count only drops that line.
func BuildSchemaBlock(ctx context.Context, catalog Catalog, target config.Target, tables []string, logger *zap.Logger) string {
	if len(tables) == 0 {
		return noTablesDetected
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var out []string
	for _, raw := range tables {
		table := NormalizeTableName(raw, target.Prefix)

		cols, err := catalog.Columns(ctx, target, table)
		if err != nil {
			logger.Debug("skipping table in schema block", zap.String("table", table), zap.Error(err))
			continue
		}
		if len(cols) == 0 {
			continue
		}

		out = append(out, "## TABLE "+raw)
		if n, err := catalog.RowCount(ctx, target, table); err == nil {
			out = append(out, "Row count: "+humanize.Comma(n))
		} else {
			logger.Debug("row count unavailable", zap.String("table", table), zap.Error(err))
		}

		out = append(out, "### Columns:")
		for _, c := range cols {
			out = append(out, formatColumn(c))
		}

		out = append(out, "### Indexes:")
		indexes, err := catalog.Indexes(ctx, target, table)
		if err != nil {
			logger.Debug("index lookup failed", zap.String("table", table), zap.Error(err))
			indexes = nil
		}
		for _, line := range lineBreaks.Split(FormatIndexesBlock(indexes), -1) {
			out = append(out, "  "+line)
		}
		out = append(out, "")
	}

	if len(out) == 0 {
		return noTablesDetected
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
