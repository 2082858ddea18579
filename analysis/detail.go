package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Alain-L/slowq/config"
	"github.com/Alain-L/slowq/parser"
)

// DetailInput carries everything the detail report is computed from.
type DetailInput struct {
	Entry    parser.LogEntry
	AvgTime  float64 // average execution time of the entry's SQL text
	Comments string

	Target   config.Target
	Language string
	Location *time.Location
	Now      time.Time

	// Executions of the same SQL text within TimelinePeriod.
	Executions []Execution

	Catalog   Catalog
	Explainer Explainer // nil skips EXPLAIN
}

// Detail is the assembled diagnostic report of one log entry.
type Detail struct {
	ID          int64          `json:"id"`
	QueryID     string         `json:"query_id"`
	QueryType   string         `json:"query_type"`
	TimeLogged  time.Time      `json:"timelogged"`
	ExecTime    float64        `json:"exectime"`
	AvgTime     float64        `json:"avgtime"`
	Comments    string         `json:"comments"`
	IsCron      bool           `json:"iscron"`
	SQLText     string         `json:"sqltext"`
	Params      []parser.Param `json:"params"`
	ParamsBlock string         `json:"paramsblock"`
	ExpandedSQL string         `json:"expandedsql"`
	Backtrace   string         `json:"backtrace"`
	Origin      string         `json:"origin"`
	Tables      []string       `json:"tables"`
	SchemaBlock string         `json:"schemablock"`
	Suggestions []Suggestion   `json:"suggestions"`
	Explain     string         `json:"explain,omitempty"`
	Timeline    Timeline       `json:"timeline"`
	Prompt      string         `json:"prompt"`
}

// BuildDetail computes the report. Every section degrades on its own; only a
// missing entry, handled by the caller, is fatal.
func BuildDetail(ctx context.Context, in DetailInput, logger *zap.Logger) *Detail {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	e := in.Entry
	params := parser.ParseParams(e.SQLParams.String)
	if e.SQLParams.Valid && strings.TrimSpace(e.SQLParams.String) != "" && len(params) == 0 {
		logger.Debug("parameters not understood", zap.Int64("id", e.ID))
	}
	expanded := parser.ExpandSQL(e.SQLText, params)
	queryID := QueryID(e.SQLText)

	d := &Detail{
		ID:          e.ID,
		QueryID:     queryID,
		QueryType:   QueryTypeFromID(queryID),
		TimeLogged:  e.LoggedAt(loc),
		ExecTime:    e.ExecTime,
		AvgTime:     in.AvgTime,
		Comments:    in.Comments,
		IsCron:      parser.IsCron(e.Backtrace.String),
		SQLText:     e.SQLText,
		Params:      params,
		ParamsBlock: parser.FormatParamsBlock(params),
		ExpandedSQL: expanded,
		Backtrace:   e.Backtrace.String,
		Origin:      parser.OriginLine(e.Backtrace.String),
		Tables:      ExtractTables(e.SQLText),
		Timeline:    BuildTimeline(now, loc, in.Executions),
	}

	if in.Catalog != nil {
		d.SchemaBlock = BuildSchemaBlock(ctx, in.Catalog, in.Target, d.Tables, logger)
		d.Suggestions = NewAdvisor(in.Catalog, logger).Suggest(ctx, in.Target, e.SQLText)
	} else {
		d.SchemaBlock = noTablesDetected
		if len(d.Tables) > 0 {
			d.SchemaBlock = "-"
		}
	}
	d.Explain = ExplainMarkdown(ctx, in.Explainer, in.Target, expanded, logger)
	d.Prompt = BuildPrompt(d, in.Target.Family, in.Language)
	return d
}

// BuildPrompt writes the natural-language request handed to an external
// assistant together with the report.
func BuildPrompt(d *Detail, family config.Family, language string) string {
	fam := string(family)
	if fam == "" {
		fam = "unknown"
	}
	if language == "" {
		language = "en"
	}

	prompt := []string{
		fmt.Sprintf("The SQL query below is very slow (~%.2fs). ", d.AvgTime),
		fmt.Sprintf("Analyze the execution plan and propose realistic index optimizations for Moodle (%s), "+
			"explaining the expected impact and possible trade-offs.\n", fam),
		"# SQL:\n```SQL\n" + d.ExpandedSQL + "\n```\n",
		"# Tables involved (metadata):\n" + d.SchemaBlock + "\n",
	}
	if d.Explain != "" {
		prompt = append(prompt, "# EXPLAIN Statement:\n"+d.Explain+"\n")
	}
	prompt = append(prompt,
		"# Backtrace origin:\n"+d.Backtrace,
		"# Return the explanation in "+language,
	)
	return strings.Join(prompt, "\n")
}
