package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/config"
)

const trackerURL = "https://moodle.atlassian.net/browse/"

// IndexStep is one index the upgrade command makes sure exists.
type IndexStep struct {
	Table   string
	Columns []string

	// Tracker is the host issue key explaining the step, if any.
	Tracker string
	Note    string
}

// TrackerLink renders the step's issue reference, "" without one.
func (s IndexStep) TrackerLink() string {
	if s.Tracker == "" {
		return ""
	}
	return fmt.Sprintf("%s. See %s for details: %s%s", s.Note, s.Tracker, trackerURL, s.Tracker)
}

// UpgradeSteps are the indexes known to fix slow host queries.
var UpgradeSteps = []IndexStep{
	{Table: "page", Columns: []string{"timemodified"},
		Tracker: "MDL-87790", Note: "Global Search indexing very slow"},
	{Table: "course_completions", Columns: []string{"reaggregate", "timecompleted", "course", "userid"},
		Tracker: "MDL-87788", Note: "Optimize completion aggregation query"},
	{Table: "logstore_standard_log", Columns: []string{"anonymous", "userid"},
		Tracker: "MDL-87650", Note: "Forum report took Moodle down"},
	{Table: "role_assignments", Columns: []string{"contextid", "userid"},
		Tracker: "MDL-87652", Note: "Extremely slow queries"},
	{Table: "grade_grades", Columns: []string{"itemid", "userid", "finalgrade"}},
	{Table: "grade_items", Columns: []string{"courseid", "itemtype"}},
	{Table: "grade_items", Columns: []string{"courseid", "timemodified"}},
	{Table: "course_completion_criteria", Columns: []string{"criteriatype", "course"}},
	{Table: "course_completion_crit_compl", Columns: []string{"criteriaid", "userid"}},
}

// EnsureResult reports what EnsureIndex did for one step.
type EnsureResult struct {
	Step      IndexStep
	Name      string
	Statement string
	Exists    bool // an index with the same columns is already there
	Created   bool
	Skipped   bool // the family has no catalog support
}

// hasIndex reports whether an index with exactly these columns, or this
// name, already exists.
func hasIndex(existing []analysis.ExistingIndex, name string, cols []string) bool {
	for _, idx := range existing {
		if strings.EqualFold(idx.Name, name) {
			return true
		}
		if len(idx.Columns) != len(cols) {
			continue
		}
		same := true
		for i := range cols {
			if !strings.EqualFold(idx.Columns[i], cols[i]) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// EnsureIndex creates the step's index unless an equivalent one exists.
// With dryRun the statement is only returned.
func (d *DB) EnsureIndex(ctx context.Context, target config.Target, step IndexStep, dryRun bool) (EnsureResult, error) {
	res := EnsureResult{Step: step}

	if target.Family != config.FamilyPostgres && !target.Family.IsMySQL() {
		res.Skipped = true
		return res, nil
	}

	name, err := analysis.MakeIndexName(target.Family, step.Columns)
	if err != nil {
		return res, err
	}
	res.Name = name
	res.Statement = fmt.Sprintf("CREATE INDEX %s ON %s (%s)", name, target.Table(step.Table), strings.Join(step.Columns, ", "))

	existing, err := d.Indexes(ctx, target, step.Table)
	if err != nil {
		return res, errors.Wrapf(err, "checking indexes of %s", step.Table)
	}
	if hasIndex(existing, name, step.Columns) {
		res.Exists = true
		return res, nil
	}
	if dryRun {
		return res, nil
	}

	if err := checkIdent(target.Table(step.Table)); err != nil {
		return res, err
	}
	if _, err := d.db.ExecContext(ctx, res.Statement); err != nil {
		return res, errors.Wrapf(err, "creating index %s", name)
	}
	res.Created = true
	d.logger.Info("created index", zap.String("table", step.Table), zap.String("index", name))
	return res, nil
}

// Upgrade runs every step, continuing past failures. The returned error
// combines all step errors.
func (d *DB) Upgrade(ctx context.Context, target config.Target, steps []IndexStep, dryRun bool) ([]EnsureResult, error) {
	var (
		results []EnsureResult
		errs    error
	)
	for _, step := range steps {
		res, err := d.EnsureIndex(ctx, target, step, dryRun)
		if err != nil {
			d.logger.Warn("upgrade step failed", zap.String("table", step.Table), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errs
}
