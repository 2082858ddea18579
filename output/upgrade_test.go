package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alain-L/slowq/store"
)

func TestUpgradeStatus(t *testing.T) {
	assert.Equal(t, "skipped", upgradeStatus(store.EnsureResult{Skipped: true}, true))
	assert.Equal(t, "exists", upgradeStatus(store.EnsureResult{Exists: true}, false))
	assert.Equal(t, "created", upgradeStatus(store.EnsureResult{Created: true}, false))
	assert.Equal(t, "missing", upgradeStatus(store.EnsureResult{}, true))
	assert.Equal(t, "pending", upgradeStatus(store.EnsureResult{}, false))
}

func TestPrintUpgradeDryRun(t *testing.T) {
	results := []store.EnsureResult{
		{
			Step:      store.UpgradeSteps[0],
			Name:      "timemodified",
			Statement: "CREATE INDEX timemodified ON mdl_page (timemodified)",
			Exists:    true,
		},
		{
			Step:      store.IndexStep{Table: "role_assignments", Columns: []string{"contextid", "userid"}},
			Name:      "contextid_userid",
			Statement: "CREATE INDEX contextid_userid ON mdl_role_assignments (contextid, userid)",
		},
	}

	var buf bytes.Buffer
	PrintUpgrade(&buf, results, true)
	out := buf.String()

	assert.Contains(t, out, "contextid, userid")
	assert.Contains(t, out, "exists")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "Statements to run:\n  CREATE INDEX contextid_userid ON mdl_role_assignments (contextid, userid);\n")
	assert.NotContains(t, out, "CREATE INDEX timemodified")
	assert.Contains(t, out, "See MDL-87790 for details: https://moodle.atlassian.net/browse/MDL-87790")
}
