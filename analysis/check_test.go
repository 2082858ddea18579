package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alain-L/slowq/config"
)

func countsFrom(m map[int]int64) func(int) int64 {
	return func(sec int) int64 { return m[sec] }
}

func TestEvaluateCheckDisabled(t *testing.T) {
	res := EvaluateCheck(config.DBOptions{LogSlow: false}, countsFrom(map[int]int64{5: 10}))
	assert.Equal(t, CheckCritical, res.Status)
	assert.Equal(t, "false", res.CurrentValue)
	assert.Equal(t, config.LogSlowSnippet, res.Snippet)
	assert.Equal(t, 2, res.Status.ExitCode())

	res = EvaluateCheck(config.DBOptions{}, countsFrom(nil))
	assert.Equal(t, CheckCritical, res.Status)
	assert.Empty(t, res.CurrentValue)
}

func TestEvaluateCheckOK(t *testing.T) {
	res := EvaluateCheck(config.DBOptions{LogSlow: 3}, countsFrom(nil))
	assert.Equal(t, CheckOK, res.Status)
	assert.Equal(t, "No slow queries found", res.Summary)
	assert.Empty(t, res.Details)
	assert.Equal(t, 0, res.Status.ExitCode())
}

func TestEvaluateCheckError(t *testing.T) {
	res := EvaluateCheck(config.DBOptions{LogSlow: "true"}, countsFrom(map[int]int64{5: 12, 20: 4, 60: 1}))
	assert.Equal(t, CheckError, res.Status)
	assert.Equal(t, "Found 12 queries taking more than 5 seconds", res.Summary)
	assert.Equal(t, []string{
		"12 queries took more than 5 seconds. Review them with: slowq list --minexec 5",
		"4 of them took more than 20 seconds: slowq list --minexec 20",
		"1 of them took more than 60 seconds: slowq list --minexec 60",
	}, res.Details)
	assert.Equal(t, 1, res.Status.ExitCode())

	res = EvaluateCheck(config.DBOptions{LogSlow: true}, countsFrom(map[int]int64{5: 1}))
	assert.Equal(t, "Found 1 query taking more than 5 seconds", res.Summary)
}
