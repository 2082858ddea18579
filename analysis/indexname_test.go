package analysis

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alain-L/slowq/config"
)

func TestMakeIndexNameFits(t *testing.T) {
	name, err := MakeIndexName(config.FamilyPostgres, []string{"reaggregate", "timecompleted", "course", "userid"})
	require.NoError(t, err)
	assert.Equal(t, "reaggregate_timecompleted_course_userid", name)
}

func TestMakeIndexNameShrinksEveryColumn(t *testing.T) {
	// 39 bytes against an Oracle bound of 30: three rounds, one byte per column each.
	name, err := MakeIndexName(config.FamilyOracle, []string{"reaggregate", "timecompleted", "course", "userid"})
	require.NoError(t, err)
	assert.Equal(t, "reaggreg_timecomple_cou_use", name)
	assert.LessOrEqual(t, len(name), 30)
}

func TestMakeIndexNameHashFallback(t *testing.T) {
	cols := make([]string, 40)
	for i := range cols {
		cols[i] = "c"
	}
	name, err := MakeIndexName(config.FamilyMySQL, cols)
	require.NoError(t, err)
	assert.Len(t, name, 64)

	sum := sha1.Sum([]byte(strings.Join(cols, "_")))
	assert.True(t, strings.HasSuffix(name, "_"+hex.EncodeToString(sum[:])[:6]), name)
}

func TestMakeIndexNameBounds(t *testing.T) {
	long := []string{strings.Repeat("a", 50), strings.Repeat("b", 50), strings.Repeat("c", 50)}
	for family, bound := range map[config.Family]int{
		config.FamilyPostgres: 63,
		config.FamilyMySQL:    64,
		config.FamilyMariaDB:  64,
		config.FamilyOracle:   30,
		config.FamilyUnknown:  30,
	} {
		name, err := MakeIndexName(family, long)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(name), bound, "family %q", family)
	}
}

func TestMakeIndexNameRejectsMSSQL(t *testing.T) {
	_, err := MakeIndexName(config.FamilyMSSQL, []string{"a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))
}
