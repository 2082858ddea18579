package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNow(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	got, err := parseNow("2026-03-10 12:30:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 30, 0, 0, loc), got)

	_, err = parseNow("10/03/2026", loc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), DateTimeFormat)

	got, err = parseNow("", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.WithinDuration(t, time.Now(), got, time.Minute)
}

func TestLoadLocation(t *testing.T) {
	for _, name := range []string{"", "Local", "local"} {
		loc, err := loadLocation(name)
		require.NoError(t, err)
		assert.Equal(t, time.Local, loc)
	}

	loc, err := loadLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = loadLocation("Mars/Olympus_Mons")
	require.Error(t, err)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"42", " 7 ", "42", "3"})
	require.NoError(t, err)
	assert.Equal(t, []int64{42, 7, 3}, ids)

	for _, bad := range []string{"abc", "0", "-4", "1.5", ""} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}
