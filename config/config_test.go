package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSlowEnabled(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"absent", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"positive int", 3, true},
		{"zero", 0, false},
		{"float", 0.5, true},
		{"string true", " TRUE ", true},
		{"numeric string", "2", true},
		{"zero string", "0", false},
		{"garbage", "yes", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DBOptions{LogSlow: tt.value}.LogSlowEnabled())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slowq.yaml")
	content := `
driver: mysql
dsn: "user:pass@tcp(localhost:3306)/moodle"
prefix: "m_"
dboptions:
  logslow: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Driver)
	assert.Equal(t, Target{Family: FamilyMySQL, Prefix: "m_"}, cfg.Target())
	assert.True(t, cfg.DBOptions.LogSlowEnabled())
	assert.Equal(t, "3", cfg.DBOptions.LogSlowValue())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPrefix, cfg.TablePrefix())
	assert.Equal(t, FamilyUnknown, cfg.ResolveFamily())
	assert.False(t, cfg.DBOptions.LogSlowEnabled())
}

func TestResolveFamily(t *testing.T) {
	assert.Equal(t, FamilyPostgres, (&Config{Driver: "pgx"}).ResolveFamily())
	assert.Equal(t, FamilyMariaDB, (&Config{Driver: "mysql", Family: "MariaDB"}).ResolveFamily())
	assert.Equal(t, FamilyUnknown, (&Config{Driver: "sqlite"}).ResolveFamily())
	assert.True(t, FamilyMariaDB.IsMySQL())
	assert.False(t, FamilyPostgres.IsMySQL())
}
