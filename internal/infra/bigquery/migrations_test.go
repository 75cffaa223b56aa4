package bigquery

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_second.sql":        {Data: []byte("SELECT 2 FROM `{{PROJECT_ID}}.{{DATASET_ID}}.t`")},
		"0001_first.sql":         {Data: []byte("SELECT 1")},
		"001_bad_version.sql":    {Data: []byte("SELECT 0")},
		"0003_missing_extension": {Data: []byte("SELECT 3")},
		"README.md":              {Data: []byte("docs")},
	}

	got, err := ReadMigrations(fsys, "proj", "ds")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, 2, got[1].Version)
	assert.Equal(t, "SELECT 2 FROM `proj.ds.t`", got[1].SQL)
	assert.Len(t, got[1].Checksum, 64)
}

func TestReadMigrations_ChecksumIgnoresPlaceholders(t *testing.T) {
	fsys := fstest.MapFS{"0001_x.sql": {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.x` (id INT64)")}}

	a, err := ReadMigrations(fsys, "p1", "d1")
	require.NoError(t, err)
	b, err := ReadMigrations(fsys, "p2", "d2")
	require.NoError(t, err)

	assert.Equal(t, a[0].Checksum, b[0].Checksum)
	assert.NotEqual(t, a[0].SQL, b[0].SQL)
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := EmbeddedMigrations("proj", "finance")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 2)

	assert.Equal(t, "create_schema_migrations", got[0].Name)
	assert.Contains(t, got[1].SQL, "`proj.finance.model_outputs`")
	assert.NotContains(t, got[1].SQL, "{{")
}

func TestPendingMigrations(t *testing.T) {
	all := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}

	got := PendingMigrations(all, map[int]bool{1: true, 3: true})

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Version)
	assert.Len(t, PendingMigrations(all, nil), 3)
}
