package database

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_SortsAndPairs(t *testing.T) {
	fsys := fstest.MapFS{
		"0000000002_add_index.up.sql":   {Data: []byte("CREATE INDEX x ON t(a);")},
		"0000000002_add_index.down.sql": {Data: []byte("DROP INDEX x;")},
		"0000000001_init.up.sql":        {Data: []byte("CREATE TABLE t (a INT);")},
		"0000000001_init.down.sql":      {Data: []byte("DROP TABLE t;")},
		"README.md":                     {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "init", migrations[0].Description)
	assert.Equal(t, "CREATE TABLE t (a INT);", migrations[0].Up)
	assert.Equal(t, "DROP TABLE t;", migrations[0].Down)
	assert.Equal(t, 2, migrations[1].Version)
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"0000000001_init.up.sql": {Data: []byte("CREATE TABLE t (a INT);")},
	}

	_, err := LoadMigrations(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")
}

func TestEmbeddedMigrationsAreComplete(t *testing.T) {
	sub, err := fs.Sub(migrationFS, "migrations")
	require.NoError(t, err)

	migrations, err := LoadMigrations(sub)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Contains(t, migrations[0].Up, "CREATE TABLE attendance")
	assert.Contains(t, migrations[0].Up, "UNIQUE (employee_id, date)")
}
