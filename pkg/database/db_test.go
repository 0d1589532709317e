package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "postgres", DriverFor("postgres://u:p@localhost/db"))
	assert.Equal(t, "postgres", DriverFor("postgresql://localhost/db"))
	assert.Equal(t, "sqlite3", DriverFor("/tmp/healthdash.db"))
}

func TestConnectSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.db")
	db, err := Connect(Config{DSN: path})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, "sqlite3", db.DriverName())
	assert.FileExists(t, path)
}
