package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/mobiledna-go/internal/logging"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "store", "test.db")}, logging.Nop())
	require.NoError(t, err)
	defer db.Close()

	m := NewMigrationManager(db, logging.Nop())
	require.NoError(t, m.RunMigrations())
	require.NoError(t, m.RunMigrations())

	applied, err := m.GetAppliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, applied)

	for _, table := range []string{"analysis_tasks", "feature_runs", "features", "app_meta"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestLoadMigrationsOrdersAndSkipsBadNames(t *testing.T) {
	db, err := Open(Config{Path: MemoryPath}, logging.Nop())
	require.NoError(t, err)
	defer db.Close()

	files := fstest.MapFS{
		"010_second.sql": {Data: []byte("CREATE TABLE b (x INTEGER);")},
		"002_first.sql":  {Data: []byte("CREATE TABLE a (x INTEGER);")},
		"notes.sql":      {Data: []byte("-- not a migration")},
		"README.md":      {Data: []byte("ignored")},
	}
	m := NewMigrationManagerFS(db, files, logging.Nop())
	migrations, err := m.LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 2, migrations[0].Version)
	assert.Equal(t, "010_second", migrations[1].Name)
}

func TestTransactionRollsBack(t *testing.T) {
	db, err := Open(Config{Path: MemoryPath}, logging.Nop())
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("CREATE TABLE t (x INTEGER)")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = Transaction(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO t (x) VALUES (1)"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, Transaction(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t (x) VALUES (2)")
		return err
	}))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 1, n)
}
