// Package dbtest opens migrated in-memory databases for repository and
// service tests.
package dbtest

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"novelhub/pkg/database"
)

// Open returns a fresh in-memory database with the full schema applied.
// A single connection keeps every query on the same in-memory instance.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`PRAGMA foreign_keys = ON;`)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { _ = db.Close() })
	return db
}
