// internal/download/testutil_test.go
package download

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/vmunix/vidstash/internal/migrations"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Apply(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
