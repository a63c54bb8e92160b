package storage

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// One connection so the in-memory database is shared across queries.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestMigrateDB_Fresh verifies a new database reaches the latest version
// with all tables in place.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("expected version %d, got %d", LatestSchemaVersion(), version)
	}

	for _, table := range []string{"account", "participant", "event", "event_occurrence", "registration", "survey_response", "donation", "milestone"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}

// TestMigrateDB_Idempotent verifies running twice is safe.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("first MigrateDB: %v", err)
	}
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("second MigrateDB: %v", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("expected version %d after rerun, got %d", LatestSchemaVersion(), version)
	}
}
