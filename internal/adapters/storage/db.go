package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the subset of *sql.DB the stores depend on.
type SQLDB interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// migrations are applied in order; each entry bumps the schema version by one.
// Never edit an applied migration — append a new one.
var migrations = []string{
	// v1: initial schema
	`
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		participant_id TEXT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS participant (
		id TEXT PRIMARY KEY,
		account_id TEXT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		city TEXT,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS event (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		event_type TEXT NOT NULL,
		recurrence TEXT NOT NULL DEFAULT 'none',
		default_capacity INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS event_occurrence (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		starts_at TEXT NOT NULL,
		ends_at TEXT,
		location TEXT,
		capacity INTEGER NOT NULL DEFAULT 0,
		registration_deadline TEXT,
		FOREIGN KEY (event_id) REFERENCES event(id)
	);

	CREATE TABLE IF NOT EXISTS registration (
		id TEXT PRIMARY KEY,
		occurrence_id TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'registered',
		attended INTEGER NOT NULL DEFAULT 0,
		check_in_time TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (occurrence_id) REFERENCES event_occurrence(id),
		FOREIGN KEY (participant_id) REFERENCES participant(id),
		UNIQUE (occurrence_id, participant_id)
	);

	CREATE TABLE IF NOT EXISTS survey_response (
		id TEXT PRIMARY KEY,
		occurrence_id TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		score_overall_experience INTEGER NOT NULL,
		score_instructor INTEGER NOT NULL,
		score_venue INTEGER NOT NULL,
		score_usefulness INTEGER NOT NULL,
		overall_score REAL NOT NULL,
		comments TEXT NOT NULL DEFAULT '',
		submitted_at TEXT NOT NULL,
		FOREIGN KEY (occurrence_id) REFERENCES event_occurrence(id),
		FOREIGN KEY (participant_id) REFERENCES participant(id),
		UNIQUE (occurrence_id, participant_id)
	);

	CREATE TABLE IF NOT EXISTS donation (
		id TEXT PRIMARY KEY,
		participant_id TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		donated_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (participant_id) REFERENCES participant(id)
	);

	CREATE TABLE IF NOT EXISTS milestone (
		id TEXT PRIMARY KEY,
		participant_id TEXT NOT NULL,
		title TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		awarded_at TEXT NOT NULL,
		FOREIGN KEY (participant_id) REFERENCES participant(id)
	);
	`,
	// v2: indexes for the hot lookups (eligibility checks and cascades)
	`
	CREATE INDEX IF NOT EXISTS idx_registration_occurrence ON registration(occurrence_id);
	CREATE INDEX IF NOT EXISTS idx_registration_participant ON registration(participant_id);
	CREATE INDEX IF NOT EXISTS idx_survey_occurrence ON survey_response(occurrence_id);
	CREATE INDEX IF NOT EXISTS idx_occurrence_event ON event_occurrence(event_id);
	CREATE INDEX IF NOT EXISTS idx_donation_participant ON donation(participant_id);
	`,
}

// LatestSchemaVersion returns the version the database is migrated to.
func LatestSchemaVersion() int {
	return len(migrations)
}

// MigrateDB brings the database schema up to the latest version. Safe to run
// on every startup; already-applied migrations are skipped.
// PRE: db is a valid connection; dbPath identifies the database (logging only)
// POST: schema_version equals LatestSchemaVersion()
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed for %s: %w", i+1, dbPath, err)
		}
		if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to clear schema_version: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record schema version %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}

	return nil
}

// SchemaVersion returns the currently applied schema version (0 for a fresh
// database).
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
