package occurrence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ellarises/internal/adapters/storage"
	domain "ellarises/internal/domain/occurrence"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new occurrence store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const occurrenceColumns = "id, event_id, starts_at, ends_at, location, capacity, registration_deadline"

// GetByID retrieves an Occurrence by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Occurrence, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+occurrenceColumns+" FROM event_occurrence WHERE id = ?", id)
	var entity domain.Occurrence
	var startsAt string
	var endsAt, location, deadline sql.NullString
	err := row.Scan(&entity.ID, &entity.EventID, &startsAt, &endsAt, &location, &entity.Capacity, &deadline)
	if err == sql.ErrNoRows {
		return domain.Occurrence{}, ErrNotFound
	}
	if err != nil {
		return domain.Occurrence{}, err
	}
	return hydrate(entity, startsAt, endsAt, location, deadline)
}

// Save persists an Occurrence to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Occurrence) error {
	var endsAt, location, deadline any
	if !entity.EndsAt.IsZero() {
		endsAt = entity.EndsAt.Format(time.RFC3339Nano)
	}
	if entity.Location != "" {
		location = entity.Location
	}
	if !entity.RegistrationDeadline.IsZero() {
		deadline = entity.RegistrationDeadline.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_occurrence (id, event_id, starts_at, ends_at, location, capacity, registration_deadline)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			event_id=excluded.event_id,
			starts_at=excluded.starts_at,
			ends_at=excluded.ends_at,
			location=excluded.location,
			capacity=excluded.capacity,
			registration_deadline=excluded.registration_deadline`,
		entity.ID, entity.EventID, entity.StartsAt.Format(time.RFC3339Nano), endsAt, location, entity.Capacity, deadline)
	return err
}

// Delete removes an Occurrence from the database. Registrations and survey
// responses must already be gone; the cascade orchestrator owns that order.
// PRE: id is non-empty
// POST: Row removed, or the FK rejection is returned unchanged
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM event_occurrence WHERE id = ?", id)
	return err
}

// List retrieves all occurrences ordered by start time.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Occurrence, error) {
	return s.query(ctx, "SELECT "+occurrenceColumns+" FROM event_occurrence ORDER BY starts_at")
}

// ListByEventID retrieves all occurrences of an event ordered by start time.
// PRE: eventID is non-empty
// POST: Returns occurrences for the given event
func (s *SQLiteStore) ListByEventID(ctx context.Context, eventID string) ([]domain.Occurrence, error) {
	return s.query(ctx, "SELECT "+occurrenceColumns+" FROM event_occurrence WHERE event_id = ? ORDER BY starts_at", eventID)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Occurrence, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Occurrence
	for rows.Next() {
		var entity domain.Occurrence
		var startsAt string
		var endsAt, location, deadline sql.NullString
		if err := rows.Scan(&entity.ID, &entity.EventID, &startsAt, &endsAt, &location, &entity.Capacity, &deadline); err != nil {
			return nil, err
		}
		entity, err = hydrate(entity, startsAt, endsAt, location, deadline)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func hydrate(entity domain.Occurrence, startsAt string, endsAt, location, deadline sql.NullString) (domain.Occurrence, error) {
	var err error
	entity.StartsAt, err = parseStoredTime(startsAt)
	if err != nil {
		return domain.Occurrence{}, fmt.Errorf("failed to parse starts_at: %w", err)
	}
	if endsAt.Valid && endsAt.String != "" {
		entity.EndsAt, err = parseStoredTime(endsAt.String)
		if err != nil {
			return domain.Occurrence{}, fmt.Errorf("failed to parse ends_at: %w", err)
		}
	}
	entity.Location = location.String
	if deadline.Valid && deadline.String != "" {
		entity.RegistrationDeadline, err = parseStoredTime(deadline.String)
		if err != nil {
			return domain.Occurrence{}, fmt.Errorf("failed to parse registration_deadline: %w", err)
		}
	}
	return entity, nil
}

func parseStoredTime(value string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
