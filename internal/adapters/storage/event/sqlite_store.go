package event

import (
	"context"
	"database/sql"

	"ellarises/internal/adapters/storage"
	domain "ellarises/internal/domain/event"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const eventColumns = "id, name, event_type, recurrence, default_capacity, description"

// GetByID retrieves an Event by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	var entity domain.Event
	err := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM event WHERE id = ?", id).Scan(
		&entity.ID, &entity.Name, &entity.EventType, &entity.Recurrence, &entity.DefaultCapacity, &entity.Description)
	if err == sql.ErrNoRows {
		return domain.Event{}, ErrNotFound
	}
	return entity, err
}

// Save persists an Event to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event (id, name, event_type, recurrence, default_capacity, description)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			event_type=excluded.event_type,
			recurrence=excluded.recurrence,
			default_capacity=excluded.default_capacity,
			description=excluded.description`,
		entity.ID, entity.Name, entity.EventType, entity.Recurrence, entity.DefaultCapacity, entity.Description)
	return err
}

// Delete removes an Event from the database. Occurrences must already be
// gone; the cascade orchestrator is responsible for that ordering.
// PRE: id is non-empty
// POST: Row removed, or the FK rejection is returned unchanged
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM event WHERE id = ?", id)
	return err
}

// List retrieves all events ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+eventColumns+" FROM event ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		var entity domain.Event
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.EventType, &entity.Recurrence, &entity.DefaultCapacity, &entity.Description); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
