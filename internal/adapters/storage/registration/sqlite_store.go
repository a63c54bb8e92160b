package registration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ellarises/internal/adapters/storage"
	domain "ellarises/internal/domain/registration"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new registration store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const registrationColumns = "id, occurrence_id, participant_id, status, attended, check_in_time, created_at"

// GetByID retrieves a Registration by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Registration, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+registrationColumns+" FROM registration WHERE id = ?", id)
	return scanRegistrationRow(row)
}

// GetByPair retrieves the Registration for an (occurrence, participant) pair.
// PRE: occurrenceID and participantID are non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByPair(ctx context.Context, occurrenceID, participantID string) (domain.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registration WHERE occurrence_id = ? AND participant_id = ?",
		occurrenceID, participantID)
	return scanRegistrationRow(row)
}

// Create inserts a new Registration. A second insert for the same
// (occurrence, participant) pair returns ErrDuplicate.
// PRE: entity has been validated
// POST: Row inserted, or ErrDuplicate on the unique pair constraint
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Registration) error {
	var checkIn any
	if !entity.CheckInTime.IsZero() {
		checkIn = entity.CheckInTime.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO registration (id, occurrence_id, participant_id, status, attended, check_in_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.OccurrenceID, entity.ParticipantID, entity.Status,
		boolToInt(entity.Attended), checkIn, entity.CreatedAt.Format(time.RFC3339Nano))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

// Update rewrites an existing Registration row.
// PRE: entity exists (matched by id)
// POST: Row updated
func (s *SQLiteStore) Update(ctx context.Context, entity domain.Registration) error {
	var checkIn any
	if !entity.CheckInTime.IsZero() {
		checkIn = entity.CheckInTime.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE registration SET status = ?, attended = ?, check_in_time = ? WHERE id = ?`,
		entity.Status, boolToInt(entity.Attended), checkIn, entity.ID)
	return err
}

// Delete removes a Registration by ID.
// PRE: id is non-empty
// POST: Row removed if present
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM registration WHERE id = ?", id)
	return err
}

// DeleteByPair removes the Registration for an (occurrence, participant)
// pair. Deleting an absent pair is not an error.
// PRE: occurrenceID and participantID are non-empty
// POST: Returns the number of deleted rows (0 or 1)
func (s *SQLiteStore) DeleteByPair(ctx context.Context, occurrenceID, participantID string) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM registration WHERE occurrence_id = ? AND participant_id = ?",
		occurrenceID, participantID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// DeleteByOccurrenceID removes all Registrations for an occurrence. Used by
// the cascade; idempotent.
// PRE: occurrenceID is non-empty
// POST: Returns the number of deleted rows
func (s *SQLiteStore) DeleteByOccurrenceID(ctx context.Context, occurrenceID string) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM registration WHERE occurrence_id = ?", occurrenceID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// ListByOccurrenceID retrieves all registrations for an occurrence ordered
// by creation time.
// PRE: occurrenceID is non-empty
// POST: Returns matching registrations
func (s *SQLiteStore) ListByOccurrenceID(ctx context.Context, occurrenceID string) ([]domain.Registration, error) {
	return s.query(ctx,
		"SELECT "+registrationColumns+" FROM registration WHERE occurrence_id = ? ORDER BY created_at", occurrenceID)
}

// ListByParticipantID retrieves all registrations for a participant ordered
// by creation time descending.
// PRE: participantID is non-empty
// POST: Returns matching registrations
func (s *SQLiteStore) ListByParticipantID(ctx context.Context, participantID string) ([]domain.Registration, error) {
	return s.query(ctx,
		"SELECT "+registrationColumns+" FROM registration WHERE participant_id = ? ORDER BY created_at DESC", participantID)
}

// CountByOccurrenceID returns the number of registrations for an occurrence.
// PRE: occurrenceID is non-empty
// POST: Returns count >= 0
func (s *SQLiteStore) CountByOccurrenceID(ctx context.Context, occurrenceID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registration WHERE occurrence_id = ?", occurrenceID).Scan(&n)
	return n, err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Registration, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Registration
	for rows.Next() {
		var entity domain.Registration
		var attended int
		var checkIn sql.NullString
		var createdAt string
		if err := rows.Scan(&entity.ID, &entity.OccurrenceID, &entity.ParticipantID, &entity.Status, &attended, &checkIn, &createdAt); err != nil {
			return nil, err
		}
		entity, err = hydrate(entity, attended, checkIn, createdAt)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanRegistrationRow(row *sql.Row) (domain.Registration, error) {
	var entity domain.Registration
	var attended int
	var checkIn sql.NullString
	var createdAt string
	err := row.Scan(&entity.ID, &entity.OccurrenceID, &entity.ParticipantID, &entity.Status, &attended, &checkIn, &createdAt)
	if err == sql.ErrNoRows {
		return domain.Registration{}, ErrNotFound
	}
	if err != nil {
		return domain.Registration{}, err
	}
	return hydrate(entity, attended, checkIn, createdAt)
}

func hydrate(entity domain.Registration, attended int, checkIn sql.NullString, createdAt string) (domain.Registration, error) {
	var err error
	entity.Attended = attended != 0
	if checkIn.Valid && checkIn.String != "" {
		entity.CheckInTime, err = parseStoredTime(checkIn.String)
		if err != nil {
			return domain.Registration{}, fmt.Errorf("failed to parse check_in_time: %w", err)
		}
	}
	entity.CreatedAt, err = parseStoredTime(createdAt)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseStoredTime(value string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
