package milestone

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ellarises/internal/adapters/storage"
	domain "ellarises/internal/domain/milestone"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new milestone store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const milestoneColumns = "id, participant_id, title, notes, awarded_at"

// GetByID retrieves a Milestone by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Milestone, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+milestoneColumns+" FROM milestone WHERE id = ?", id)
	var entity domain.Milestone
	var awardedAt string
	err := row.Scan(&entity.ID, &entity.ParticipantID, &entity.Title, &entity.Notes, &awardedAt)
	if err == sql.ErrNoRows {
		return domain.Milestone{}, ErrNotFound
	}
	if err != nil {
		return domain.Milestone{}, err
	}
	entity.AwardedAt, err = parseStoredTime(awardedAt)
	if err != nil {
		return domain.Milestone{}, fmt.Errorf("failed to parse awarded_at: %w", err)
	}
	return entity, nil
}

// Save persists a Milestone to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Milestone) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO milestone (id, participant_id, title, notes, awarded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			notes=excluded.notes,
			awarded_at=excluded.awarded_at`,
		entity.ID, entity.ParticipantID, entity.Title, entity.Notes, entity.AwardedAt.Format(time.RFC3339Nano))
	return err
}

// Delete removes a Milestone from the database.
// PRE: id is non-empty
// POST: Row removed if present
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM milestone WHERE id = ?", id)
	return err
}

// ListByParticipantID retrieves all milestones awarded to a participant,
// ordered by award date descending.
// PRE: participantID is non-empty
// POST: Returns matching milestones
func (s *SQLiteStore) ListByParticipantID(ctx context.Context, participantID string) ([]domain.Milestone, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+milestoneColumns+" FROM milestone WHERE participant_id = ? ORDER BY awarded_at DESC", participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Milestone
	for rows.Next() {
		var entity domain.Milestone
		var awardedAt string
		if err := rows.Scan(&entity.ID, &entity.ParticipantID, &entity.Title, &entity.Notes, &awardedAt); err != nil {
			return nil, err
		}
		entity.AwardedAt, err = parseStoredTime(awardedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse awarded_at: %w", err)
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// DistinctTitles returns the distinct milestone titles in use, for the
// award form's suggestion list.
func (s *SQLiteStore) DistinctTitles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT title FROM milestone ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func parseStoredTime(value string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
