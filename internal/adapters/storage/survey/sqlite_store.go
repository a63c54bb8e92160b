package survey

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ellarises/internal/adapters/storage"
	domain "ellarises/internal/domain/survey"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new survey response store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const surveyColumns = `id, occurrence_id, participant_id, score_overall_experience, score_instructor,
	score_venue, score_usefulness, overall_score, comments, submitted_at`

// GetByID retrieves a Response by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Response, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+surveyColumns+" FROM survey_response WHERE id = ?", id)
	return scanResponseRow(row)
}

// GetByPair retrieves the Response for an (occurrence, participant) pair.
// PRE: occurrenceID and participantID are non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByPair(ctx context.Context, occurrenceID, participantID string) (domain.Response, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+surveyColumns+" FROM survey_response WHERE occurrence_id = ? AND participant_id = ?",
		occurrenceID, participantID)
	return scanResponseRow(row)
}

// Create inserts a new Response. A second insert for the same pair returns
// ErrDuplicate — the storage-level backstop behind the write-time
// eligibility recheck.
// PRE: entity has been validated
// POST: Row inserted, or ErrDuplicate on the unique pair constraint
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Response) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO survey_response (id, occurrence_id, participant_id, score_overall_experience,
			score_instructor, score_venue, score_usefulness, overall_score, comments, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.OccurrenceID, entity.ParticipantID,
		entity.Scores.OverallExperience, entity.Scores.Instructor, entity.Scores.Venue, entity.Scores.Usefulness,
		entity.OverallScore, entity.Comments, entity.SubmittedAt.Format(time.RFC3339Nano))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

// Delete removes a Response by ID.
// PRE: id is non-empty
// POST: Row removed if present
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM survey_response WHERE id = ?", id)
	return err
}

// DeleteByOccurrenceID removes all Responses for an occurrence. Used by the
// cascade; idempotent.
// PRE: occurrenceID is non-empty
// POST: Returns the number of deleted rows
func (s *SQLiteStore) DeleteByOccurrenceID(ctx context.Context, occurrenceID string) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM survey_response WHERE occurrence_id = ?", occurrenceID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// ListByOccurrenceID retrieves all responses for an occurrence ordered by
// submission time.
// PRE: occurrenceID is non-empty
// POST: Returns matching responses
func (s *SQLiteStore) ListByOccurrenceID(ctx context.Context, occurrenceID string) ([]domain.Response, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+surveyColumns+" FROM survey_response WHERE occurrence_id = ? ORDER BY submitted_at", occurrenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Response
	for rows.Next() {
		var entity domain.Response
		var submittedAt string
		if err := rows.Scan(&entity.ID, &entity.OccurrenceID, &entity.ParticipantID,
			&entity.Scores.OverallExperience, &entity.Scores.Instructor, &entity.Scores.Venue, &entity.Scores.Usefulness,
			&entity.OverallScore, &entity.Comments, &submittedAt); err != nil {
			return nil, err
		}
		entity.SubmittedAt, err = parseStoredTime(submittedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse submitted_at: %w", err)
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// AverageOverallByOccurrenceID returns the mean overall score and response
// count for an occurrence. Zero responses yields (0, 0, nil).
// PRE: occurrenceID is non-empty
func (s *SQLiteStore) AverageOverallByOccurrenceID(ctx context.Context, occurrenceID string) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT AVG(overall_score), COUNT(*) FROM survey_response WHERE occurrence_id = ?", occurrenceID).
		Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, count, nil
}

func scanResponseRow(row *sql.Row) (domain.Response, error) {
	var entity domain.Response
	var submittedAt string
	err := row.Scan(&entity.ID, &entity.OccurrenceID, &entity.ParticipantID,
		&entity.Scores.OverallExperience, &entity.Scores.Instructor, &entity.Scores.Venue, &entity.Scores.Usefulness,
		&entity.OverallScore, &entity.Comments, &submittedAt)
	if err == sql.ErrNoRows {
		return domain.Response{}, ErrNotFound
	}
	if err != nil {
		return domain.Response{}, err
	}
	entity.SubmittedAt, err = parseStoredTime(submittedAt)
	if err != nil {
		return domain.Response{}, fmt.Errorf("failed to parse submitted_at: %w", err)
	}
	return entity, nil
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
