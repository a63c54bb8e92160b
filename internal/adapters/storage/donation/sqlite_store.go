package donation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ellarises/internal/adapters/storage"
	domain "ellarises/internal/domain/donation"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new donation store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const donationColumns = "id, participant_id, amount_cents, donated_at, created_at"

// GetByID retrieves a Donation by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Donation, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+donationColumns+" FROM donation WHERE id = ?", id)
	var entity domain.Donation
	var donatedAt, createdAt string
	err := row.Scan(&entity.ID, &entity.ParticipantID, &entity.AmountCents, &donatedAt, &createdAt)
	if err == sql.ErrNoRows {
		return domain.Donation{}, ErrNotFound
	}
	if err != nil {
		return domain.Donation{}, err
	}
	return hydrate(entity, donatedAt, createdAt)
}

// Save persists a Donation to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Donation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO donation (id, participant_id, amount_cents, donated_at, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			participant_id=excluded.participant_id,
			amount_cents=excluded.amount_cents,
			donated_at=excluded.donated_at`,
		entity.ID, entity.ParticipantID, entity.AmountCents,
		entity.DonatedAt.Format(time.RFC3339Nano), entity.CreatedAt.Format(time.RFC3339Nano))
	return err
}

// Delete removes a Donation from the database.
// PRE: id is non-empty
// POST: Row removed if present
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM donation WHERE id = ?", id)
	return err
}

// ListByParticipantID retrieves all donations for a participant ordered by
// donation date descending.
// PRE: participantID is non-empty
// POST: Returns matching donations
func (s *SQLiteStore) ListByParticipantID(ctx context.Context, participantID string) ([]domain.Donation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+donationColumns+" FROM donation WHERE participant_id = ? ORDER BY donated_at DESC", participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Donation
	for rows.Next() {
		var entity domain.Donation
		var donatedAt, createdAt string
		if err := rows.Scan(&entity.ID, &entity.ParticipantID, &entity.AmountCents, &donatedAt, &createdAt); err != nil {
			return nil, err
		}
		entity, err = hydrate(entity, donatedAt, createdAt)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// SumCentsByParticipantID returns the participant's lifetime giving total.
// PRE: participantID is non-empty
// POST: Returns total cents (>=0)
func (s *SQLiteStore) SumCentsByParticipantID(ctx context.Context, participantID string) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT SUM(amount_cents) FROM donation WHERE participant_id = ?", participantID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func hydrate(entity domain.Donation, donatedAt, createdAt string) (domain.Donation, error) {
	var err error
	entity.DonatedAt, err = parseStoredTime(donatedAt)
	if err != nil {
		return domain.Donation{}, fmt.Errorf("failed to parse donated_at: %w", err)
	}
	entity.CreatedAt, err = parseStoredTime(createdAt)
	if err != nil {
		return domain.Donation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
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
