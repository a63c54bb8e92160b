package participant

import (
	"context"
	"database/sql"

	"ellarises/internal/adapters/storage"
	domain "ellarises/internal/domain/participant"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new participant store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const participantColumns = "id, account_id, first_name, last_name, email, phone, city, status"

// GetByID retrieves a Participant by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Participant, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+participantColumns+" FROM participant WHERE id = ?", id)
	return scanParticipant(row)
}

// GetByEmail retrieves a Participant by email.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Participant, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+participantColumns+" FROM participant WHERE email = ?", email)
	return scanParticipant(row)
}

// GetByAccountID retrieves the Participant owned by a login account.
// PRE: accountID is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Participant, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+participantColumns+" FROM participant WHERE account_id = ?", accountID)
	return scanParticipant(row)
}

// Save persists a Participant to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Participant) error {
	var accountID, phone, city any
	if entity.AccountID != "" {
		accountID = entity.AccountID
	}
	if entity.Phone != "" {
		phone = entity.Phone
	}
	if entity.City != "" {
		city = entity.City
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participant (id, account_id, first_name, last_name, email, phone, city, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			account_id=excluded.account_id,
			first_name=excluded.first_name,
			last_name=excluded.last_name,
			email=excluded.email,
			phone=excluded.phone,
			city=excluded.city,
			status=excluded.status`,
		entity.ID, accountID, entity.FirstName, entity.LastName, entity.Email, phone, city, entity.Status)
	return err
}

// Delete removes a Participant from the database. Foreign key enforcement is
// left ON so the delete fails while registrations, donations, milestones, or
// survey responses still reference the row.
// PRE: id is non-empty
// POST: Row removed, or the FK rejection is returned unchanged
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM participant WHERE id = ?", id)
	return err
}

// List retrieves participants matching the filter, ordered by last name.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Participant, error) {
	query := "SELECT " + participantColumns + " FROM participant"
	var args []any
	var where []string
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where = append(where, "(first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)")
		like := "%" + filter.Search + "%"
		args = append(args, like, like, like)
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY last_name, first_name"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Participant
	for rows.Next() {
		entity, err := scanParticipantRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanParticipant(row *sql.Row) (domain.Participant, error) {
	var entity domain.Participant
	var accountID, phone, city sql.NullString
	err := row.Scan(&entity.ID, &accountID, &entity.FirstName, &entity.LastName, &entity.Email, &phone, &city, &entity.Status)
	if err == sql.ErrNoRows {
		return domain.Participant{}, ErrNotFound
	}
	if err != nil {
		return domain.Participant{}, err
	}
	entity.AccountID = accountID.String
	entity.Phone = phone.String
	entity.City = city.String
	return entity, nil
}

func scanParticipantRow(rows *sql.Rows) (domain.Participant, error) {
	var entity domain.Participant
	var accountID, phone, city sql.NullString
	err := rows.Scan(&entity.ID, &accountID, &entity.FirstName, &entity.LastName, &entity.Email, &phone, &city, &entity.Status)
	if err != nil {
		return domain.Participant{}, err
	}
	entity.AccountID = accountID.String
	entity.Phone = phone.String
	entity.City = city.String
	return entity, nil
}
