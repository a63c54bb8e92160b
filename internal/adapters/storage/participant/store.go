package participant

import (
	"context"
	"errors"

	domain "ellarises/internal/domain/participant"
)

// ErrNotFound is returned when no participant matches the lookup.
var ErrNotFound = errors.New("participant not found")

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// Store persists Participant state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Participant, error)
	GetByEmail(ctx context.Context, email string) (domain.Participant, error)
	GetByAccountID(ctx context.Context, accountID string) (domain.Participant, error)
	Save(ctx context.Context, value domain.Participant) error
	// Delete removes the row without cascading; the caller is expected to
	// surface a foreign key rejection when dependent records exist.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Participant, error)
}
