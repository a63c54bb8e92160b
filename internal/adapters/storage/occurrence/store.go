package occurrence

import (
	"context"
	"errors"

	domain "ellarises/internal/domain/occurrence"
)

// ErrNotFound is returned when no occurrence matches the lookup.
var ErrNotFound = errors.New("occurrence not found")

// Store persists Occurrence state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Occurrence, error)
	Save(ctx context.Context, value domain.Occurrence) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Occurrence, error)
	ListByEventID(ctx context.Context, eventID string) ([]domain.Occurrence, error)
}
