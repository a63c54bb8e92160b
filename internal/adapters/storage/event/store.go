package event

import (
	"context"
	"errors"

	domain "ellarises/internal/domain/event"
)

// ErrNotFound is returned when no event matches the lookup.
var ErrNotFound = errors.New("event not found")

// Store persists Event templates.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Event, error)
	Save(ctx context.Context, value domain.Event) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Event, error)
}
