package donation

import (
	"context"
	"errors"

	domain "ellarises/internal/domain/donation"
)

// ErrNotFound is returned when no donation matches the lookup.
var ErrNotFound = errors.New("donation not found")

// Store persists Donation state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Donation, error)
	Save(ctx context.Context, value domain.Donation) error
	Delete(ctx context.Context, id string) error
	ListByParticipantID(ctx context.Context, participantID string) ([]domain.Donation, error)
	SumCentsByParticipantID(ctx context.Context, participantID string) (int64, error)
}
