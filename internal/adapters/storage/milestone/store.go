package milestone

import (
	"context"
	"errors"

	domain "ellarises/internal/domain/milestone"
)

// ErrNotFound is returned when no milestone matches the lookup.
var ErrNotFound = errors.New("milestone not found")

// Store persists Milestone state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Milestone, error)
	Save(ctx context.Context, value domain.Milestone) error
	Delete(ctx context.Context, id string) error
	ListByParticipantID(ctx context.Context, participantID string) ([]domain.Milestone, error)
	DistinctTitles(ctx context.Context) ([]string, error)
}
