package survey

import (
	"context"
	"errors"

	domain "ellarises/internal/domain/survey"
)

// Store-level errors.
var (
	// ErrNotFound is returned when no survey response matches the lookup.
	ErrNotFound = errors.New("survey response not found")
	// ErrDuplicate is returned when a second response is inserted for an
	// (occurrence, participant) pair that already has one.
	ErrDuplicate = errors.New("survey response already exists for this occurrence and participant")
)

// Store persists SurveyResponse state. The (occurrence_id, participant_id)
// pair is unique; Create maps the constraint violation to ErrDuplicate.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Response, error)
	GetByPair(ctx context.Context, occurrenceID, participantID string) (domain.Response, error)
	Create(ctx context.Context, value domain.Response) error
	Delete(ctx context.Context, id string) error
	DeleteByOccurrenceID(ctx context.Context, occurrenceID string) (int, error)
	ListByOccurrenceID(ctx context.Context, occurrenceID string) ([]domain.Response, error)
	AverageOverallByOccurrenceID(ctx context.Context, occurrenceID string) (float64, int, error)
}
