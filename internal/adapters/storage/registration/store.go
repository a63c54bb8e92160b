package registration

import (
	"context"
	"errors"

	domain "ellarises/internal/domain/registration"
)

// Store-level errors.
var (
	// ErrNotFound is returned when no registration matches the lookup.
	ErrNotFound = errors.New("registration not found")
	// ErrDuplicate is returned when a second registration is inserted for
	// an (occurrence, participant) pair that already has one.
	ErrDuplicate = errors.New("registration already exists for this occurrence and participant")
)

// Store persists Registration state. The (occurrence_id, participant_id)
// pair is unique; Create maps the constraint violation to ErrDuplicate.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Registration, error)
	GetByPair(ctx context.Context, occurrenceID, participantID string) (domain.Registration, error)
	Create(ctx context.Context, value domain.Registration) error
	Update(ctx context.Context, value domain.Registration) error
	Delete(ctx context.Context, id string) error
	DeleteByPair(ctx context.Context, occurrenceID, participantID string) (int, error)
	DeleteByOccurrenceID(ctx context.Context, occurrenceID string) (int, error)
	ListByOccurrenceID(ctx context.Context, occurrenceID string) ([]domain.Registration, error)
	ListByParticipantID(ctx context.Context, participantID string) ([]domain.Registration, error)
	CountByOccurrenceID(ctx context.Context, occurrenceID string) (int, error)
}
