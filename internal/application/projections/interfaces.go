package projections

import (
	"context"

	"ellarises/internal/adapters/storage/participant"
	domainDonation "ellarises/internal/domain/donation"
	domainEvent "ellarises/internal/domain/event"
	domainMilestone "ellarises/internal/domain/milestone"
	domainOccurrence "ellarises/internal/domain/occurrence"
	domainParticipant "ellarises/internal/domain/participant"
	domainRegistration "ellarises/internal/domain/registration"
	domainSurvey "ellarises/internal/domain/survey"
)

// ParticipantStore interface for participant queries.
type ParticipantStore interface {
	GetByID(ctx context.Context, id string) (domainParticipant.Participant, error)
	List(ctx context.Context, filter participant.ListFilter) ([]domainParticipant.Participant, error)
}

// EventStore interface for event queries.
type EventStore interface {
	GetByID(ctx context.Context, id string) (domainEvent.Event, error)
	List(ctx context.Context) ([]domainEvent.Event, error)
}

// OccurrenceStore interface for occurrence queries.
type OccurrenceStore interface {
	GetByID(ctx context.Context, id string) (domainOccurrence.Occurrence, error)
	List(ctx context.Context) ([]domainOccurrence.Occurrence, error)
	ListByEventID(ctx context.Context, eventID string) ([]domainOccurrence.Occurrence, error)
}

// RegistrationStore interface for registration queries.
type RegistrationStore interface {
	GetByPair(ctx context.Context, occurrenceID, participantID string) (domainRegistration.Registration, error)
	ListByOccurrenceID(ctx context.Context, occurrenceID string) ([]domainRegistration.Registration, error)
	ListByParticipantID(ctx context.Context, participantID string) ([]domainRegistration.Registration, error)
	CountByOccurrenceID(ctx context.Context, occurrenceID string) (int, error)
}

// SurveyStore interface for survey response queries.
type SurveyStore interface {
	GetByPair(ctx context.Context, occurrenceID, participantID string) (domainSurvey.Response, error)
	ListByOccurrenceID(ctx context.Context, occurrenceID string) ([]domainSurvey.Response, error)
	AverageOverallByOccurrenceID(ctx context.Context, occurrenceID string) (float64, int, error)
}

// DonationStore interface for donation queries.
type DonationStore interface {
	ListByParticipantID(ctx context.Context, participantID string) ([]domainDonation.Donation, error)
	SumCentsByParticipantID(ctx context.Context, participantID string) (int64, error)
}

// MilestoneStore interface for milestone queries.
type MilestoneStore interface {
	ListByParticipantID(ctx context.Context, participantID string) ([]domainMilestone.Milestone, error)
	DistinctTitles(ctx context.Context) ([]string, error)
}
