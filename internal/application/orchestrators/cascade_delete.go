package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"ellarises/internal/domain/occurrence"
)

// OccurrenceStoreForCascade defines the occurrence operations the cascade
// needs.
type OccurrenceStoreForCascade interface {
	GetByID(ctx context.Context, id string) (occurrence.Occurrence, error)
	ListByEventID(ctx context.Context, eventID string) ([]occurrence.Occurrence, error)
	Delete(ctx context.Context, id string) error
}

// EventStoreForCascade defines the event operations the cascade needs.
type EventStoreForCascade interface {
	Delete(ctx context.Context, id string) error
}

// RegistrationSweeper deletes all registrations under an occurrence.
type RegistrationSweeper interface {
	DeleteByOccurrenceID(ctx context.Context, occurrenceID string) (int, error)
}

// SurveySweeper deletes all survey responses under an occurrence.
type SurveySweeper interface {
	DeleteByOccurrenceID(ctx context.Context, occurrenceID string) (int, error)
}

// CascadeDeps holds the stores the cascade deletions walk.
type CascadeDeps struct {
	OccurrenceStore   OccurrenceStoreForCascade
	EventStore        EventStoreForCascade
	RegistrationStore RegistrationSweeper
	SurveyStore       SurveySweeper
}

// ErrCascadeOccurrenceNotFound is returned when the occurrence to delete
// does not exist.
var ErrCascadeOccurrenceNotFound = errors.New("session not found")

// ExecuteDeleteOccurrence removes an occurrence and everything under it:
// registrations first, then survey responses, then the occurrence itself.
// Children go before the parent so foreign key enforcement never rejects
// the parent delete. It returns the parent event ID, captured before the
// row is gone, so the caller can redirect to the event page.
// PRE: Caller is elevated
// POST: No registration or survey response references the occurrence
// INVARIANT: The parent event is untouched
func ExecuteDeleteOccurrence(ctx context.Context, occurrenceID string, deps CascadeDeps) (string, error) {
	occ, err := deps.OccurrenceStore.GetByID(ctx, occurrenceID)
	if err != nil {
		return "", ErrCascadeOccurrenceNotFound
	}
	eventID := occ.EventID

	regs, err := deps.RegistrationStore.DeleteByOccurrenceID(ctx, occurrenceID)
	if err != nil {
		return eventID, err
	}
	resps, err := deps.SurveyStore.DeleteByOccurrenceID(ctx, occurrenceID)
	if err != nil {
		return eventID, err
	}
	if err := deps.OccurrenceStore.Delete(ctx, occurrenceID); err != nil {
		return eventID, err
	}

	slog.Info("cascade_event", "event", "occurrence_deleted", "occurrence_id", occurrenceID, "event_id", eventID, "registrations_removed", regs, "surveys_removed", resps)
	return eventID, nil
}

// ExecuteDeleteEvent removes an event and all of its occurrences, each via
// the occurrence cascade, then the event row itself.
// PRE: Caller is elevated
// POST: The event and everything transitively under it are gone
func ExecuteDeleteEvent(ctx context.Context, eventID string, deps CascadeDeps) error {
	occs, err := deps.OccurrenceStore.ListByEventID(ctx, eventID)
	if err != nil {
		return err
	}
	for _, occ := range occs {
		if _, err := ExecuteDeleteOccurrence(ctx, occ.ID, deps); err != nil {
			return err
		}
	}
	if err := deps.EventStore.Delete(ctx, eventID); err != nil {
		return err
	}

	slog.Info("cascade_event", "event", "event_deleted", "event_id", eventID, "occurrences_removed", len(occs))
	return nil
}
