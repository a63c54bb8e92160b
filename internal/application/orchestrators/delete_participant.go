package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ParticipantStoreForDelete defines the delete operation for participants.
type ParticipantStoreForDelete interface {
	Delete(ctx context.Context, id string) error
}

// DeleteParticipantDeps holds dependencies for participant removal.
type DeleteParticipantDeps struct {
	ParticipantStore ParticipantStoreForDelete
}

// ErrDependentRecords is returned when a participant still has
// registrations, surveys, donations, or milestones pointing at them.
var ErrDependentRecords = errors.New("participant has dependent records and cannot be deleted")

// ExecuteDeleteParticipant removes a participant. Unlike occurrence and
// event deletion this does NOT cascade: the database's foreign key
// enforcement rejects the delete while dependent rows exist, and that
// rejection is surfaced as ErrDependentRecords rather than treated as an
// internal failure.
// PRE: Caller is elevated
// POST: Participant removed, or every dependent row left exactly as it was
func ExecuteDeleteParticipant(ctx context.Context, participantID string, deps DeleteParticipantDeps) error {
	if participantID == "" {
		return errors.New("participant id is required")
	}
	if err := deps.ParticipantStore.Delete(ctx, participantID); err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			slog.Info("cascade_event", "event", "participant_delete_blocked", "participant_id", participantID)
			return ErrDependentRecords
		}
		return err
	}
	slog.Info("cascade_event", "event", "participant_deleted", "participant_id", participantID)
	return nil
}
