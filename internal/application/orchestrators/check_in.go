package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	registrationStore "ellarises/internal/adapters/storage/registration"
	"ellarises/internal/domain/registration"
)

// RegistrationStoreForCheckIn defines the registration store interface for
// staff check-in.
type RegistrationStoreForCheckIn interface {
	GetByPair(ctx context.Context, occurrenceID, participantID string) (registration.Registration, error)
	Update(ctx context.Context, r registration.Registration) error
}

// CheckInInput carries input for the check-in orchestrator.
type CheckInInput struct {
	OccurrenceID  string
	ParticipantID string
}

// CheckInDeps holds dependencies for check-in.
type CheckInDeps struct {
	RegistrationStore RegistrationStoreForCheckIn
	Now               func() time.Time
}

// ErrNotRegistered is returned when a check-in targets a participant with
// no registration for the occurrence.
var ErrNotRegistered = errors.New("participant is not registered for this session")

// ExecuteCheckIn marks a registration attended. Only staff reach this path;
// the attended flag is never writable by the participant themselves.
// PRE: A registration exists for the pair
// POST: Registration has Attended=true and CheckInTime set
// INVARIANT: Checking in twice is rejected without modifying the record
func ExecuteCheckIn(ctx context.Context, input CheckInInput, deps CheckInDeps) error {
	if input.OccurrenceID == "" || input.ParticipantID == "" {
		return errors.New("occurrence and participant are required")
	}

	r, err := deps.RegistrationStore.GetByPair(ctx, input.OccurrenceID, input.ParticipantID)
	if err != nil {
		if errors.Is(err, registrationStore.ErrNotFound) {
			return ErrNotRegistered
		}
		return err
	}

	if err := r.CheckIn(deps.Now()); err != nil {
		return err
	}

	if err := deps.RegistrationStore.Update(ctx, r); err != nil {
		return err
	}

	slog.Info("registration_event", "event", "checked_in", "occurrence_id", input.OccurrenceID, "participant_id", input.ParticipantID)
	return nil
}
