package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	occurrenceStore "ellarises/internal/adapters/storage/occurrence"
	registrationStore "ellarises/internal/adapters/storage/registration"
	"ellarises/internal/domain/occurrence"
	"ellarises/internal/domain/registration"
)

// OccurrenceStoreForRegistration defines the occurrence lookups registration needs.
type OccurrenceStoreForRegistration interface {
	GetByID(ctx context.Context, id string) (occurrence.Occurrence, error)
}

// RegistrationStoreForSelf defines the registration store interface for
// self-service registration.
type RegistrationStoreForSelf interface {
	GetByPair(ctx context.Context, occurrenceID, participantID string) (registration.Registration, error)
	Create(ctx context.Context, r registration.Registration) error
	DeleteByPair(ctx context.Context, occurrenceID, participantID string) (int, error)
	CountByOccurrenceID(ctx context.Context, occurrenceID string) (int, error)
}

// RegisterSelfInput carries input for self-registration.
type RegisterSelfInput struct {
	OccurrenceID  string
	ParticipantID string
}

// RegisterSelfDeps holds dependencies for self-registration.
type RegisterSelfDeps struct {
	OccurrenceStore   OccurrenceStoreForRegistration
	RegistrationStore RegistrationStoreForSelf
	GenerateID        func() string
	Now               func() time.Time
}

// Self-registration errors. ErrAlreadyRegistered is a conflict the handler
// routes to the parent event page, not a hard failure.
var (
	ErrOccurrenceNotFound = errors.New("occurrence not found")
	ErrAlreadyRegistered  = errors.New("you are already registered for this session")
	ErrRegistrationClosed = errors.New("registration for this session has closed")
	ErrOccurrenceFull     = errors.New("this session is full")
)

// ExecuteRegisterSelf registers a participant for an occurrence.
// PRE: Caller identity is the participant being registered
// POST: Exactly one registration row exists for the pair
// INVARIANT: The (occurrence, participant) pair is unique; a duplicate
// attempt returns ErrAlreadyRegistered whether caught by the pre-check or
// by the storage constraint
func ExecuteRegisterSelf(ctx context.Context, input RegisterSelfInput, deps RegisterSelfDeps) error {
	if input.OccurrenceID == "" || input.ParticipantID == "" {
		return errors.New("occurrence and participant are required")
	}

	occ, err := deps.OccurrenceStore.GetByID(ctx, input.OccurrenceID)
	if err != nil {
		if errors.Is(err, occurrenceStore.ErrNotFound) {
			return ErrOccurrenceNotFound
		}
		return err
	}

	if occ.RegistrationClosed(deps.Now()) {
		return ErrRegistrationClosed
	}

	// Pre-check for the friendly path; the unique constraint is the backstop
	// for two requests racing past this read.
	if _, err := deps.RegistrationStore.GetByPair(ctx, input.OccurrenceID, input.ParticipantID); err == nil {
		return ErrAlreadyRegistered
	}

	if occ.Capacity > 0 {
		count, err := deps.RegistrationStore.CountByOccurrenceID(ctx, input.OccurrenceID)
		if err != nil {
			return err
		}
		if count >= occ.Capacity {
			return ErrOccurrenceFull
		}
	}

	r := registration.Registration{
		ID:            deps.GenerateID(),
		OccurrenceID:  input.OccurrenceID,
		ParticipantID: input.ParticipantID,
		Status:        registration.StatusRegistered,
		CreatedAt:     deps.Now(),
	}
	if err := r.Validate(); err != nil {
		return err
	}

	if err := deps.RegistrationStore.Create(ctx, r); err != nil {
		if errors.Is(err, registrationStore.ErrDuplicate) {
			return ErrAlreadyRegistered
		}
		return err
	}

	slog.Info("registration_event", "event", "self_registered", "occurrence_id", input.OccurrenceID, "participant_id", input.ParticipantID)
	return nil
}

// ExecuteUnregisterSelf removes a participant's registration for an
// occurrence. Idempotent: unregistering an absent pair is not an error.
// PRE: Caller identity is the participant being unregistered
// POST: No registration row exists for the pair
func ExecuteUnregisterSelf(ctx context.Context, input RegisterSelfInput, deps RegisterSelfDeps) error {
	if input.OccurrenceID == "" || input.ParticipantID == "" {
		return errors.New("occurrence and participant are required")
	}

	deleted, err := deps.RegistrationStore.DeleteByPair(ctx, input.OccurrenceID, input.ParticipantID)
	if err != nil {
		return err
	}
	if deleted > 0 {
		slog.Info("registration_event", "event", "self_unregistered", "occurrence_id", input.OccurrenceID, "participant_id", input.ParticipantID)
	}
	return nil
}
